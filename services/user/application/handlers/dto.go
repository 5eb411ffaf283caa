package handlers

// RegisterRequest is the request body for POST /register/.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150" example:"alice"`
	Password string `json:"password" validate:"required" example:"correct-horse-battery"`
} // @name RegisterRequest

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	ID       int64  `json:"id"       example:"1"`
	Username string `json:"username" example:"alice"`
} // @name RegisterResponse

// LoginRequest is the request body for POST /login/.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"correct-horse-battery"`
} // @name LoginRequest

// TokenPairResponse carries a fresh access and refresh token.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
} // @name TokenPairResponse

// RefreshRequest is the request body for POST /token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
} // @name RefreshRequest

// AccessTokenResponse carries a new access token.
type AccessTokenResponse struct {
	Access string `json:"access"`
} // @name AccessTokenResponse
