package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (Database, RedisClient, EventBus and every ItemCache qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the dependencies probed by the health endpoint.
// A nil checker is reported as "disabled" and does not degrade the status.
type HealthChecks struct {
	Database  HealthChecker
	Redis     HealthChecker
	EventBus  HealthChecker
	ItemCache HealthChecker
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	EventBus  string `json:"event_bus"`
	ItemCache string `json:"item_cache"`
}

// HealthHandler probes every configured checker concurrently and answers 503
// if any of them fails.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		probes := []struct {
			checker HealthChecker
			result  *string
		}{
			{checks.Database, &resp.Database},
			{checks.Redis, &resp.Redis},
			{checks.EventBus, &resp.EventBus},
			{checks.ItemCache, &resp.ItemCache},
		}

		var wg sync.WaitGroup
		for _, p := range probes {
			if p.checker == nil {
				*p.result = "disabled"
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := p.checker.Ping(ctx); err != nil {
					*p.result = "unreachable"
					return
				}
				*p.result = "ok"
			}()
		}
		wg.Wait()

		for _, p := range probes {
			if *p.result == "unreachable" {
				resp.Status = "degraded"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
