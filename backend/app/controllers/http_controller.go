package controllers

import (
	"context"
	"net/http"
	"time"

	"bugtracker/backend/app/dto"
	"bugtracker/backend/global"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPController struct {
	DB Pinger
}

func NewHTTPController(db Pinger) *HTTPController {
	return &HTTPController{DB: db}
}

// Root handles GET /.
func (c *HTTPController) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{Msg: "hello world"})
}

// Healthz reports 503 when the database does not answer within two seconds.
func (c *HTTPController) Healthz(w http.ResponseWriter, r *http.Request) {
	if c.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.DB.PingContext(ctx); err != nil {
			global.Logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
