// Package http provides http transport for forecasts
package http

import (
	stdhttp "net/http"

	"cycletrack/internal/modkit/httpkit"
	svc "cycletrack/internal/services/forecast/service"
)

// Register mounts forecast endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.current)
	httpkit.Post(r, "/refresh", h.refresh)
}

type handlers struct{ svc svc.Service }

func (h *handlers) current(r *stdhttp.Request) (any, error) {
	return h.svc.Current(r.Context(), r.URL.Query().Get("profile"))
}

func (h *handlers) refresh(r *stdhttp.Request) (any, error) {
	return h.svc.Refresh(r.Context(), r.URL.Query().Get("profile"))
}
