// Package http provides http transport for profiles
package http

import (
	stdhttp "net/http"

	"cycletrack/internal/modkit/httpkit"
	"cycletrack/internal/services/profiles/domain"
	svc "cycletrack/internal/services/profiles/service"
)

// Register mounts profile endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.CreateInput](r, "/", h.create)
	httpkit.Get(r, "/", h.list)
	httpkit.PutJSON[domain.OptionsInput](r, "/options", h.options)
}

type handlers struct{ svc svc.Service }

func (h *handlers) create(r *stdhttp.Request, in domain.CreateInput) (any, error) {
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(p), nil
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	ps, err := h.svc.List(r.Context())
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []domain.Profile{}
	}
	return ps, nil
}

func (h *handlers) options(r *stdhttp.Request, in domain.OptionsInput) (any, error) {
	return h.svc.UpdateOptions(r.Context(), in)
}
