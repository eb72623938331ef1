// Package http provides http transport for imports
package http

import (
	stdhttp "net/http"

	"cycletrack/internal/modkit/httpkit"
	"cycletrack/internal/services/importer/domain"
	svc "cycletrack/internal/services/importer/service"
)

// Register mounts the import endpoint on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.ImportInput](r, "/", h.run)
}

type handlers struct{ svc svc.Service }

func (h *handlers) run(r *stdhttp.Request, in domain.ImportInput) (any, error) {
	return h.svc.Import(r.Context(), in)
}
