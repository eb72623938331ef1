// Package http provides http transport for the calendar feed
package http

import (
	stdhttp "net/http"

	"cycletrack/internal/modkit/httpkit"
	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/services/calendar/domain"
	svc "cycletrack/internal/services/calendar/service"
)

// Register mounts calendar endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.feed)
	httpkit.PostJSON[domain.CreateEventInput](r, "/events", h.createEvent)
}

type handlers struct{ svc svc.Service }

func (h *handlers) feed(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	from, err := queryDate(q.Get("from"), "from")
	if err != nil {
		return nil, err
	}
	to, err := queryDate(q.Get("to"), "to")
	if err != nil {
		return nil, err
	}
	return h.svc.Feed(r.Context(), q.Get("profile"), from, to)
}

func queryDate(raw, field string) (dates.Date, error) {
	if raw == "" {
		return dates.Date{}, nil
	}
	d, err := dates.Parse(raw)
	if err != nil {
		return dates.Date{}, perr.WithField(err, field)
	}
	return d, nil
}

func (h *handlers) createEvent(r *stdhttp.Request, in domain.CreateEventInput) (any, error) {
	p, err := h.svc.CreateEvent(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(p), nil
}
