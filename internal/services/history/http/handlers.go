// Package http provides http transport for the history store
package http

import (
	stdhttp "net/http"

	"cycletrack/internal/core/cycle"
	"cycletrack/internal/modkit/httpkit"
	"cycletrack/internal/platform/dates"
	"cycletrack/internal/services/history/domain"
	svc "cycletrack/internal/services/history/service"
	profilesdom "cycletrack/internal/services/profiles/domain"
)

// Register mounts history endpoints on the given router
func Register(r httpkit.Router, s svc.Service, resolver profilesdom.ResolverPort) {
	h := &handlers{svc: s, resolver: resolver}

	httpkit.PostJSON[domain.UpsertPeriodInput](r, "/periods", h.upsertPeriod)
	httpkit.PostJSON[domain.LogEventInput](r, "/events", h.logEvent)
	httpkit.PostJSON[domain.DeleteEventsInput](r, "/events/delete", h.deleteEvents)
	httpkit.Get(r, "/", h.list)
}

type handlers struct {
	svc      svc.Service
	resolver profilesdom.ResolverPort
}

func (h *handlers) upsertPeriod(r *stdhttp.Request, in domain.UpsertPeriodInput) (any, error) {
	p, err := h.resolver.Resolve(r.Context(), in.Profile)
	if err != nil {
		return nil, err
	}
	start := dates.MustParse(in.Start) // validated by the isodate tag
	var end *dates.Date
	if in.End != "" {
		e := dates.MustParse(in.End)
		end = &e
	}
	if err := h.svc.UpsertPeriod(r.Context(), p.ID, start, end); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

func (h *handlers) logEvent(r *stdhttp.Request, in domain.LogEventInput) (any, error) {
	p, err := h.resolver.Resolve(r.Context(), in.Profile)
	if err != nil {
		return nil, err
	}
	e := cycle.EventEntry{
		Day:          dates.MustParse(in.Day),
		Menstruating: in.Menstruating,
		Flow:         defaultFlow(in),
		Symptoms:     in.Symptoms,
	}
	if err := h.svc.LogEvent(r.Context(), p.ID, e); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// defaultFlow fills an omitted flow level from the menstruating bit
func defaultFlow(in domain.LogEventInput) cycle.Flow {
	if in.Flow != "" {
		f, _ := cycle.ParseFlow(in.Flow)
		return f
	}
	if in.Menstruating {
		return cycle.FlowMedium
	}
	return cycle.FlowNone
}

func (h *handlers) deleteEvents(r *stdhttp.Request, in domain.DeleteEventsInput) (any, error) {
	p, err := h.resolver.Resolve(r.Context(), in.Profile)
	if err != nil {
		return nil, err
	}
	filter := domain.EventFilter{Menstruating: in.Menstruating, Symptoms: in.Symptoms}
	if in.Flow != nil {
		f, _ := cycle.ParseFlow(*in.Flow)
		filter.Flow = &f
	}
	removed, err := h.svc.DeleteEvents(
		r.Context(), p.ID, dates.MustParse(in.Day), domain.DeleteMode(in.Mode), filter,
	)
	if err != nil {
		return nil, err
	}
	return domain.DeleteEventsResult{Removed: removed}, nil
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	p, err := h.resolver.Resolve(r.Context(), r.URL.Query().Get("profile"))
	if err != nil {
		return nil, err
	}
	periods, events, err := h.svc.History(r.Context(), p.ID)
	if err != nil {
		return nil, err
	}
	if periods == nil {
		periods = []cycle.PeriodEntry{}
	}
	if events == nil {
		events = []cycle.EventEntry{}
	}
	return domain.HistoryOut{Profile: p.ID, Periods: periods, Events: events}, nil
}
