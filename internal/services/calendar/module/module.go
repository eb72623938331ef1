// Package module wires the calendar feed into the API using modkit
package module

import (
	"net/http"

	modkit "cycletrack/internal/modkit"
	"cycletrack/internal/modkit/httpkit"

	chttp "cycletrack/internal/services/calendar/http"
	csvc "cycletrack/internal/services/calendar/service"
	forecastdom "cycletrack/internal/services/forecast/domain"
	historydom "cycletrack/internal/services/history/domain"
)

// Module implements the calendar module
type Module struct {
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc csvc.Service
}

// Ports declares the injected collaborator ports for this module
type Ports struct {
	History  historydom.ServicePort
	Forecast forecastdom.ServicePort
	Profiles csvc.ProfilesPort
}

// New constructs the calendar module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("calendar"),
		modkit.WithPrefix("/calendar"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.History == nil || injected.Forecast == nil || injected.Profiles == nil {
		panic("calendar module requires history, forecast, and profiles ports")
	}

	svc := csvc.New(injected.History, injected.Forecast, injected.Profiles)

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		chttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Ports returns the module ports for registry wiring
func (m *Module) Ports() any { return struct{ Svc csvc.Service }{Svc: m.svc} }
