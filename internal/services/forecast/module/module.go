// Package module wires the forecast engine into the API using modkit
package module

import (
	"net/http"

	modkit "cycletrack/internal/modkit"
	"cycletrack/internal/modkit/httpkit"

	fhttp "cycletrack/internal/services/forecast/http"
	fsvc "cycletrack/internal/services/forecast/service"
	historydom "cycletrack/internal/services/history/domain"
	profilesdom "cycletrack/internal/services/profiles/domain"
)

// Module implements the forecast module
type Module struct {
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc fsvc.Service
}

// Ports declares the injected collaborator ports for this module
type Ports struct {
	History  historydom.ReaderPort
	Profiles profilesdom.ServicePort
}

// Out is what the module exposes for other modules
type Out struct {
	Svc fsvc.Service
}

// New constructs the forecast module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("forecast"),
		modkit.WithPrefix("/forecast"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.History == nil {
		panic("forecast module requires a History reader port (from services/history)")
	}
	if injected.Profiles == nil {
		panic("forecast module requires a Profiles port (from services/profiles)")
	}

	svc := fsvc.New(injected.History, injected.Profiles)

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		fhttp.Register(r, m.svc)
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
func (m *Module) Ports() any { return Out{Svc: m.svc} }
