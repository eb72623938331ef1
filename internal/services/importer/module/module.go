// Package module wires the importer into the API using modkit
package module

import (
	"net/http"

	modkit "cycletrack/internal/modkit"
	"cycletrack/internal/modkit/httpkit"

	historydom "cycletrack/internal/services/history/domain"
	ihttp "cycletrack/internal/services/importer/http"
	isvc "cycletrack/internal/services/importer/service"
	profilesdom "cycletrack/internal/services/profiles/domain"
)

// Module implements the importer module
type Module struct {
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc isvc.Service
}

// Ports declares the injected collaborator ports for this module
type Ports struct {
	History  historydom.ServicePort
	Profiles profilesdom.ResolverPort
}

// New constructs the importer module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("importer"),
		modkit.WithPrefix("/import"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.History == nil || injected.Profiles == nil {
		panic("importer module requires history and profiles ports")
	}

	svc := isvc.New(injected.History, injected.Profiles)

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ihttp.Register(r, m.svc)
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
func (m *Module) Ports() any { return struct{ Svc isvc.Service }{Svc: m.svc} }
