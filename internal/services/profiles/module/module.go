// Package module wires profiles into the API using modkit
package module

import (
	"net/http"

	modkit "cycletrack/internal/modkit"
	"cycletrack/internal/modkit/httpkit"

	phttp "cycletrack/internal/services/profiles/http"
	prepo "cycletrack/internal/services/profiles/repo"
	psvc "cycletrack/internal/services/profiles/service"
)

// Module implements the profiles module
type Module struct {
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc psvc.Service
}

// Ports exposes the profile resolver for other modules
type Ports struct {
	Svc psvc.Service
}

// New constructs the profiles module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("profiles"),
		modkit.WithPrefix("/profiles"),
	}, opts...)...)

	svc := psvc.New(prepo.New(deps.Docs))

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		phttp.Register(r, m.svc)
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
func (m *Module) Ports() any { return Ports{Svc: m.svc} }
