// Package module wires the history store into the API using modkit
package module

import (
	"net/http"

	modkit "cycletrack/internal/modkit"
	"cycletrack/internal/modkit/httpkit"

	"cycletrack/internal/services/history/domain"
	hhttp "cycletrack/internal/services/history/http"
	hrepo "cycletrack/internal/services/history/repo"
	hsvc "cycletrack/internal/services/history/service"
	profilesdom "cycletrack/internal/services/profiles/domain"
)

// Module implements the history module
type Module struct {
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc hsvc.Service
}

// Ports declares the injected collaborator ports for this module
// Refresh may be nil when no forecast consumer is mounted
type Ports struct {
	Resolver profilesdom.ResolverPort
	Refresh  domain.RefreshFunc
}

// Out is what the module exposes for other modules
type Out struct {
	Svc hsvc.Service
}

// New constructs the history module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("history"),
		modkit.WithPrefix("/history"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Resolver == nil {
		panic("history module requires a Resolver port (from services/profiles)")
	}

	svc := hsvc.New(hrepo.New(deps.Docs), hsvc.Options{Refresh: injected.Refresh})

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		hhttp.Register(r, m.svc, injected.Resolver)
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
