// Package api provides the HTTP API for the tracker
package api

import (
	"context"

	"cycletrack/internal/platform/config"
	"cycletrack/internal/platform/logger"
	phttp "cycletrack/internal/platform/net/http"
	"cycletrack/internal/platform/store"

	"cycletrack/internal/modkit"
	"cycletrack/internal/modkit/httpkit"
	"cycletrack/internal/modkit/module"

	calendarmod "cycletrack/internal/services/calendar/module"
	forecastmod "cycletrack/internal/services/forecast/module"
	fsvc "cycletrack/internal/services/forecast/service"
	historymod "cycletrack/internal/services/history/module"
	importermod "cycletrack/internal/services/importer/module"
	profilesmod "cycletrack/internal/services/profiles/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
}

// Mounted exposes services main still needs after mounting
type Mounted struct {
	Forecast fsvc.Service
}

// Mount wires every module and mounts the versioned API onto r
func Mount(r phttp.Router, opt Options) Mounted {
	deps := modkit.Deps{
		Cfg:  opt.Config,
		Docs: opt.Store.Docs,
		PG:   opt.Store.PG,
	}

	// profiles first, everything else resolves through it
	profiles := profilesmod.New(deps)
	profileSvc := module.MustPortsOf[profilesmod.Ports](profiles).Svc

	// the forecast service is bound after history exists, so mutations
	// reach it through this late-bound hook
	var forecastSvc fsvc.Service
	refresh := func(ctx context.Context, profileID string) {
		if forecastSvc == nil {
			return
		}
		if _, err := forecastSvc.Refresh(ctx, profileID); err != nil {
			logger.C(ctx).Warn().
				Str("profile_id", profileID).
				Err(err).
				Msg("forecast refresh after mutation failed")
		}
	}

	history := historymod.New(deps, modkit.WithPorts(historymod.Ports{
		Resolver: profileSvc,
		Refresh:  refresh,
	}))
	historySvc := module.MustPortsOf[historymod.Out](history).Svc

	forecast := forecastmod.New(deps, modkit.WithPorts(forecastmod.Ports{
		History:  historySvc,
		Profiles: profileSvc,
	}))
	forecastSvc = module.MustPortsOf[forecastmod.Out](forecast).Svc

	calendar := calendarmod.New(deps, modkit.WithPorts(calendarmod.Ports{
		History:  historySvc,
		Forecast: forecastSvc,
		Profiles: profileSvc,
	}))

	importer := importermod.New(deps, modkit.WithPorts(importermod.Ports{
		History:  historySvc,
		Profiles: profileSvc,
	}))

	mods := []module.Module{profiles, history, forecast, calendar, importer}

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	return Mounted{Forecast: forecastSvc}
}
