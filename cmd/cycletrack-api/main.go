package main

import (
	"context"
	"time"

	"cycletrack/internal/platform/config"
	"cycletrack/internal/platform/logger"
	phttp "cycletrack/internal/platform/net/http"
	"cycletrack/internal/platform/store"

	"cycletrack/internal/services/api"
	fsvc "cycletrack/internal/services/forecast/service"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_") // postgres snapshot backend
	snapCfg := root.Prefix("SNAPSHOT_")    // snapshot backend selection
	trackCfg := root.Prefix("TRACKER_")    // forecast refresh cadence

	// bring up logging early
	l := logger.Get()

	backend := snapCfg.MayEnum("BACKEND", store.BackendFile, store.BackendFile, store.BackendPostgres)

	storeCfg := store.Config{
		Snapshot: store.SnapshotConfig{
			Backend: backend,
			Dir:     snapCfg.MayString("DIR", "./data"),
		},
	}
	if backend == store.BackendPostgres {
		storeCfg.PG = store.PGConfig{
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		}
	}

	st, err := store.Open(context.Background(), storeCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	mounted := api.Mount(srv.Router(), api.Options{
		Config: apiCfg,
		Store:  st,
	})

	// periodic forecast refresh so day boundaries roll over without traffic
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher := fsvc.NewRefresher(mounted.Forecast, trackCfg.MayDuration("REFRESH_EVERY", 24*time.Hour))
	go func() {
		if err := refresher.Run(ctx); err != nil {
			l.Error().Err(err).Msg("forecast refresher failed")
		}
	}()

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
