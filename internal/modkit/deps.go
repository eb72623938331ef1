// Package modkit provides module wiring and core deps
package modkit

import (
	"cycletrack/internal/platform/config"
	"cycletrack/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Cfg  config.Conf
	Docs store.DocStore
	PG   store.TxRunner
}
