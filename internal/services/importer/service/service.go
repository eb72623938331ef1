// Package service normalizes import payloads and feeds the history store
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"cycletrack/internal/core/cycle"
	"cycletrack/internal/platform/dates"
	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/platform/logger"
	historydom "cycletrack/internal/services/history/domain"
	"cycletrack/internal/services/importer/domain"
	profilesdom "cycletrack/internal/services/profiles/domain"
)

// Service defines the importer contract
type Service interface {
	Import(ctx context.Context, in domain.ImportInput) (domain.ImportResult, error)
}

// Svc implements the importer
type Svc struct {
	history  historydom.ServicePort
	profiles profilesdom.ResolverPort
}

// New constructs an importer service
func New(history historydom.ServicePort, profiles profilesdom.ResolverPort) *Svc {
	if history == nil || profiles == nil {
		panic("importer.Service requires history and profiles ports")
	}
	return &Svc{history: history, profiles: profiles}
}

// Import detects the payload shape, normalizes it, and merges or
// replaces the profile's history
// individual records with unparsable dates are skipped and logged, not
// fatal; a payload that normalizes to nothing fails with NoValidRecords
func (s *Svc) Import(ctx context.Context, in domain.ImportInput) (domain.ImportResult, error) {
	p, err := s.profiles.Resolve(ctx, in.Profile)
	if err != nil {
		return domain.ImportResult{}, err
	}

	mode := historydom.ImportMode(in.Mode)
	if mode == "" {
		mode = historydom.ImportMerge
	}

	periods, events, skipped, err := normalize(ctx, in.Data)
	if err != nil {
		return domain.ImportResult{}, err
	}

	if err := s.history.Import(ctx, p.ID, periods, events, mode); err != nil {
		return domain.ImportResult{}, err
	}
	return domain.ImportResult{
		Periods: len(periods),
		Events:  len(events),
		Skipped: skipped,
	}, nil
}

type nativeDoc struct {
	Periods []nativePeriod `json:"periods"`
	Events  []nativeEvent  `json:"events"`
}

type nativePeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type nativeEvent struct {
	Day          string   `json:"day"`
	Menstruating bool     `json:"menstruating"`
	Flow         string   `json:"flow"`
	Symptoms     []string `json:"symptoms"`
	CreatedAt    string   `json:"created_at"`
}

type thirdPartyItem struct {
	Type  string `json:"type"`
	Date  string `json:"date"`
	Value struct {
		Option string `json:"option"`
	} `json:"value"`
}

func normalize(ctx context.Context, data json.RawMessage) ([]cycle.PeriodEntry, []cycle.EventEntry, int, error) {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		var doc nativeDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, nil, 0, perr.UnsupportedImportShapef("import document is not the native periods/events shape")
		}
		if doc.Periods == nil && doc.Events == nil {
			return nil, nil, 0, perr.UnsupportedImportShapef("import document has neither periods nor events")
		}
		return normalizeNative(ctx, doc)
	case len(trimmed) > 0 && trimmed[0] == '[':
		var items []thirdPartyItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, nil, 0, perr.UnsupportedImportShapef("import list is not the type/date/value shape")
		}
		return normalizeThirdParty(ctx, items)
	default:
		return nil, nil, 0, perr.UnsupportedImportShapef("import payload must be a JSON object or list")
	}
}

func normalizeNative(ctx context.Context, doc nativeDoc) ([]cycle.PeriodEntry, []cycle.EventEntry, int, error) {
	log := logger.C(ctx)
	skipped := 0

	var periods []cycle.PeriodEntry
	for _, raw := range doc.Periods {
		start, err := dates.Parse(raw.Start)
		if err != nil {
			log.Warn().Str("start", raw.Start).Msg("import: skipping period with invalid start")
			skipped++
			continue
		}
		p := cycle.PeriodEntry{Start: start}
		if raw.End != "" {
			end, err := dates.Parse(raw.End)
			if err != nil || end.Before(start) {
				log.Warn().Str("start", raw.Start).Str("end", raw.End).Msg("import: dropping invalid period end")
			} else {
				p.End = &end
			}
		}
		periods = append(periods, p)
	}

	var events []cycle.EventEntry
	for i, raw := range doc.Events {
		day, err := dates.Parse(raw.Day)
		if err != nil {
			log.Warn().Str("day", raw.Day).Msg("import: skipping event with invalid day")
			skipped++
			continue
		}
		// missing and unrecognized flows both fall back to medium
		flow, ok := cycle.ParseFlow(raw.Flow)
		if !ok {
			if raw.Flow != "" {
				log.Warn().Str("flow", raw.Flow).Msg("import: defaulting unknown flow to medium")
			}
			flow = cycle.FlowMedium
		}
		events = append(events, cycle.EventEntry{
			Day:          day,
			Menstruating: raw.Menstruating,
			Flow:         flow,
			Symptoms:     raw.Symptoms,
			CreatedAt:    eventCreatedAt(raw.CreatedAt, day, i),
		})
	}
	return periods, events, skipped, nil
}

// normalizeThirdParty maps period-typed items onto menstruating events
// unrecognized flow options default to medium; other item types are
// skipped
func normalizeThirdParty(ctx context.Context, items []thirdPartyItem) ([]cycle.PeriodEntry, []cycle.EventEntry, int, error) {
	log := logger.C(ctx)
	skipped := 0

	var events []cycle.EventEntry
	for i, item := range items {
		if item.Type != "period" {
			skipped++
			continue
		}
		day, err := dates.Parse(item.Date)
		if err != nil {
			log.Warn().Str("date", item.Date).Msg("import: skipping item with invalid date")
			skipped++
			continue
		}
		flow, ok := cycle.ParseFlow(item.Value.Option)
		if !ok {
			flow = cycle.FlowMedium
		}
		events = append(events, cycle.EventEntry{
			Day:          day,
			Menstruating: true,
			Flow:         flow,
			CreatedAt:    eventCreatedAt("", day, i),
		})
	}
	return nil, events, skipped, nil
}

// eventCreatedAt parses a supplied timestamp or synthesizes a
// deterministic one at noon on the event day, offset by the record
// index so ordering stays stable
func eventCreatedAt(raw string, day dates.Date, idx int) time.Time {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
	}
	return day.Time().Add(12*time.Hour + time.Duration(idx)*time.Second)
}
