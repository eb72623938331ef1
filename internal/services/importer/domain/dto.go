// Package domain holds import pipeline types
package domain

import "encoding/json"

// ImportInput carries a raw import payload
// Data is either the native {periods, events} document or a
// third-party list of {type, date, value} items
type ImportInput struct {
	Profile string          `json:"profile"`
	Mode    string          `json:"mode" validate:"omitempty,oneof=merge replace"`
	Data    json.RawMessage `json:"data" validate:"required"`
}

// ImportResult reports what the normalizer accepted and dropped
type ImportResult struct {
	Periods int `json:"periods"`
	Events  int `json:"events"`
	Skipped int `json:"skipped"`
}
