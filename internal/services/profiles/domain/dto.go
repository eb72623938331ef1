package domain

// CreateInput creates a new tracked profile
type CreateInput struct {
	Name            string `json:"name" validate:"required,min=1,max=120"`
	LastPeriodStart string `json:"last_period_start" validate:"required,isodate"`
	CycleLength     int    `json:"cycle_length" validate:"omitempty,min=1,max=120"`
	PeriodLength    int    `json:"period_length" validate:"omitempty,min=1,max=60"`
	ShowFertility   *bool  `json:"show_fertility"`
}

// OptionsInput toggles per-profile options
// nil pointers leave the current value untouched
type OptionsInput struct {
	Profile       string `json:"profile"`
	PregnancyMode *bool  `json:"pregnancy_mode"`
	ShowFertility *bool  `json:"show_fertility"`
}
