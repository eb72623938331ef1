package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "cycletrack/internal/platform/errors"
	"cycletrack/internal/platform/testkit"
)

type payload struct {
	Day  string `json:"day" validate:"required,isodate"`
	Mode string `json:"mode" validate:"omitempty,oneof=merge replace"`
}

func TestParseJSONValid(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"day":"2024-03-01","mode":"merge"}`))
	got, err := ParseJSON[payload](r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Day != "2024-03-01" || got.Mode != "merge" {
		t.Fatalf("parsed = %+v", got)
	}
}

func TestParseJSONRejectsBadDate(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"day":"03/01/2024"}`))
	_, err := ParseJSON[payload](r)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	e, ok := perr.As(err)
	if !ok || e.Field() != "day" {
		t.Fatalf("validation error should name the json field, got %+v", err)
	}
	testkit.MustContain(t, e.Error(), "yyyy-mm-dd")
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"day":"2024-03-01","bogus":1}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want JSON error, got %v", err)
	}
}

func TestParseJSONRejectsMissingRequired(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"mode":"merge"}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestParseJSONEmptyBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want JSON error for empty POST body, got %v", err)
	}

	// safe methods tolerate an empty body
	r = httptest.NewRequest("GET", "/", strings.NewReader(""))
	if _, err := ParseJSON[payload](r); err != nil {
		t.Fatalf("empty GET body must parse to zero value: %v", err)
	}
}

func TestParseJSONTrailingData(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"day":"2024-03-01"} {"again":true}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want JSON error for trailing data, got %v", err)
	}
}

func TestParseJSONRejectsBadEnum(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"day":"2024-03-01","mode":"sideways"}`))
	if _, err := ParseJSON[payload](r); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}
