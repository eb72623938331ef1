package errors

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, Message: "sqlstate " + code}
}

func TestDBErrorCodeMapping(t *testing.T) {
	cases := map[string]ErrorCode{
		"23505": ErrorCodeDuplicateKey,
		"23502": ErrorCodeValidation,
		"23514": ErrorCodeValidation,
		"22P02": ErrorCodeInvalidArgument,
		"40001": ErrorCodeDB,
		"40P01": ErrorCodeDB,
		"57P03": ErrorCodeUnavailable,
		"99999": ErrorCodeDB,
	}
	for sqlstate, want := range cases {
		got, ok := DBErrorCode(pgErr(sqlstate))
		if !ok || got != want {
			t.Fatalf("DBErrorCode(%s) = %v, %v; want %v", sqlstate, got, ok, want)
		}
	}
	if _, ok := DBErrorCode(New(ErrorCodeUnknown, "not a pg error")); ok {
		t.Fatalf("non-pg error must not classify")
	}
}

func TestFromPostgresWrapsWithMappedCode(t *testing.T) {
	err := FromPostgres(pgErr("23505"), "save profile")
	if !IsCode(err, ErrorCodeDuplicateKey) {
		t.Fatalf("want DuplicateKey, got %v", err)
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("duplicate key not detected through the wrap: %v", err)
	}
	if IsDeadlock(err) {
		t.Fatalf("unique violation is not a deadlock")
	}
	if FromPostgres(nil, "noop") != nil {
		t.Fatalf("nil must pass through")
	}
}

func TestIsDeadlock(t *testing.T) {
	if !IsDeadlock(FromPostgres(pgErr("40P01"), "tx")) {
		t.Fatalf("deadlock not detected")
	}
}

func TestRetryable(t *testing.T) {
	for _, sqlstate := range []string{"40001", "40P01", "55P03", "57P03"} {
		if !Retryable(FromPostgres(pgErr(sqlstate), "contention")) {
			t.Fatalf("sqlstate %s must be retryable", sqlstate)
		}
	}
	if Retryable(FromPostgres(pgErr("23505"), "dup")) {
		t.Fatalf("constraint violations are not retryable")
	}
	if Retryable(context.Canceled) {
		t.Fatalf("cancellation is not retryable")
	}
	if Retryable(nil) {
		t.Fatalf("nil is not retryable")
	}
}
