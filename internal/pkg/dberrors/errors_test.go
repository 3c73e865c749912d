package dberrors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	fk := &pgconn.PgError{Code: "23503"}

	if !IsDuplicateConstraintError(unique, "users_email_key") || !IsDuplicateConstraintError(unique, "") {
		t.Error("Expected unique violation to match")
	}
	if IsDuplicateConstraintError(unique, "users_username_key") {
		t.Error("Expected a different constraint not to match")
	}
	if !IsForeignKeyError(fk) || IsForeignKeyError(unique) {
		t.Error("Unexpected foreign key classification")
	}
	if !IsNoRows(fmt.Errorf("query: %w", pgx.ErrNoRows)) {
		t.Error("Expected wrapped ErrNoRows to match")
	}
}
