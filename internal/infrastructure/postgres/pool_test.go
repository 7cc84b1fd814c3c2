package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "user"))

	err := mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows), "user 1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	err = mapError(dup, "user with email a@b.co")
	assert.True(t, apperr.Is(err, apperr.KindAlreadyExists))
	assert.ErrorIs(t, err, dup)

	badUUID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	err = mapError(fmt.Errorf("query: %w", badUUID), "user abc")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = mapError(errors.New("connection reset"), "users")
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
