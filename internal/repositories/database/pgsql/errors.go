package pgsql

import (
	"errors"
	"fmt"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
	pgRaiseException      = "P0001"
)

// mapPgError translates driver errors into apperrors sentinels; what names the failed operation.
func mapPgError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, what, pgErr.ConstraintName)
		case pgForeignKeyViolation, pgCheckViolation, pgInvalidText:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, what, pgErr.Message)
		case pgRaiseException:
			return apperrors.NewUnprocessableError(pgErr.Message)
		}
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}
