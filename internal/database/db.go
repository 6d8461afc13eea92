package database

import (
	"context"
	"errors"

	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres constraint names the repositories translate into domain errors
const (
	ConstraintUsersEmail        = "users_email_key"
	ConstraintUsersUsername     = "users_username_key"
	ConstraintEnrollmentsUnique = "enrollments_user_course_key"
)

// MapPostgresError translates driver errors into model sentinels. Unique
// violations on known constraints map to their specific sentinel.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case ConstraintUsersEmail:
				return models.ErrEmailTaken
			case ConstraintUsersUsername:
				return models.ErrUsernameTaken
			case ConstraintEnrollmentsUnique:
				return models.ErrAlreadyEnrolled
			}
			return models.ErrConflict
		case "23503": // foreign_key_violation
			return models.ErrNotFound
		case "23502", "22P02": // not_null_violation, invalid_text_representation
			return models.ErrBadRequest
		}
	}

	return err
}

func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}
