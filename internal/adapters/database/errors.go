package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

// PostgreSQL error codes the adapters translate
const (
	pqUniqueViolation     pq.ErrorCode = "23505"
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqNotNullViolation    pq.ErrorCode = "23502"
	pqCheckViolation      pq.ErrorCode = "23514"
	pqInvalidTextRep      pq.ErrorCode = "22P02"
	pqStringTooLong       pq.ErrorCode = "22001"
	pqNumericOutOfRange   pq.ErrorCode = "22003"
)

// constraintMessages overrides the message returned for a given error code
type constraintMessages map[pq.ErrorCode]string

// translateError maps a driver error onto the application error taxonomy.
// Store unavailability is a dependency error, constraint violations are
// conflicts or validation errors, everything else is internal.
func translateError(err error, action string, messages constraintMessages) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if msg, ok := messages[pqErr.Code]; ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return apperrors.NewConflictError(msg)
			default:
				return apperrors.NewValidationError(msg)
			}
		}

		switch pqErr.Code {
		case pqUniqueViolation:
			return apperrors.NewConflictError(action + ": record already exists")
		case pqForeignKeyViolation, pqNotNullViolation, pqCheckViolation,
			pqInvalidTextRep, pqStringTooLong, pqNumericOutOfRange:
			return apperrors.NewValidationError(action + ": " + pqErr.Message)
		}

		// 08: connection exception, 53: insufficient resources, 57P: operator intervention
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return apperrors.NewDependencyError("primary store unavailable", err)
		}
		return apperrors.NewInternalError(action, err)
	}

	if isUnavailable(err) {
		return apperrors.NewDependencyError("primary store unavailable", err)
	}
	return apperrors.NewInternalError(action, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
