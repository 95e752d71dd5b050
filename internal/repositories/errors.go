package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrPolicyRejected = errors.New("write rejected by access policy")
)

// insufficient_privilege; raised for row-level security violations
const sqlStateInsufficientPrivilege = "42501"

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPolicyRejected(err error) bool {
	return errors.Is(err, ErrPolicyRejected)
}

// ClassifyError wraps permission and row-level-security failures in
// ErrPolicyRejected. Other errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil || errors.Is(err, ErrPolicyRejected) {
		return err
	}
	if isPolicyError(err) {
		return fmt.Errorf("%w: %w", ErrPolicyRejected, err)
	}
	return err
}

func isPolicyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateInsufficientPrivilege {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateInsufficientPrivilege {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "row-level security") ||
		strings.Contains(msg, "permission denied")
}
