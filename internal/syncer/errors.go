package syncer

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindPolicy: the remote store refused the write for this account.
	KindPolicy Kind = "policy"
	// KindVerification: the write reported success but the re-read shows it
	// did not take effect.
	KindVerification Kind = "verification"
	// KindRemote: network or unexpected remote failure.
	KindRemote Kind = "remote"
	// KindValidation: the mutation itself refused to apply.
	KindValidation Kind = "validation"
)

// Error is returned by every failed mutation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindPolicy:
		return fmt.Sprintf("%s: the server refused to save the change. This account is most likely not allowed to write by the database access policy (row-level security); ask an administrator to check the write policy: %v", e.Op, e.Err)
	case KindVerification:
		return fmt.Sprintf("%s: the server reported success but the change is not there. It was most likely rejected by the database access policy; local data has been restored to the server copy", e.Op)
	case KindRemote:
		return fmt.Sprintf("%s: could not save to the server: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPolicyRejection reports whether err means the remote access policy
// refused the change, either outright or as detected by verification.
func IsPolicyRejection(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == KindPolicy || se.Kind == KindVerification
}

func KindOf(err error) (Kind, bool) {
	var se *Error
	if !errors.As(err, &se) {
		return "", false
	}
	return se.Kind, true
}

var errStillPresent = errors.New("entity still present after delete")
