package infra

import (
	"errors"

	"gin-checkout-core/internal/pkg/errs"
)

// RepositoryErrorKind is what the use case layer branches on; driver errors
// never leave the infra packages unclassified.
type RepositoryErrorKind string

const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindConflict           RepositoryErrorKind = "CONFLICT"
)

type RepositoryError struct {
	Kind  RepositoryErrorKind
	msg   string
	cause error
}

func (e *RepositoryError) Error() string {
	s := string(e.Kind) + ": " + e.msg
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *RepositoryError) Unwrap() error {
	return e.cause
}

// WrapRepoErr classifies err as kind, KindDBFailure when omitted. A nil err
// yields an error carrying only the kind and msg.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := KindDBFailure
	if len(kind) > 0 {
		k = kind[0]
	}
	var cause error
	if err != nil {
		cause = errs.WithStack(err)
	}
	return &RepositoryError{Kind: k, msg: msg, cause: cause}
}

// IsKind checks the outermost RepositoryError in err's chain.
func IsKind(err error, kind RepositoryErrorKind) bool {
	var e *RepositoryError
	return errors.As(err, &e) && e.Kind == kind
}
