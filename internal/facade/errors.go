package facade

import (
	"errors"
	"fmt"

	"github.com/roach88/kvquery/internal/kv"
	"github.com/roach88/kvquery/internal/query"
	"github.com/roach88/kvquery/internal/schema"
)

var (
	// ErrMigrationNotImplemented is returned by Connect when the stored
	// version is older than the requested one and not zero.
	ErrMigrationNotImplemented = errors.New("migration not implemented")

	// ErrVersionDowngrade is returned by Connect when the stored version is
	// newer than the requested one.
	ErrVersionDowngrade = errors.New("stored version is newer than requested")

	// ErrUnsupportedValue is returned when a value of the wrong kind is
	// written: Insert takes objects or arrays, Update takes objects.
	ErrUnsupportedValue = errors.New("can not save this type of data")
)

// MissingIdentityError is returned by Update and Delete when Where carries
// no truthy key or id.
type MissingIdentityError struct {
	Op    string
	Store string
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("missing identity: %s on %q requires where.key or where.id", e.Op, e.Store)
}

// IsMissingIdentity reports whether err is a *MissingIdentityError.
func IsMissingIdentity(err error) bool {
	var mie *MissingIdentityError
	return errors.As(err, &mie)
}

// Error codes reported for operation failures. Query errors report their
// QueryError code and schema errors their LoadError code.
const (
	CodeGeneric          = "E001"
	CodeMissingIdentity  = "MISSING_IDENTITY"
	CodeUnsupportedValue = "UNSUPPORTED_VALUE"
	CodeStoreNotFound    = "STORE_NOT_FOUND"
	CodeKeyExists        = "KEY_EXISTS"
	CodeMissingKey       = "MISSING_KEY"
	CodeInvalidKey       = "INVALID_KEY"
	CodeConstraint       = "CONSTRAINT"
	CodeMigration        = "MIGRATION_NOT_IMPLEMENTED"
	CodeDowngrade        = "VERSION_DOWNGRADE"
)

// ErrorCode maps err to a stable code. A nil error has the empty code.
func ErrorCode(err error) string {
	var le *schema.LoadError
	var qe *query.QueryError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &le):
		return le.Code
	case errors.As(err, &qe):
		return string(qe.Code)
	case IsMissingIdentity(err):
		return CodeMissingIdentity
	case errors.Is(err, ErrUnsupportedValue):
		return CodeUnsupportedValue
	case errors.Is(err, ErrMigrationNotImplemented):
		return CodeMigration
	case errors.Is(err, ErrVersionDowngrade):
		return CodeDowngrade
	case errors.Is(err, kv.ErrStoreNotFound):
		return CodeStoreNotFound
	case errors.Is(err, kv.ErrKeyExists):
		return CodeKeyExists
	case errors.Is(err, kv.ErrMissingKey):
		return CodeMissingKey
	case errors.Is(err, kv.ErrInvalidKey):
		return CodeInvalidKey
	case errors.Is(err, kv.ErrConstraint):
		return CodeConstraint
	default:
		return CodeGeneric
	}
}
