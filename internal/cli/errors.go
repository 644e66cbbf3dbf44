package cli

import (
	"errors"

	"github.com/roach88/kvquery/internal/facade"
	"github.com/roach88/kvquery/internal/schema"
)

// Error codes for operation failures. Schema errors keep their own E-codes
// and query errors their QueryError code.
const (
	ErrCodeGeneric          = facade.CodeGeneric
	ErrCodeInvalidFlag      = "E010"
	ErrCodeOpenFailed       = "E011"
	ErrCodeMissingIdentity  = facade.CodeMissingIdentity
	ErrCodeUnsupportedValue = facade.CodeUnsupportedValue
	ErrCodeStoreNotFound    = facade.CodeStoreNotFound
	ErrCodeKeyExists        = facade.CodeKeyExists
	ErrCodeMissingKey       = facade.CodeMissingKey
	ErrCodeInvalidKey       = facade.CodeInvalidKey
	ErrCodeConstraint       = facade.CodeConstraint
	ErrCodeMigration        = facade.CodeMigration
	ErrCodeDowngrade        = facade.CodeDowngrade
)

// classifyError maps an error to an output code and exit code. Failures
// that stop the database from opening exit with ExitCommandError.
func classifyError(err error) (string, int) {
	code := facade.ErrorCode(err)
	var le *schema.LoadError
	switch {
	case errors.As(err, &le):
		return code, ExitCommandError
	case code == ErrCodeMigration, code == ErrCodeDowngrade, code == ErrCodeStoreNotFound:
		return code, ExitCommandError
	default:
		return code, ExitFailure
	}
}

// fail writes err through the formatter and returns it with its exit code.
func fail(f *OutputFormatter, message string, err error) error {
	code, exit := classifyError(err)
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, message, err)
}

// failCode writes a command error with an explicit code.
func failCode(f *OutputFormatter, code, message string, err error) error {
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, message, err)
}
