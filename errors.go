package icefile

import (
	"errors"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// ErrMalformedSchema is wrapped by errors returned when the schema embedded in
// a data file is internally inconsistent, for example when two children of the
// same group carry the same field id. Malformed file schemas are never repaired
// or null-filled around; the whole read fails during initialization.
var ErrMalformedSchema = errors.New("icefile: malformed file schema")

// ResolutionError is an error type returned by calls to Resolve when a
// requested column is present in the file but its stored type cannot produce
// the requested type, neither directly nor through a safe widening conversion.
//
// Columns missing from the file are not resolution errors: they are the
// expected outcome of schema evolution and materialize as null columns.
type ResolutionError struct {
	Reason string
	Path   []string
	Source parquet.Type // stored type; nil when the mismatch is structural
	Target parquet.Type // requested type; nil when the mismatch is structural
}

// Error satisfies the error interface.
func (e *ResolutionError) Error() string {
	if e.Source != nil && e.Target != nil {
		return fmt.Sprintf("icefile: cannot resolve column %q: %s: %s -> %s",
			columnPath(e.Path), e.Reason, e.Source, e.Target)
	}
	return fmt.Sprintf("icefile: cannot resolve column %q: %s", columnPath(e.Path), e.Reason)
}

func resolutionError(path columnPath, reason string) *ResolutionError {
	return &ResolutionError{Reason: reason, Path: path}
}

func conversionError(path columnPath, source, target parquet.Type) *ResolutionError {
	return &ResolutionError{
		Reason: "no safe conversion from the stored type",
		Path:   path,
		Source: source,
		Target: target,
	}
}

func malformedSchemaError(path columnPath, reason string) error {
	return fmt.Errorf("%w: column %q: %s", ErrMalformedSchema, path, reason)
}
