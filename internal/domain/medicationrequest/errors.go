package medicationrequest

import (
	"fmt"
	"strings"

	"github.com/scburnad/patient-medication-app/internal/domain/reference"
	"github.com/scburnad/patient-medication-app/internal/platform/validate"
)

// ReferenceNotFoundError reports the first reference of a new request that
// did not resolve.
type ReferenceNotFoundError struct {
	Kind  reference.Kind
	Value string
}

func (e *ReferenceNotFoundError) Error() string {
	return reference.NotFoundMessage(e.Kind, e.Value)
}

type RequestNotFoundError struct {
	ID int64
}

func (e *RequestNotFoundError) Error() string {
	return fmt.Sprintf("Medication request with id %d not found", e.ID)
}

// ValidationError is a request body or query that failed schema checks.
type ValidationError struct {
	Fields validate.Errors
}

func newValidationError(loc []string, msg, typ string) *ValidationError {
	return &ValidationError{Fields: validate.Errors{{Loc: loc, Msg: msg, Type: typ}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = strings.Join(f.Loc, ".") + ": " + f.Msg
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}
