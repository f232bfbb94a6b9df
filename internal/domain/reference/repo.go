package reference

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Store when no row matches.
var ErrNotFound = errors.New("reference not found")

// Kind names an entity that can be referenced by a medication request.
type Kind string

const (
	KindPatient    Kind = "patient"
	KindClinician  Kind = "clinician"
	KindMedication Kind = "medication"
)

// NotFoundMessage is the client facing text for a missing reference.
func NotFoundMessage(kind Kind, value string) string {
	switch kind {
	case KindPatient:
		return fmt.Sprintf("Patient with id %s not found", value)
	case KindClinician:
		return fmt.Sprintf("Clinician with registration ID %s not found", value)
	case KindMedication:
		return fmt.Sprintf("Medication with code %s not found", value)
	}
	return fmt.Sprintf("%s %s not found", kind, value)
}

// Store looks up reference entities by their stable keys. Lookups are exact
// and case sensitive.
type Store interface {
	FindPatientByID(ctx context.Context, id int64) (*Patient, error)
	FindClinicianByRegistrationID(ctx context.Context, registrationID string) (*Clinician, error)
	FindMedicationByCode(ctx context.Context, code string) (*Medication, error)
}
