package medicationrequest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/scburnad/patient-medication-app/internal/domain/reference"
)

// References are the foreign keys of a new medication request.
type References struct {
	PatientReference    int64
	ClinicianReference  string
	MedicationReference string
}

// Resolved holds the rows the references point at.
type Resolved struct {
	Patient    *reference.Patient
	Clinician  *reference.Clinician
	Medication *reference.Medication
}

// Validator checks that the references of a new medication request exist.
// It only reads.
type Validator struct {
	refs reference.Store
}

func NewValidator(refs reference.Store) *Validator {
	return &Validator{refs: refs}
}

// Validate resolves the patient, then the clinician, then the medication and
// stops at the first one that is missing with a *ReferenceNotFoundError.
func (v *Validator) Validate(ctx context.Context, r References) (*Resolved, error) {
	patient, err := v.refs.FindPatientByID(ctx, r.PatientReference)
	if err != nil {
		return nil, refError(err, reference.KindPatient, strconv.FormatInt(r.PatientReference, 10))
	}

	clinician, err := v.refs.FindClinicianByRegistrationID(ctx, r.ClinicianReference)
	if err != nil {
		return nil, refError(err, reference.KindClinician, r.ClinicianReference)
	}

	medication, err := v.refs.FindMedicationByCode(ctx, r.MedicationReference)
	if err != nil {
		return nil, refError(err, reference.KindMedication, r.MedicationReference)
	}

	return &Resolved{Patient: patient, Clinician: clinician, Medication: medication}, nil
}

func refError(err error, kind reference.Kind, value string) error {
	if errors.Is(err, reference.ErrNotFound) {
		return &ReferenceNotFoundError{Kind: kind, Value: value}
	}
	return fmt.Errorf("resolve %s reference: %w", kind, err)
}
