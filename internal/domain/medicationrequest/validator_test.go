package medicationrequest

import (
	"context"
	"errors"
	"testing"

	"github.com/scburnad/patient-medication-app/internal/domain/reference"
)

// recordingStore wraps a reference.Store and records which lookups ran.
type recordingStore struct {
	reference.Store
	calls []reference.Kind
	err   error
}

func (s *recordingStore) FindPatientByID(ctx context.Context, id int64) (*reference.Patient, error) {
	s.calls = append(s.calls, reference.KindPatient)
	if s.err != nil {
		return nil, s.err
	}
	return s.Store.FindPatientByID(ctx, id)
}

func (s *recordingStore) FindClinicianByRegistrationID(ctx context.Context, regID string) (*reference.Clinician, error) {
	s.calls = append(s.calls, reference.KindClinician)
	return s.Store.FindClinicianByRegistrationID(ctx, regID)
}

func (s *recordingStore) FindMedicationByCode(ctx context.Context, code string) (*reference.Medication, error) {
	s.calls = append(s.calls, reference.KindMedication)
	return s.Store.FindMedicationByCode(ctx, code)
}

func newRecordingStore() *recordingStore {
	s := reference.NewMemoryStore()
	reference.LoadDemoData(s)
	return &recordingStore{Store: s}
}

func TestValidator_Resolves(t *testing.T) {
	store := newRecordingStore()
	v := NewValidator(store)

	got, err := v.Validate(context.Background(), References{
		PatientReference:    2,
		ClinicianReference:  "MD67890",
		MedicationReference: "IBUP400",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Patient.FirstName != "Jane" || got.Clinician.LastName != "Wilson" || got.Medication.CodeName != "Ibuprofen" {
		t.Errorf("unexpected resolved rows: %+v %+v %+v", got.Patient, got.Clinician, got.Medication)
	}
	if len(store.calls) != 3 {
		t.Errorf("expected 3 lookups, got %v", store.calls)
	}
}

func TestValidator_StopsAtFirstMissing(t *testing.T) {
	tests := []struct {
		name      string
		refs      References
		wantCalls int
		wantKind  reference.Kind
	}{
		{"patient", References{999, "MD12345", "PARA500"}, 1, reference.KindPatient},
		{"clinician", References{1, "MD00000", "PARA500"}, 2, reference.KindClinician},
		{"medication", References{1, "MD12345", "XYZ"}, 3, reference.KindMedication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newRecordingStore()
			_, err := NewValidator(store).Validate(context.Background(), tt.refs)

			var refErr *ReferenceNotFoundError
			if !errors.As(err, &refErr) || refErr.Kind != tt.wantKind {
				t.Fatalf("expected missing %s, got %v", tt.wantKind, err)
			}
			if len(store.calls) != tt.wantCalls {
				t.Errorf("expected %d lookups, got %v", tt.wantCalls, store.calls)
			}
		})
	}
}

func TestValidator_StoreFailure(t *testing.T) {
	store := newRecordingStore()
	store.err = errors.New("connection refused")

	_, err := NewValidator(store).Validate(context.Background(), References{1, "MD12345", "PARA500"})

	var refErr *ReferenceNotFoundError
	if errors.As(err, &refErr) {
		t.Fatal("store failure must not be reported as a missing reference")
	}
	if !errors.Is(err, store.err) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
