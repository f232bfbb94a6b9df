package medicationrequest

import (
	"cloud.google.com/go/civil"

	"github.com/scburnad/patient-medication-app/internal/domain/reference"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusOnHold    Status = "on-hold"
)

var validStatuses = map[Status]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusOnHold:    true,
}

func (s Status) Valid() bool {
	return validStatuses[s]
}

// MedicationRequest maps to the medication_request table. Only EndDate,
// Frequency and Status change after creation.
type MedicationRequest struct {
	ID                  int64       `db:"id" json:"id"`
	PatientReference    int64       `db:"patient_reference" json:"patient_reference"`
	ClinicianReference  string      `db:"clinician_reference" json:"clinician_reference"`
	MedicationReference string      `db:"medication_reference" json:"medication_reference"`
	Reason              string      `db:"reason" json:"reason"`
	PrescribedDate      civil.Date  `db:"prescribed_date" json:"prescribed_date"`
	StartDate           civil.Date  `db:"start_date" json:"start_date"`
	EndDate             *civil.Date `db:"end_date" json:"end_date"`
	Frequency           string      `db:"frequency" json:"frequency"`
	Status              Status      `db:"status" json:"status"`
}

// View is a medication request with the display columns of the clinician
// and medication it references, joined at read time.
type View struct {
	MedicationRequest
	MedicationCodeName string `json:"medication_code_name"`
	ClinicianFirstName string `json:"clinician_first_name"`
	ClinicianLastName  string `json:"clinician_last_name"`
}

func newView(mr *MedicationRequest, c *reference.Clinician, m *reference.Medication) *View {
	return &View{
		MedicationRequest:  *mr,
		MedicationCodeName: m.CodeName,
		ClinicianFirstName: c.FirstName,
		ClinicianLastName:  c.LastName,
	}
}

// Create is the body of POST /medication-requests. PatientReference is
// checked for presence by the handler; a zero id is looked up like any other.
type Create struct {
	PatientReference    int64       `json:"patient_reference"`
	ClinicianReference  string      `json:"clinician_reference" validate:"required,max=20"`
	MedicationReference string      `json:"medication_reference" validate:"required,max=10"`
	Reason              string      `json:"reason" validate:"required"`
	PrescribedDate      civil.Date  `json:"prescribed_date" validate:"required"`
	StartDate           civil.Date  `json:"start_date" validate:"required"`
	EndDate             *civil.Date `json:"end_date"`
	Frequency           string      `json:"frequency" validate:"required,max=50"`
	Status              Status      `json:"status" validate:"required,oneof=active completed cancelled on-hold"`
}

func (c Create) References() References {
	return References{
		PatientReference:    c.PatientReference,
		ClinicianReference:  c.ClinicianReference,
		MedicationReference: c.MedicationReference,
	}
}

func (c Create) toModel() *MedicationRequest {
	return &MedicationRequest{
		PatientReference:    c.PatientReference,
		ClinicianReference:  c.ClinicianReference,
		MedicationReference: c.MedicationReference,
		Reason:              c.Reason,
		PrescribedDate:      c.PrescribedDate,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		Frequency:           c.Frequency,
		Status:              c.Status,
	}
}

// Patch is a sparse update. Nil fields are left unchanged. EndDateSet with a
// nil EndDate clears the end date.
type Patch struct {
	EndDateSet bool
	EndDate    *civil.Date
	Frequency  *string
	Status     *Status
}

func (p Patch) Empty() bool {
	return !p.EndDateSet && p.Frequency == nil && p.Status == nil
}

func (p Patch) apply(mr *MedicationRequest) {
	if p.EndDateSet {
		mr.EndDate = p.EndDate
	}
	if p.Frequency != nil {
		mr.Frequency = *p.Frequency
	}
	if p.Status != nil {
		mr.Status = *p.Status
	}
}

// Filter narrows a list. Set fields are combined with AND. Date bounds are
// inclusive. A Status that is not one of the known values matches nothing.
type Filter struct {
	Status         *Status
	PrescribedFrom *civil.Date
	PrescribedTo   *civil.Date
}

func (f Filter) matches(mr *MedicationRequest) bool {
	if f.Status != nil && mr.Status != *f.Status {
		return false
	}
	if f.PrescribedFrom != nil && mr.PrescribedDate.Before(*f.PrescribedFrom) {
		return false
	}
	if f.PrescribedTo != nil && mr.PrescribedDate.After(*f.PrescribedTo) {
		return false
	}
	return true
}
