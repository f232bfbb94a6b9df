package reference

import "cloud.google.com/go/civil"

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Form string

const (
	FormPowder  Form = "powder"
	FormTablet  Form = "tablet"
	FormCapsule Form = "capsule"
	FormSyrup   Form = "syrup"
)

// Patient maps to the patient table.
type Patient struct {
	ID          int64      `db:"id" json:"id"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DateOfBirth civil.Date `db:"date_of_birth" json:"date_of_birth"`
	Sex         Sex        `db:"sex" json:"sex"`
}

// Clinician maps to the clinician table. RegistrationID is the stable
// reference medication requests point at.
type Clinician struct {
	ID             int64  `db:"id" json:"id"`
	FirstName      string `db:"first_name" json:"first_name"`
	LastName       string `db:"last_name" json:"last_name"`
	RegistrationID string `db:"registration_id" json:"registration_id"`
}

// Medication maps to the medication table. Code is the stable reference
// medication requests point at.
type Medication struct {
	ID            int64  `db:"id" json:"id"`
	Code          string `db:"code" json:"code"`
	CodeName      string `db:"code_name" json:"code_name"`
	CodeSystem    string `db:"code_system" json:"code_system"`
	StrengthValue int    `db:"strength_value" json:"strength_value"`
	StrengthUnit  string `db:"strength_unit" json:"strength_unit"`
	Form          Form   `db:"form" json:"form"`
}
