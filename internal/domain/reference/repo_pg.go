package reference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scburnad/patient-medication-app/internal/platform/db"
)

type storePG struct {
	pool *pgxpool.Pool
}

// NewPostgresStore reads reference rows from PostgreSQL, inside the
// transaction carried by ctx when there is one.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &storePG{pool: pool}
}

func (s *storePG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.pool)
}

func (s *storePG) FindPatientByID(ctx context.Context, id int64) (*Patient, error) {
	var (
		p   Patient
		dob time.Time
		sex string
	)
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT id, first_name, last_name, date_of_birth, sex::text
		FROM patient WHERE id = $1`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &dob, &sex)
	if err != nil {
		return nil, notFound(err, "find patient")
	}
	p.DateOfBirth = civil.DateOf(dob)
	p.Sex = Sex(sex)
	return &p, nil
}

func (s *storePG) FindClinicianByRegistrationID(ctx context.Context, registrationID string) (*Clinician, error) {
	var c Clinician
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT id, first_name, last_name, registration_id
		FROM clinician WHERE registration_id = $1`, registrationID,
	).Scan(&c.ID, &c.FirstName, &c.LastName, &c.RegistrationID)
	if err != nil {
		return nil, notFound(err, "find clinician")
	}
	return &c, nil
}

func (s *storePG) FindMedicationByCode(ctx context.Context, code string) (*Medication, error) {
	var (
		m    Medication
		form string
	)
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT id, code, code_name, code_system, strength_value, strength_unit, form::text
		FROM medication WHERE code = $1`, code,
	).Scan(&m.ID, &m.Code, &m.CodeName, &m.CodeSystem, &m.StrengthValue, &m.StrengthUnit, &form)
	if err != nil {
		return nil, notFound(err, "find medication")
	}
	m.Form = Form(form)
	return &m, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
