package medicationrequest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scburnad/patient-medication-app/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const requestCols = `mr.id, mr.patient_reference, mr.clinician_reference, mr.medication_reference,
	mr.reason, mr.prescribed_date, mr.start_date, mr.end_date, mr.frequency, mr.status::text`

const viewFrom = `FROM medication_request mr
	JOIN clinician c ON c.registration_id = mr.clinician_reference
	JOIN medication m ON m.code = mr.medication_reference`

func (r *repoPG) Insert(ctx context.Context, mr *MedicationRequest) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medication_request (
			patient_reference, clinician_reference, medication_reference, reason,
			prescribed_date, start_date, end_date, frequency, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::medication_request_status_enum)
		RETURNING id`,
		mr.PatientReference, mr.ClinicianReference, mr.MedicationReference, mr.Reason,
		dateArg(mr.PrescribedDate), dateArg(mr.StartDate), nullableDateArg(mr.EndDate),
		mr.Frequency, string(mr.Status),
	).Scan(&mr.ID)
	if err != nil {
		return fmt.Errorf("insert medication request: %w", err)
	}
	return nil
}

func (r *repoPG) FindByID(ctx context.Context, id int64) (*MedicationRequest, error) {
	mr, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM medication_request mr WHERE mr.id = $1`, id))
	if err != nil {
		return nil, requestError(err, id, "find medication request")
	}
	return mr, nil
}

func (r *repoPG) FindView(ctx context.Context, id int64) (*View, error) {
	v, err := scanView(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+`, m.code_name, c.first_name, c.last_name `+viewFrom+` WHERE mr.id = $1`, id))
	if err != nil {
		return nil, requestError(err, id, "find medication request view")
	}
	return v, nil
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*View, error) {
	var (
		where []string
		args  []any
	)
	// status is compared as text so an unknown value matches nothing
	// instead of failing the enum cast.
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, "mr.status::text = $"+strconv.Itoa(len(args)))
	}
	if f.PrescribedFrom != nil {
		args = append(args, dateArg(*f.PrescribedFrom))
		where = append(where, "mr.prescribed_date >= $"+strconv.Itoa(len(args)))
	}
	if f.PrescribedTo != nil {
		args = append(args, dateArg(*f.PrescribedTo))
		where = append(where, "mr.prescribed_date <= $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + requestCols + `, m.code_name, c.first_name, c.last_name ` + viewFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY mr.id`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list medication requests: %w", err)
	}
	defer rows.Close()

	views := []*View{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medication request: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medication requests: %w", err)
	}
	return views, nil
}

func (r *repoPG) UpdatePartial(ctx context.Context, id int64, p Patch) (*MedicationRequest, error) {
	if p.Empty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if p.EndDateSet {
		args = append(args, nullableDateArg(p.EndDate))
		sets = append(sets, "end_date = $"+strconv.Itoa(len(args)))
	}
	if p.Frequency != nil {
		args = append(args, *p.Frequency)
		sets = append(sets, "frequency = $"+strconv.Itoa(len(args)))
	}
	if p.Status != nil {
		args = append(args, string(*p.Status))
		sets = append(sets, "status = $"+strconv.Itoa(len(args))+"::medication_request_status_enum")
	}
	args = append(args, id)

	query := `UPDATE medication_request mr SET ` + strings.Join(sets, ", ") +
		` WHERE mr.id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + requestCols

	mr, err := scanRequest(r.conn(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, requestError(err, id, "update medication request")
	}
	return mr, nil
}

func requestError(err error, id int64, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &RequestNotFoundError{ID: id}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pgx maps DATE to time.Time, civil.Date converts at the edges.
func dateArg(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func nullableDateArg(d *civil.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := dateArg(*d)
	return &t
}

func scanRequest(row pgx.Row) (*MedicationRequest, error) {
	var (
		mr         MedicationRequest
		prescribed time.Time
		start      time.Time
		end        *time.Time
		status     string
	)
	err := row.Scan(
		&mr.ID, &mr.PatientReference, &mr.ClinicianReference, &mr.MedicationReference,
		&mr.Reason, &prescribed, &start, &end, &mr.Frequency, &status,
	)
	if err != nil {
		return nil, err
	}
	fillDates(&mr, prescribed, start, end)
	mr.Status = Status(status)
	return &mr, nil
}

func scanView(row pgx.Row) (*View, error) {
	var (
		v          View
		prescribed time.Time
		start      time.Time
		end        *time.Time
		status     string
	)
	err := row.Scan(
		&v.ID, &v.PatientReference, &v.ClinicianReference, &v.MedicationReference,
		&v.Reason, &prescribed, &start, &end, &v.Frequency, &status,
		&v.MedicationCodeName, &v.ClinicianFirstName, &v.ClinicianLastName,
	)
	if err != nil {
		return nil, err
	}
	fillDates(&v.MedicationRequest, prescribed, start, end)
	v.Status = Status(status)
	return &v, nil
}

func fillDates(mr *MedicationRequest, prescribed, start time.Time, end *time.Time) {
	mr.PrescribedDate = civil.DateOf(prescribed)
	mr.StartDate = civil.DateOf(start)
	if end != nil {
		d := civil.DateOf(*end)
		mr.EndDate = &d
	}
}
