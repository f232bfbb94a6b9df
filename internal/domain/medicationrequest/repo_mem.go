package medicationrequest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/scburnad/patient-medication-app/internal/domain/reference"
)

type memRepo struct {
	mu     sync.RWMutex
	rows   map[int64]MedicationRequest
	nextID int64
	refs   reference.Store
}

// NewMemoryRepo keeps medication requests in process memory and joins views
// against refs.
func NewMemoryRepo(refs reference.Store) Repository {
	return &memRepo{
		rows: make(map[int64]MedicationRequest),
		refs: refs,
	}
}

func (r *memRepo) Insert(_ context.Context, mr *MedicationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	mr.ID = r.nextID
	r.rows[mr.ID] = copyRequest(mr)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id int64) (*MedicationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mr, ok := r.rows[id]
	if !ok {
		return nil, &RequestNotFoundError{ID: id}
	}
	out := copyRequest(&mr)
	return &out, nil
}

func (r *memRepo) FindView(ctx context.Context, id int64) (*View, error) {
	mr, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v, ok, err := r.join(ctx, mr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &RequestNotFoundError{ID: id}
	}
	return v, nil
}

func (r *memRepo) List(ctx context.Context, f Filter) ([]*View, error) {
	r.mu.RLock()
	matched := make([]MedicationRequest, 0, len(r.rows))
	for _, mr := range r.rows {
		if f.matches(&mr) {
			matched = append(matched, copyRequest(&mr))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	views := make([]*View, 0, len(matched))
	for i := range matched {
		v, ok, err := r.join(ctx, &matched[i])
		if err != nil {
			return nil, err
		}
		if ok {
			views = append(views, v)
		}
	}
	return views, nil
}

func (r *memRepo) UpdatePartial(_ context.Context, id int64, p Patch) (*MedicationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mr, ok := r.rows[id]
	if !ok {
		return nil, &RequestNotFoundError{ID: id}
	}
	p.apply(&mr)
	r.rows[id] = copyRequest(&mr)
	out := copyRequest(&mr)
	return &out, nil
}

// join behaves like an inner join: a row whose clinician or medication is
// gone is reported as absent.
func (r *memRepo) join(ctx context.Context, mr *MedicationRequest) (*View, bool, error) {
	c, err := r.refs.FindClinicianByRegistrationID(ctx, mr.ClinicianReference)
	if errors.Is(err, reference.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("join clinician: %w", err)
	}

	m, err := r.refs.FindMedicationByCode(ctx, mr.MedicationReference)
	if errors.Is(err, reference.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("join medication: %w", err)
	}
	return newView(mr, c, m), true, nil
}

func copyRequest(mr *MedicationRequest) MedicationRequest {
	out := *mr
	if mr.EndDate != nil {
		d := *mr.EndDate
		out.EndDate = &d
	}
	return out
}
