package medicationrequest

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/scburnad/patient-medication-app/internal/platform/db"
)

// Service runs each medication request operation in its own transactional
// scope. Errors from the validator and repository are returned unchanged.
type Service struct {
	tx        db.Transactor
	repo      Repository
	validator *Validator
}

func NewService(tx db.Transactor, repo Repository, validator *Validator) *Service {
	return &Service{tx: tx, repo: repo, validator: validator}
}

// Create validates the references of in and stores a new request. Nothing is
// written when a reference is missing.
func (s *Service) Create(ctx context.Context, in Create) (*View, error) {
	var out *View
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.validator.Validate(ctx, in.References()); err != nil {
			return err
		}

		mr := in.toModel()
		if err := s.repo.Insert(ctx, mr); err != nil {
			return err
		}
		// Read back through the join so the response matches a later Get
		// even when the validator resolved references from a cache.
		var err error
		out, err = s.repo.FindView(ctx, mr.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("medication_request_id", out.ID).
		Int64("patient_reference", out.PatientReference).
		Str("status", string(out.Status)).
		Msg("medication request created")
	return out, nil
}

// List returns the views matching f. A status outside the known set matches
// nothing and is answered without a query.
func (s *Service) List(ctx context.Context, f Filter) ([]*View, error) {
	if f.Status != nil && !f.Status.Valid() {
		return []*View{}, nil
	}

	var out []*View
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	var out *View
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.FindView(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies p and returns the updated view. Any status may follow any
// other. An empty patch changes nothing but still fails for an unknown id.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (*View, error) {
	var out *View
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if !p.Empty() {
			if _, err := s.repo.UpdatePartial(ctx, id, p); err != nil {
				return err
			}
		}
		var err error
		out, err = s.repo.FindView(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !p.Empty() {
		evt := zerolog.Ctx(ctx).Info().Int64("medication_request_id", id)
		if p.Status != nil {
			evt = evt.Str("status", string(*p.Status))
		}
		evt.Msg("medication request updated")
	}
	return out, nil
}
