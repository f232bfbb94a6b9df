package medicationrequest

import "context"

type Repository interface {
	// Insert stores mr and sets its ID.
	Insert(ctx context.Context, mr *MedicationRequest) error
	FindByID(ctx context.Context, id int64) (*MedicationRequest, error)
	FindView(ctx context.Context, id int64) (*View, error)
	// List returns the matching views ordered by id.
	List(ctx context.Context, f Filter) ([]*View, error)
	UpdatePartial(ctx context.Context, id int64, p Patch) (*MedicationRequest, error)
}
