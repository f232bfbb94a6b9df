package medicationrequest

import (
	"context"
	"errors"
	"testing"

	"github.com/scburnad/patient-medication-app/internal/domain/reference"
)

func newTestRepo() Repository {
	refs := reference.NewMemoryStore()
	reference.LoadDemoData(refs)
	return NewMemoryRepo(refs)
}

func TestMemRepo_InsertAssignsIDs(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		mr := validCreate().toModel()
		if err := repo.Insert(ctx, mr); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if mr.ID != want {
			t.Errorf("expected id %d, got %d", want, mr.ID)
		}
	}
}

func TestMemRepo_ReturnsCopies(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	in := validCreate()
	in.EndDate = datePtr("2025-07-01")
	mr := in.toModel()
	repo.Insert(ctx, mr)

	*mr.EndDate = date("2030-01-01")
	mr.Frequency = "hourly"

	got, err := repo.FindByID(ctx, mr.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.EndDate.String() != "2025-07-01" || got.Frequency != "twice daily" {
		t.Errorf("stored row changed through caller's pointer: %+v", got)
	}

	*got.EndDate = date("2031-01-01")
	again, _ := repo.FindByID(ctx, mr.ID)
	if again.EndDate.String() != "2025-07-01" {
		t.Errorf("stored row changed through returned pointer: %v", again.EndDate)
	}
}

func TestMemRepo_UpdatePartial(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	mr := validCreate().toModel()
	repo.Insert(ctx, mr)

	got, err := repo.UpdatePartial(ctx, mr.ID, Patch{Frequency: strPtr("once daily")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Frequency != "once daily" || got.Status != StatusActive {
		t.Errorf("unexpected row: %+v", got)
	}

	_, err = repo.UpdatePartial(ctx, 42, Patch{Frequency: strPtr("x")})
	var nf *RequestNotFoundError
	if !errors.As(err, &nf) || nf.ID != 42 {
		t.Errorf("expected RequestNotFoundError, got %v", err)
	}
}

func TestMemRepo_ListSortedByID(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		repo.Insert(ctx, validCreate().toModel())
	}

	views, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, v := range views {
		if v.ID != int64(i+1) {
			t.Fatalf("expected id %d at position %d, got %d", i+1, i, v.ID)
		}
	}
}

func TestFilter_Matches(t *testing.T) {
	mr := &MedicationRequest{Status: StatusOnHold, PrescribedDate: date("2025-06-02")}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"same status", Filter{Status: statusPtr(StatusOnHold)}, true},
		{"other status", Filter{Status: statusPtr(StatusActive)}, false},
		{"from on the day", Filter{PrescribedFrom: datePtr("2025-06-02")}, true},
		{"to on the day", Filter{PrescribedTo: datePtr("2025-06-02")}, true},
		{"from after", Filter{PrescribedFrom: datePtr("2025-06-03")}, false},
		{"to before", Filter{PrescribedTo: datePtr("2025-06-01")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.matches(mr); got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatch_Empty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	if (Patch{EndDateSet: true}).Empty() {
		t.Error("clearing the end date is a change")
	}
}
