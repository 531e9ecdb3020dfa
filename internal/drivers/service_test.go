package drivers

import (
	"context"
	"testing"

	"github.com/alikamatu/medi-rides-sub003/internal/repository"
	"github.com/alikamatu/medi-rides-sub003/pkg/models"
)

// fakeDB holds a driver roster and filters availability the way the
// SQL predicate does.
type fakeDB struct {
	repository.DatabaseRepo

	drivers []models.Driver
}

func (f *fakeDB) ListAvailableDrivers(ctx context.Context) ([]models.Driver, error) {
	var available []models.Driver
	for _, d := range f.drivers {
		if d.IsAvailable {
			available = append(available, d)
		}
	}
	return available, nil
}

func (f *fakeDB) SetDriverAvailability(ctx context.Context, id string, isAvailable bool) (models.Driver, error) {
	for i := range f.drivers {
		if f.drivers[i].ID == id {
			f.drivers[i].IsAvailable = isAvailable
			return f.drivers[i], nil
		}
	}
	return models.Driver{}, repository.ErrNotFound
}

func TestListAvailableExcludesUnavailableDrivers(t *testing.T) {
	db := &fakeDB{drivers: []models.Driver{
		{ID: "d1", IsAvailable: true},
		{ID: "d2", IsAvailable: false},
		{ID: "d3", IsAvailable: true},
	}}
	svc := &Service{DB: db}

	available, err := svc.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable() error = %v", err)
	}

	if len(available) != 2 {
		t.Fatalf("ListAvailable() returned %d drivers, want 2", len(available))
	}
	for _, d := range available {
		if d.ID == "d2" {
			t.Error("driver d2 is unavailable but was offered for assignment")
		}
	}
}

func TestSetAvailabilityRemovesDriverFromAvailableList(t *testing.T) {
	db := &fakeDB{drivers: []models.Driver{
		{ID: "d1", IsAvailable: true},
	}}
	svc := &Service{DB: db}

	if _, err := svc.SetAvailability(context.Background(), "d1", false); err != nil {
		t.Fatalf("SetAvailability() error = %v", err)
	}

	available, err := svc.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("ListAvailable() error = %v", err)
	}
	if len(available) != 0 {
		t.Errorf("ListAvailable() returned %d drivers after going off duty, want 0", len(available))
	}
}
