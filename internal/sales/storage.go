package sales

import (
	"context"
	"errors"

	"api_dealership/internal/catalog"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to store a sale with an empty ID.
var ErrEmptyID = errors.New("empty sale ID")

// ErrDuplicate is returned when a sale ID or sale number is already stored.
var ErrDuplicate = errors.New("duplicate sale")

// SaleFilter narrows a sale listing. Zero values match everything.
type SaleFilter struct {
	ClientID  string
	VehicleID string
	Status    Status
}

// Match reports whether s passes the filter.
func (f SaleFilter) Match(s Sale) bool {
	if f.ClientID != "" && s.ClientID != f.ClientID {
		return false
	}
	if f.VehicleID != "" && s.VehicleID != f.VehicleID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	return true
}

// SaleRepository is the main interface for our sales storage layer.
type SaleRepository interface {
	List(ctx context.Context, f SaleFilter) ([]Sale, error)
	Get(ctx context.Context, id string) (Sale, error)
	Create(ctx context.Context, s *Sale) error
	Update(ctx context.Context, s Sale) error
	Delete(ctx context.Context, id string) error
}

// Repositories groups the collections a sale touches.
type Repositories struct {
	Clients  catalog.ClientRepository
	Vehicles catalog.VehicleRepository
	Sales    SaleRepository
}

// UnitOfWork gives access to the repositories and runs grouped mutations
// so that either all of them persist or none does.
type UnitOfWork interface {
	Repositories() Repositories
	Transact(ctx context.Context, fn func(r Repositories) error) error
}
