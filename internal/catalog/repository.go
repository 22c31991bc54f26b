package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a client or vehicle with the given ID is not found.
var ErrNotFound = errors.New("record not found")

// ErrEmptyID is returned when trying to update a record with an empty ID.
var ErrEmptyID = errors.New("empty record ID")

// ClientFilter narrows a client listing. Zero values match everything.
type ClientFilter struct {
	Status ClientStatus
	Query  string
}

// VehicleFilter narrows a vehicle listing. Zero values match everything.
type VehicleFilter struct {
	Status VehicleStatus
	Query  string
}

// ClientRepository is the storage contract for the client directory.
type ClientRepository interface {
	List(ctx context.Context, f ClientFilter) ([]Client, error)
	Get(ctx context.Context, id string) (Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c Client) error
}

// VehicleRepository is the storage contract for the vehicle directory.
type VehicleRepository interface {
	List(ctx context.Context, f VehicleFilter) ([]Vehicle, error)
	Get(ctx context.Context, id string) (Vehicle, error)
	// GetForUpdate reads a vehicle and holds it against concurrent writers
	// until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (Vehicle, error)
	Create(ctx context.Context, v *Vehicle) error
	Update(ctx context.Context, v Vehicle) error
}

// Match reports whether c passes the filter.
// Query matches name, identification or email, case-insensitive.
func (f ClientFilter) Match(c Client) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return containsFold(f.Query, c.Name, c.Identification, c.Email)
}

// Match reports whether v passes the filter.
// Query matches brand or model, case-insensitive.
func (f VehicleFilter) Match(v Vehicle) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	return containsFold(f.Query, v.Brand, v.Model)
}

func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// ActiveClients lists the clients that may be picked for a sale.
func ActiveClients(ctx context.Context, repo ClientRepository, query string) ([]Client, error) {
	return repo.List(ctx, ClientFilter{Status: ClientActive, Query: query})
}

// AvailableVehicles lists the vehicles that may be picked for a sale.
func AvailableVehicles(ctx context.Context, repo VehicleRepository, query string) ([]Vehicle, error) {
	return repo.List(ctx, VehicleFilter{Status: VehicleAvailable, Query: query})
}
