package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"api_dealership/internal/catalog"
	"api_dealership/internal/sales"

	"github.com/google/uuid"
)

// dataset is the full in-memory state. Records are stored by value so that
// callers never hold a pointer into the store.
type dataset struct {
	clients  map[string]catalog.Client
	vehicles map[string]catalog.Vehicle
	sales    map[string]sales.Sale
}

func newDataset() *dataset {
	return &dataset{
		clients:  map[string]catalog.Client{},
		vehicles: map[string]catalog.Vehicle{},
		sales:    map[string]sales.Sale{},
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		clients:  make(map[string]catalog.Client, len(d.clients)),
		vehicles: make(map[string]catalog.Vehicle, len(d.vehicles)),
		sales:    make(map[string]sales.Sale, len(d.sales)),
	}
	for k, v := range d.clients {
		c.clients[k] = v
	}
	for k, v := range d.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range d.sales {
		c.sales[k] = v
	}
	return c
}

// LocalStorage provides an in-memory implementation of sales.UnitOfWork.
// Transact holds the write lock for the whole callback and restores a
// snapshot if the callback fails.
type LocalStorage struct {
	mu   sync.RWMutex
	data *dataset
}

// NewLocalStorage instantiates a new LocalStorage with empty collections.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{data: newDataset()}
}

// Repositories returns repositories that lock per call.
func (l *LocalStorage) Repositories() sales.Repositories {
	return view{s: l}.repositories()
}

// Transact runs fn with exclusive access. Any error rolls every change back.
func (l *LocalStorage) Transact(ctx context.Context, fn func(r sales.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := l.data.clone()
	if err := fn(view{s: l, inTx: true}.repositories()); err != nil {
		l.data = snapshot
		return err
	}
	return nil
}

// Seed loads clients and vehicles, replacing records with the same ID.
func (l *LocalStorage) Seed(clients []catalog.Client, vehicles []catalog.Vehicle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range clients {
		l.data.clients[c.ID] = c
	}
	for _, v := range vehicles {
		l.data.vehicles[v.ID] = v
	}
}

// view reads and writes the live dataset, locking unless it runs inside Transact.
type view struct {
	s    *LocalStorage
	inTx bool
}

func (v view) repositories() sales.Repositories {
	return sales.Repositories{
		Clients:  localClients{v},
		Vehicles: localVehicles{v},
		Sales:    localSales{v},
	}
}

func (v view) read(fn func(d *dataset)) {
	if !v.inTx {
		v.s.mu.RLock()
		defer v.s.mu.RUnlock()
	}
	fn(v.s.data)
}

func (v view) write(fn func(d *dataset) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.data)
}

type localClients struct{ v view }

func (r localClients) List(_ context.Context, f catalog.ClientFilter) ([]catalog.Client, error) {
	out := make([]catalog.Client, 0)
	r.v.read(func(d *dataset) {
		for _, c := range d.clients {
			if f.Match(c) {
				out = append(out, c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

func (r localClients) Get(_ context.Context, id string) (catalog.Client, error) {
	var (
		c  catalog.Client
		ok bool
	)
	r.v.read(func(d *dataset) { c, ok = d.clients[id] })
	if !ok {
		return catalog.Client{}, fmt.Errorf("client %s: %w", id, catalog.ErrNotFound)
	}
	return c, nil
}

func (r localClients) Create(_ context.Context, c *catalog.Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.v.write(func(d *dataset) error {
		d.clients[c.ID] = *c
		return nil
	})
}

func (r localClients) Update(_ context.Context, c catalog.Client) error {
	if c.ID == "" {
		return catalog.ErrEmptyID
	}
	return r.v.write(func(d *dataset) error {
		if _, ok := d.clients[c.ID]; !ok {
			return fmt.Errorf("client %s: %w", c.ID, catalog.ErrNotFound)
		}
		d.clients[c.ID] = c
		return nil
	})
}

type localVehicles struct{ v view }

func (r localVehicles) List(_ context.Context, f catalog.VehicleFilter) ([]catalog.Vehicle, error) {
	out := make([]catalog.Vehicle, 0)
	r.v.read(func(d *dataset) {
		for _, v := range d.vehicles {
			if f.Match(v) {
				out = append(out, v)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

func (r localVehicles) Get(_ context.Context, id string) (catalog.Vehicle, error) {
	var (
		v  catalog.Vehicle
		ok bool
	)
	r.v.read(func(d *dataset) { v, ok = d.vehicles[id] })
	if !ok {
		return catalog.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, catalog.ErrNotFound)
	}
	return v, nil
}

// GetForUpdate is Get: a transaction already holds the store's write lock.
func (r localVehicles) GetForUpdate(ctx context.Context, id string) (catalog.Vehicle, error) {
	return r.Get(ctx, id)
}

func (r localVehicles) Create(_ context.Context, v *catalog.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return r.v.write(func(d *dataset) error {
		d.vehicles[v.ID] = *v
		return nil
	})
}

func (r localVehicles) Update(_ context.Context, v catalog.Vehicle) error {
	if v.ID == "" {
		return catalog.ErrEmptyID
	}
	return r.v.write(func(d *dataset) error {
		if _, ok := d.vehicles[v.ID]; !ok {
			return fmt.Errorf("vehicle %s: %w", v.ID, catalog.ErrNotFound)
		}
		d.vehicles[v.ID] = v
		return nil
	})
}

type localSales struct{ v view }

func (r localSales) List(_ context.Context, f sales.SaleFilter) ([]sales.Sale, error) {
	out := make([]sales.Sale, 0)
	r.v.read(func(d *dataset) {
		for _, s := range d.sales {
			if f.Match(s) {
				out = append(out, s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SaleNumber < out[j].SaleNumber })
	return out, nil
}

// Get retrieves a sale by ID.
// Returns ErrNotFound if the sale is not found.
func (r localSales) Get(_ context.Context, id string) (sales.Sale, error) {
	var (
		s  sales.Sale
		ok bool
	)
	r.v.read(func(d *dataset) { s, ok = d.sales[id] })
	if !ok {
		return sales.Sale{}, sales.ErrNotFound
	}
	return s, nil
}

// Create stores a new sale. Returns ErrEmptyID if the sale has an empty ID.
func (r localSales) Create(_ context.Context, s *sales.Sale) error {
	if s.ID == "" {
		return sales.ErrEmptyID
	}
	return r.v.write(func(d *dataset) error {
		if _, ok := d.sales[s.ID]; ok {
			return fmt.Errorf("sale %s: %w", s.ID, sales.ErrDuplicate)
		}
		for _, other := range d.sales {
			if other.SaleNumber == s.SaleNumber {
				return fmt.Errorf("sale number %s: %w", s.SaleNumber, sales.ErrDuplicate)
			}
		}
		d.sales[s.ID] = *s
		return nil
	})
}

func (r localSales) Update(_ context.Context, s sales.Sale) error {
	if s.ID == "" {
		return sales.ErrEmptyID
	}
	return r.v.write(func(d *dataset) error {
		if _, ok := d.sales[s.ID]; !ok {
			return sales.ErrNotFound
		}
		d.sales[s.ID] = s
		return nil
	})
}

func (r localSales) Delete(_ context.Context, id string) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.sales[id]; !ok {
			return sales.ErrNotFound
		}
		delete(d.sales, id)
		return nil
	})
}

// lessID orders numeric IDs numerically ("2" before "10") and everything else lexically.
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
