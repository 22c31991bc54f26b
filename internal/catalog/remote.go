package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// RemoteDirectory reads clients and vehicles from the mock REST API
// the front end was built against (GET /clients, GET /vehicles).
type RemoteDirectory struct {
	client *resty.Client
	logger *zap.Logger
}

// NewRemoteDirectory creates a directory reader for the API at baseURL.
func NewRemoteDirectory(baseURL string, logger *zap.Logger) *RemoteDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")

	return &RemoteDirectory{client: c, logger: logger}
}

// Close releases the underlying HTTP client.
func (d *RemoteDirectory) Close() error {
	return d.client.Close()
}

// Clients fetches every client from the remote API.
func (d *RemoteDirectory) Clients(ctx context.Context) ([]Client, error) {
	var out []Client
	if err := d.get(ctx, "/clients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Vehicles fetches every vehicle from the remote API.
func (d *RemoteDirectory) Vehicles(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	if err := d.get(ctx, "/vehicles", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *RemoteDirectory) get(ctx context.Context, path string, out any) error {
	res, err := d.client.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("error making request to catalog API: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("catalog API returned unexpected status: %d", res.StatusCode())
	}
	d.logger.Debug("catalog fetched", zap.String("path", path), zap.Int("status", res.StatusCode()))
	return nil
}

// Import copies the remote directory into the given repositories.
// Clients are upserted. Known vehicles keep their local status and client
// binding so that sales recorded here are not undone by the import.
func (d *RemoteDirectory) Import(ctx context.Context, clients ClientRepository, vehicles VehicleRepository) (int, int, error) {
	cs, err := d.Clients(ctx)
	if err != nil {
		return 0, 0, err
	}
	vs, err := d.Vehicles(ctx)
	if err != nil {
		return 0, 0, err
	}

	for i := range cs {
		_, err := clients.Get(ctx, cs[i].ID)
		switch {
		case err == nil:
			err = clients.Update(ctx, cs[i])
		case errors.Is(err, ErrNotFound):
			err = clients.Create(ctx, &cs[i])
		}
		if err != nil {
			return 0, 0, fmt.Errorf("failed to import client %s: %w", cs[i].ID, err)
		}
	}
	for i := range vs {
		v := vs[i]
		if v.IsAvailable() {
			v.ClientID = ""
		}
		local, err := vehicles.Get(ctx, v.ID)
		switch {
		case err == nil:
			v.Status, v.ClientID = local.Status, local.ClientID
			err = vehicles.Update(ctx, v)
		case errors.Is(err, ErrNotFound):
			err = vehicles.Create(ctx, &v)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("failed to import vehicle %s: %w", v.ID, err)
		}
	}

	d.logger.Info("catalog imported", zap.Int("clients", len(cs)), zap.Int("vehicles", len(vs)))
	return len(cs), len(vs), nil
}
