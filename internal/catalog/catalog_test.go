package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"api_dealership/internal/catalog"
	"api_dealership/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClientFilter_Match(t *testing.T) {
	c := catalog.Client{ID: "1", Name: "Carlos Rodríguez", Identification: "1020304050", Email: "carlos@email.com", Status: catalog.ClientActive}

	tests := []struct {
		name   string
		filter catalog.ClientFilter
		want   bool
	}{
		{"empty filter", catalog.ClientFilter{}, true},
		{"status match", catalog.ClientFilter{Status: catalog.ClientActive}, true},
		{"status mismatch", catalog.ClientFilter{Status: catalog.ClientInactive}, false},
		{"name case-insensitive", catalog.ClientFilter{Query: "CARLOS"}, true},
		{"identification", catalog.ClientFilter{Query: "102030"}, true},
		{"email", catalog.ClientFilter{Query: "@email"}, true},
		{"no match", catalog.ClientFilter{Query: "maría"}, false},
		{"blank query", catalog.ClientFilter{Query: "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(c))
		})
	}
}

func TestVehicleFilter_Match(t *testing.T) {
	v := catalog.Vehicle{ID: "2", Brand: "Mazda", Model: "CX-5", Year: 2024, Status: catalog.VehicleAvailable}

	assert.True(t, catalog.VehicleFilter{Query: "mazda"}.Match(v))
	assert.True(t, catalog.VehicleFilter{Query: "cx-5", Status: catalog.VehicleAvailable}.Match(v))
	assert.False(t, catalog.VehicleFilter{Status: catalog.VehicleSold}.Match(v))
	assert.False(t, catalog.VehicleFilter{Query: "2024"}.Match(v))
}

func TestVehicle_SellAndRelease(t *testing.T) {
	v := catalog.Vehicle{ID: "2", Brand: "Mazda", Model: "CX-5", Year: 2024, Status: catalog.VehicleAvailable}
	assert.Equal(t, "Mazda CX-5 2024", v.Label())

	v.SellTo("1")
	assert.False(t, v.IsAvailable())
	assert.Equal(t, catalog.VehicleSold, v.Status)
	assert.Equal(t, "1", v.ClientID)

	v.Release()
	assert.True(t, v.IsAvailable())
	assert.Empty(t, v.ClientID)
}

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"1","name":"Carlos Rodríguez","identification":"1020304050","email":"carlos@email.com","status":"active"},
			{"id":"5","name":"Laura Pérez","identification":"43111222","status":"active"}
		]`))
	})
	mux.HandleFunc("/vehicles", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"2","brand":"Mazda","model":"CX-5","year":2024,"price":47000000,"status":"available","clientId":"9"},
			{"id":"7","brand":"Kia","model":"Sportage","year":2025,"price":"120000000","status":"available","clientId":"3"}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteDirectory_Import(t *testing.T) {
	ctx := context.Background()
	srv := newCatalogServer(t)

	store := storage.NewLocalStorage()
	store.Seed(
		[]catalog.Client{{ID: "1", Name: "Carlos R.", Identification: "1020304050", Status: catalog.ClientInactive}},
		[]catalog.Vehicle{{ID: "2", Brand: "Mazda", Model: "CX-5", Year: 2024, Price: decimal.NewFromInt(45000000), Status: catalog.VehicleSold, ClientID: "1"}},
	)
	repos := store.Repositories()

	dir := catalog.NewRemoteDirectory(srv.URL, zaptest.NewLogger(t))
	defer dir.Close()

	nc, nv, err := dir.Import(ctx, repos.Clients, repos.Vehicles)
	require.NoError(t, err)
	assert.Equal(t, 2, nc)
	assert.Equal(t, 2, nv)

	c, err := repos.Clients.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Rodríguez", c.Name)
	assert.Equal(t, catalog.ClientActive, c.Status)

	_, err = repos.Clients.Get(ctx, "5")
	require.NoError(t, err)

	// Local sale state wins over the remote copy.
	v, err := repos.Vehicles.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, catalog.VehicleSold, v.Status)
	assert.Equal(t, "1", v.ClientID)
	assert.True(t, v.Price.Equal(decimal.NewFromInt(47000000)))

	// New available vehicles come in unbound.
	v, err = repos.Vehicles.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, catalog.VehicleAvailable, v.Status)
	assert.Empty(t, v.ClientID)
	assert.True(t, v.Price.Equal(decimal.NewFromInt(120000000)))
}

func TestRemoteDirectory_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := catalog.NewRemoteDirectory(srv.URL, nil)
	defer dir.Close()

	_, err := dir.Clients(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
