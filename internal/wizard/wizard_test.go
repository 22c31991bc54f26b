package wizard_test

import (
	"context"
	"errors"
	"testing"

	"api_dealership/internal/catalog"
	"api_dealership/internal/notify"
	"api_dealership/internal/sales"
	"api_dealership/internal/storage"
	"api_dealership/internal/wizard"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	store    *storage.LocalStorage
	service  *sales.Service
	recorder *notify.Recorder
	wizard   *wizard.Wizard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := storage.NewLocalStorage()
	store.Seed(
		[]catalog.Client{
			{ID: "1", Name: "Ana Gómez", Identification: "1020304050", Email: "ana@example.com", Status: catalog.ClientActive},
			{ID: "2", Name: "Luis Rojas", Identification: "79888777", Email: "luis@example.com", Status: catalog.ClientInactive},
		},
		[]catalog.Vehicle{
			{ID: "2", Brand: "Mazda", Model: "CX-5", Year: 2023, Price: decimal.NewFromInt(45000000), Status: catalog.VehicleAvailable},
			{ID: "3", Brand: "Toyota", Model: "Corolla", Year: 2024, Price: decimal.NewFromInt(95000000), Status: catalog.VehicleAvailable},
			{ID: "4", Brand: "Renault", Model: "Duster", Year: 2022, Price: decimal.NewFromInt(70000000), Status: catalog.VehicleReserved, ClientID: "1"},
		},
	)
	svc := sales.NewService(store, zaptest.NewLogger(t))
	rec := &notify.Recorder{}
	repos := store.Repositories()

	return &fixture{
		store:    store,
		service:  svc,
		recorder: rec,
		wizard: wizard.New(wizard.Deps{
			Clients:   repos.Clients,
			Vehicles:  repos.Vehicles,
			Committer: svc,
			Sink:      rec,
		}),
	}
}

// toReview walks a freshly opened wizard to Step3 with client 1 and vehicle 2.
func (f *fixture) toReview(t *testing.T, method sales.PaymentMethod) {
	t.Helper()
	ctx := context.Background()

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectClient("1"))
	require.NoError(t, f.wizard.SelectVehicle("2"))
	require.NoError(t, f.wizard.Next(ctx))
	require.NoError(t, f.wizard.SetPaymentMethod(method))
	require.NoError(t, f.wizard.Next(ctx))
}

func TestWizard_CashSaleEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectClient("1"))
	require.NoError(t, f.wizard.SelectVehicle("2"))
	require.NoError(t, f.wizard.Next(ctx))

	state := f.wizard.State()
	assert.Equal(t, wizard.StepPayment, state.Step)
	assert.True(t, state.Form.TotalPrice.Equal(decimal.NewFromInt(45000000)))
	assert.Equal(t, sales.MethodCash, state.Form.PaymentMethod)

	require.NoError(t, f.wizard.Next(ctx))
	require.NoError(t, f.wizard.SetSalesperson("Juan Pérez"))

	sale, err := f.wizard.Commit(ctx)
	require.NoError(t, err)

	assert.Equal(t, "1", sale.ClientID)
	assert.Equal(t, "2", sale.VehicleID)
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(45000000)))
	assert.Equal(t, sales.MethodCash, sale.Method())
	assert.Equal(t, "Juan Pérez", sale.Salesperson)
	assert.Equal(t, sales.StatusPending, sale.Status)
	assert.NotEmpty(t, sale.SaleNumber)

	v, err := f.store.Repositories().Vehicles.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, catalog.VehicleSold, v.Status)
	assert.Equal(t, "1", v.ClientID)

	assert.False(t, f.wizard.IsOpen())
	state = f.wizard.State()
	assert.Equal(t, wizard.StepSelectParties, state.Step)
	assert.Empty(t, state.Form.ClientID)

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Success, last.Kind)
	assert.Contains(t, last.Message, sale.SaleNumber)
}

func TestWizard_NextRequiresSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectClient("1"))

	err := f.wizard.Next(ctx)
	var ve *wizard.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, wizard.ErrIncomplete)
	assert.Equal(t, wizard.StepSelectParties, ve.Step)
	assert.Equal(t, "must select a vehicle", ve.Fields["vehicleId"])
	assert.NotContains(t, ve.Fields, "clientId")

	state := f.wizard.State()
	assert.Equal(t, wizard.StepSelectParties, state.Step)
	assert.Equal(t, "must select a vehicle", state.Errors["vehicleId"])

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Warning, last.Kind)
	assert.Equal(t, "Datos incompletos", last.Title)
}

func TestWizard_SettingFieldClearsItsError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Open()
	require.Error(t, f.wizard.Next(ctx))
	require.Len(t, f.wizard.State().Errors, 2)

	require.NoError(t, f.wizard.SelectVehicle("2"))

	errs := f.wizard.State().Errors
	assert.NotContains(t, errs, "vehicleId")
	assert.Equal(t, "must select a client", errs["clientId"])
}

func TestWizard_RejectsUnlistedSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectClient("2"))
	require.NoError(t, f.wizard.SelectVehicle("4"))

	err := f.wizard.Next(ctx)
	var ve *wizard.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "selected client is not active", ve.Fields["clientId"])
	assert.Equal(t, "selected vehicle is not available", ve.Fields["vehicleId"])

	require.NoError(t, f.wizard.SelectClient("99"))
	err = f.wizard.Next(ctx)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "selected client does not exist", ve.Fields["clientId"])
}

func TestWizard_StepGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.wizard.SelectClient("1"), wizard.ErrClosed)
	assert.ErrorIs(t, f.wizard.Next(ctx), wizard.ErrClosed)

	f.wizard.Open()
	assert.ErrorIs(t, f.wizard.SetPaymentMethod(sales.MethodMixed), wizard.ErrWrongStep)
	assert.ErrorIs(t, f.wizard.SetSalesperson("Juan Pérez"), wizard.ErrWrongStep)
	assert.ErrorIs(t, f.wizard.Prev(), wizard.ErrWrongStep)

	_, err := f.wizard.Commit(ctx)
	assert.ErrorIs(t, err, wizard.ErrWrongStep)

	f.toReview(t, sales.MethodCash)
	assert.ErrorIs(t, f.wizard.Next(ctx), wizard.ErrWrongStep)
	assert.ErrorIs(t, f.wizard.SelectVehicle("3"), wizard.ErrWrongStep)

	require.NoError(t, f.wizard.Prev())
	assert.Equal(t, wizard.StepPayment, f.wizard.State().Step)
	require.NoError(t, f.wizard.Prev())
	assert.Equal(t, wizard.StepSelectParties, f.wizard.State().Step)
}

func TestWizard_PriceCapturedOnceOnLeavingStep1(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectClient("1"))
	require.NoError(t, f.wizard.SelectVehicle("2"))
	require.NoError(t, f.wizard.Next(ctx))

	vehicles := f.store.Repositories().Vehicles
	v, err := vehicles.Get(ctx, "2")
	require.NoError(t, err)
	v.Price = decimal.NewFromInt(50000000)
	require.NoError(t, vehicles.Update(ctx, v))

	require.NoError(t, f.wizard.Next(ctx))
	require.NoError(t, f.wizard.SetSalesperson("Juan Pérez"))
	sale, err := f.wizard.Commit(ctx)
	require.NoError(t, err)
	assert.True(t, sale.TotalPrice.Equal(decimal.NewFromInt(45000000)))
}

func TestWizard_MixedPaymentStaysConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectClient("1"))
	require.NoError(t, f.wizard.SelectVehicle("2"))
	require.NoError(t, f.wizard.Next(ctx))

	assert.ErrorIs(t, f.wizard.UpdateDownPayment(decimal.NewFromInt(1)), wizard.ErrNotMixed)

	require.NoError(t, f.wizard.SetPaymentMethod(sales.MethodMixed))
	for _, down := range []int64{10000000, 15000000, 44999999} {
		require.NoError(t, f.wizard.UpdateDownPayment(decimal.NewFromInt(down)))
		form := f.wizard.State().Form
		assert.True(t, form.DownPayment.Add(form.FinancingAmount).Equal(form.TotalPrice), "down %d", down)
	}

	require.NoError(t, f.wizard.UpdateDownPayment(decimal.NewFromInt(15000000)))
	require.NoError(t, f.wizard.SetInstallments(36))
	require.NoError(t, f.wizard.Next(ctx))
	require.NoError(t, f.wizard.SetSalesperson("Juan Pérez"))

	sale, err := f.wizard.Commit(ctx)
	require.NoError(t, err)
	m, ok := sale.Payment.(sales.Mixed)
	require.True(t, ok)
	assert.True(t, m.DownPayment.Equal(decimal.NewFromInt(15000000)))
	assert.True(t, m.FinancingAmount.Equal(decimal.NewFromInt(30000000)))
	assert.Equal(t, 36, m.Installments)
}

func TestWizard_MixedDownPaymentBounds(t *testing.T) {
	cases := []struct {
		name    string
		down    int64
		message string
	}{
		{"zero", 0, sales.ErrDownPaymentTooLow.Error()},
		{"equal to total", 45000000, sales.ErrDownPaymentTooHigh.Error()},
		{"above total", 46000000, sales.ErrDownPaymentTooHigh.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			f.wizard.Open()
			require.NoError(t, f.wizard.SelectClient("1"))
			require.NoError(t, f.wizard.SelectVehicle("2"))
			require.NoError(t, f.wizard.Next(ctx))
			require.NoError(t, f.wizard.SetPaymentMethod(sales.MethodMixed))
			require.NoError(t, f.wizard.UpdateDownPayment(decimal.NewFromInt(tc.down)))

			err := f.wizard.Next(ctx)
			var ve *wizard.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.message, ve.Fields["downPayment"])
			assert.Equal(t, wizard.StepPayment, f.wizard.State().Step)
		})
	}
}

func TestWizard_LeavingMixedClearsSplit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectClient("1"))
	require.NoError(t, f.wizard.SelectVehicle("2"))
	require.NoError(t, f.wizard.Next(ctx))
	require.NoError(t, f.wizard.SetPaymentMethod(sales.MethodMixed))
	require.NoError(t, f.wizard.UpdateDownPayment(decimal.NewFromInt(5000000)))

	require.NoError(t, f.wizard.SetPaymentMethod(sales.MethodCredit))
	form := f.wizard.State().Form
	assert.True(t, form.DownPayment.IsZero())
	assert.True(t, form.FinancingAmount.IsZero())
}

func TestWizard_CommitRequiresSalesperson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toReview(t, sales.MethodCash)

	require.NoError(t, f.wizard.SetSalesperson("   "))
	_, err := f.wizard.Commit(ctx)

	var ve *wizard.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must assign a salesperson", ve.Fields["salesperson"])
	assert.True(t, f.wizard.IsOpen())
	assert.Equal(t, wizard.StepReview, f.wizard.State().Step)

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, last.Kind)

	list, err := f.store.Repositories().Sales.List(ctx, sales.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWizard_CommitFailsOnStaleVehicle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.toReview(t, sales.MethodCash)
	require.NoError(t, f.wizard.SetSalesperson("Juan Pérez"))

	// Another sale takes the vehicle while this wizard is on Step3.
	_, err := f.service.CreateSale(ctx, sales.Draft{
		ClientID:    "1",
		VehicleID:   "2",
		TotalPrice:  decimal.NewFromInt(45000000),
		Payment:     sales.Cash{},
		Salesperson: "María López",
	})
	require.NoError(t, err)

	_, err = f.wizard.Commit(ctx)
	assert.ErrorIs(t, err, sales.ErrStaleSelection)
	assert.True(t, f.wizard.IsOpen())

	list, err := f.store.Repositories().Sales.List(ctx, sales.SaleFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, last.Kind)
}

type failingCommitter struct{}

func (failingCommitter) CreateSale(context.Context, sales.Draft) (*sales.Sale, error) {
	return nil, errors.New("disk full")
}

func (failingCommitter) UpdateSale(context.Context, string, sales.Draft) (*sales.Sale, error) {
	return nil, errors.New("disk full")
}

func TestWizard_CommitFailureKeepsForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repos := f.store.Repositories()
	w := wizard.New(wizard.Deps{Clients: repos.Clients, Vehicles: repos.Vehicles, Committer: failingCommitter{}, Sink: f.recorder})

	w.Open()
	require.NoError(t, w.SelectClient("1"))
	require.NoError(t, w.SelectVehicle("2"))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.SetSalesperson("Juan Pérez"))

	_, err := w.Commit(ctx)
	require.EqualError(t, err, "disk full")

	state := w.State()
	assert.True(t, state.Open)
	assert.Equal(t, "Juan Pérez", state.Form.Salesperson)
	assert.Equal(t, "2", state.Form.VehicleID)

	v, err := repos.Vehicles.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, catalog.VehicleAvailable, v.Status)
}

type snapshot struct {
	clients  []catalog.Client
	vehicles []catalog.Vehicle
	sales    []sales.Sale
}

func (f *fixture) snapshot(t *testing.T) snapshot {
	t.Helper()
	ctx := context.Background()
	repos := f.store.Repositories()

	var (
		snap snapshot
		err  error
	)
	snap.clients, err = repos.Clients.List(ctx, catalog.ClientFilter{})
	require.NoError(t, err)
	snap.vehicles, err = repos.Vehicles.List(ctx, catalog.VehicleFilter{})
	require.NoError(t, err)
	snap.sales, err = repos.Sales.List(ctx, sales.SaleFilter{})
	require.NoError(t, err)
	return snap
}

func TestWizard_CancelIsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		step wizard.Step
		open func(t *testing.T, f *fixture)
	}{
		{"new sale on step 1", wizard.StepSelectParties, func(t *testing.T, f *fixture) {
			f.wizard.Open()
			require.NoError(t, f.wizard.SelectClient("1"))
			require.NoError(t, f.wizard.SelectVehicle("2"))
		}},
		{"new sale on step 2", wizard.StepPayment, func(t *testing.T, f *fixture) {
			f.wizard.Open()
			require.NoError(t, f.wizard.SelectClient("1"))
			require.NoError(t, f.wizard.SelectVehicle("2"))
			require.NoError(t, f.wizard.Next(context.Background()))
			require.NoError(t, f.wizard.SetPaymentMethod(sales.MethodMixed))
			require.NoError(t, f.wizard.UpdateDownPayment(decimal.NewFromInt(5000000)))
		}},
		{"new sale on step 3", wizard.StepReview, func(t *testing.T, f *fixture) {
			f.toReview(t, sales.MethodCash)
			require.NoError(t, f.wizard.SetSalesperson("Juan Pérez"))
		}},
		{"editing a sale", wizard.StepReview, func(t *testing.T, f *fixture) {
			sale, err := f.service.CreateSale(context.Background(), sales.Draft{
				ClientID: "1", VehicleID: "3", TotalPrice: decimal.NewFromInt(95000000),
				Payment: sales.Cash{}, Salesperson: "Juan Pérez",
			})
			require.NoError(t, err)
			f.wizard.OpenEdit(*sale)
			require.NoError(t, f.wizard.SelectVehicle("2"))
			require.NoError(t, f.wizard.Next(context.Background()))
			require.NoError(t, f.wizard.Next(context.Background()))
			require.NoError(t, f.wizard.SetSalesperson("Otra Persona"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.open(t, f)
			require.Equal(t, tt.step, f.wizard.State().Step)
			before := f.snapshot(t)

			f.wizard.Cancel()
			f.wizard.Cancel()

			state := f.wizard.State()
			assert.False(t, state.Open)
			assert.Equal(t, wizard.StepSelectParties, state.Step)
			assert.Empty(t, state.Form.ClientID)
			assert.Empty(t, state.SaleID)
			assert.Empty(t, state.Errors)

			assert.Equal(t, before, f.snapshot(t))
		})
	}
}

func TestWizard_ApplyIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	clientID, salesperson := "1", "Juan Pérez"
	mixed, cash := sales.MethodMixed, sales.MethodCash
	down := decimal.NewFromInt(5000000)

	assert.ErrorIs(t, f.wizard.Apply(wizard.Changes{ClientID: &clientID}), wizard.ErrClosed)

	f.wizard.Open()
	err := f.wizard.Apply(wizard.Changes{ClientID: &clientID, Salesperson: &salesperson})
	assert.ErrorIs(t, err, wizard.ErrWrongStep)
	assert.Empty(t, f.wizard.State().Form.ClientID)

	vehicleID := "2"
	require.NoError(t, f.wizard.Apply(wizard.Changes{ClientID: &clientID, VehicleID: &vehicleID}))
	require.NoError(t, f.wizard.Next(context.Background()))

	// Cash with a down payment is rejected as a whole.
	require.NoError(t, f.wizard.Apply(wizard.Changes{PaymentMethod: &mixed}))
	err = f.wizard.Apply(wizard.Changes{PaymentMethod: &cash, DownPayment: &down})
	assert.ErrorIs(t, err, wizard.ErrNotMixed)
	assert.Equal(t, sales.MethodMixed, f.wizard.State().Form.PaymentMethod)

	installments := 24
	require.NoError(t, f.wizard.Apply(wizard.Changes{DownPayment: &down, Installments: &installments}))
	form := f.wizard.State().Form
	assert.True(t, form.DownPayment.Equal(down))
	assert.True(t, form.FinancingAmount.Equal(decimal.NewFromInt(40000000)))
	assert.Equal(t, 24, form.Installments)
}

func TestWizard_OptionsFilterCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clients, err := f.wizard.ClientOptions(ctx, "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "1", clients[0].ID)

	vehicles, err := f.wizard.VehicleOptions(ctx, "")
	require.NoError(t, err)
	ids := []string{}
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"2", "3"}, ids)

	vehicles, err = f.wizard.VehicleOptions(ctx, "toyota")
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "3", vehicles[0].ID)
}

func TestWizard_EditKeepsPriceAndBoundVehicle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateSale(ctx, sales.Draft{
		ClientID:    "1",
		VehicleID:   "2",
		TotalPrice:  decimal.NewFromInt(44000000),
		Payment:     sales.Cash{},
		Salesperson: "Juan Pérez",
	})
	require.NoError(t, err)

	f.wizard.OpenEdit(*created)
	state := f.wizard.State()
	assert.Equal(t, created.ID, state.SaleID)
	assert.Equal(t, "2", state.Form.VehicleID)

	// The sold vehicle is the sale's own, so it stays selectable.
	require.NoError(t, f.wizard.Next(ctx))
	assert.True(t, f.wizard.State().Form.TotalPrice.Equal(decimal.NewFromInt(44000000)))

	require.NoError(t, f.wizard.SetPaymentMethod(sales.MethodFinancing))
	require.NoError(t, f.wizard.SetInstallments(48))
	require.NoError(t, f.wizard.Next(ctx))
	require.NoError(t, f.wizard.SetSalesperson("María López"))

	updated, err := f.wizard.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.SaleNumber, updated.SaleNumber)
	assert.Equal(t, sales.MethodFinancing, updated.Method())
	assert.Equal(t, "María López", updated.Salesperson)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(44000000)))

	last, ok := f.recorder.Last()
	require.True(t, ok)
	assert.Equal(t, "Venta actualizada", last.Title)
}

func TestRegistry_OneWizardPerOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repos := f.store.Repositories()
	reg := wizard.NewRegistry(wizard.Deps{Clients: repos.Clients, Vehicles: repos.Vehicles, Committer: f.service})

	s, err := reg.Open("u-1")
	require.NoError(t, err)
	_, err = reg.Open("u-1")
	assert.ErrorIs(t, err, wizard.ErrAlreadyOpen)

	_, err = reg.Open("u-2")
	require.NoError(t, err)

	got, err := reg.Get("u-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.Error(t, s.Next(ctx))
	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.Warning, notes[0].Kind)
	assert.Empty(t, s.Notifications())

	assert.True(t, reg.Cancel("u-1"))
	assert.False(t, reg.Cancel("u-1"))
	_, err = reg.Get("u-1")
	assert.ErrorIs(t, err, wizard.ErrNoWizard)

	_, err = reg.Open("u-1")
	assert.NoError(t, err)
}

func TestRegistry_ForgetsCommittedWizard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repos := f.store.Repositories()
	reg := wizard.NewRegistry(wizard.Deps{Clients: repos.Clients, Vehicles: repos.Vehicles, Committer: f.service})

	s, err := reg.Open("u-1")
	require.NoError(t, err)
	require.NoError(t, s.SelectClient("1"))
	require.NoError(t, s.SelectVehicle("3"))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.SetSalesperson("Juan Pérez"))
	_, err = s.Commit(ctx)
	require.NoError(t, err)

	_, err = reg.Get("u-1")
	assert.ErrorIs(t, err, wizard.ErrNoWizard)
	_, err = reg.Open("u-1")
	assert.NoError(t, err)
}
