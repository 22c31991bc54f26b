// Package wizard implements the three-step sale wizard: pick client and
// vehicle, choose how the sale is paid, assign a salesperson and commit.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"api_dealership/internal/catalog"
	"api_dealership/internal/notify"
	"api_dealership/internal/sales"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Step is a wizard page.
type Step int

const (
	StepSelectParties Step = iota + 1
	StepPayment
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepSelectParties:
		return "select_parties"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	// ErrClosed is returned when operating on a wizard that is not open.
	ErrClosed = errors.New("wizard is not open")
	// ErrWrongStep is returned when an action is not available on the current step.
	ErrWrongStep = errors.New("action not available on this step")
	// ErrNotMixed is returned when setting a down payment on a non-mixed sale.
	ErrNotMixed = errors.New("down payment only applies to mixed payments")
)

// Form is the state accumulated across the wizard steps.
type Form struct {
	ClientID        string              `json:"clientId"`
	VehicleID       string              `json:"vehicleId"`
	TotalPrice      decimal.Decimal     `json:"totalPrice"`
	PaymentMethod   sales.PaymentMethod `json:"paymentMethod"`
	DownPayment     decimal.Decimal     `json:"downPayment"`
	FinancingAmount decimal.Decimal     `json:"financingAmount"`
	Installments    int                 `json:"installments"`
	Salesperson     string              `json:"salesperson"`
}

func emptyForm() Form {
	return Form{PaymentMethod: sales.MethodCash}
}

func formFromSale(s sales.Sale) Form {
	t := sales.TermsOf(s.Payment)
	return Form{
		ClientID:        s.ClientID,
		VehicleID:       s.VehicleID,
		TotalPrice:      s.TotalPrice,
		PaymentMethod:   s.Method(),
		DownPayment:     t.DownPayment,
		FinancingAmount: t.FinancingAmount,
		Installments:    t.Installments,
		Salesperson:     s.Salesperson,
	}
}

// Committer persists the result of the wizard.
type Committer interface {
	CreateSale(ctx context.Context, d sales.Draft) (*sales.Sale, error)
	UpdateSale(ctx context.Context, id string, d sales.Draft) (*sales.Sale, error)
}

// Deps are the collaborators of a wizard.
type Deps struct {
	Clients   catalog.ClientRepository
	Vehicles  catalog.VehicleRepository
	Committer Committer
	Sink      notify.Sink
}

// State is a read-only snapshot of a wizard.
type State struct {
	Open   bool              `json:"open"`
	Step   Step              `json:"step"`
	Name   string            `json:"stepName"`
	SaleID string            `json:"saleId,omitempty"`
	Form   Form              `json:"form"`
	Errors map[string]string `json:"errors"`
}

// Wizard is a linear three-step sale form. Methods are safe for concurrent
// use; calls are serialized.
type Wizard struct {
	mu        sync.Mutex
	deps      Deps
	validate  *validatorv10.Validate
	open      bool
	step      Step
	form      Form
	errors    map[string]string
	editingID string
	original  sales.Sale
}

// New creates a closed wizard.
func New(deps Deps) *Wizard {
	if deps.Sink == nil {
		deps.Sink = notify.SinkFunc(func(notify.Notification) {})
	}
	w := &Wizard{deps: deps, validate: newValidator()}
	w.reset()
	return w
}

func (w *Wizard) reset() {
	w.open = false
	w.step = StepSelectParties
	w.form = emptyForm()
	w.errors = map[string]string{}
	w.editingID = ""
	w.original = sales.Sale{}
}

// Open starts a new sale on Step1 with an empty form.
func (w *Wizard) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.open = true
}

// OpenEdit starts editing s on Step1. The form keeps the sale's total price.
func (w *Wizard) OpenEdit(s sales.Sale) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.open = true
	w.editingID = s.ID
	w.original = s
	w.form = formFromSale(s)
}

// Cancel discards the form and closes the wizard. It never touches storage.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

// IsOpen reports whether the wizard is open.
func (w *Wizard) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// State returns a snapshot of the wizard.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	return State{
		Open:   w.open,
		Step:   w.step,
		Name:   w.step.String(),
		SaleID: w.editingID,
		Form:   w.form,
		Errors: errs,
	}
}

func (w *Wizard) guard(step Step) error {
	if !w.open {
		return ErrClosed
	}
	if w.step != step {
		return fmt.Errorf("%w: on %s, need %s", ErrWrongStep, w.step, step)
	}
	return nil
}

// SelectClient sets the client on Step1.
func (w *Wizard) SelectClient(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StepSelectParties); err != nil {
		return err
	}
	w.setClient(id)
	return nil
}

// SelectVehicle sets the vehicle on Step1.
func (w *Wizard) SelectVehicle(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StepSelectParties); err != nil {
		return err
	}
	w.setVehicle(id)
	return nil
}

// SetPaymentMethod sets the payment method on Step2. Leaving mixed clears
// the split amounts; entering it finances the whole price until a down
// payment is given.
func (w *Wizard) SetPaymentMethod(m sales.PaymentMethod) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StepPayment); err != nil {
		return err
	}
	w.setPaymentMethod(m)
	return nil
}

// UpdateDownPayment sets the down payment of a mixed sale and recomputes the
// financed amount in the same update.
func (w *Wizard) UpdateDownPayment(value decimal.Decimal) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StepPayment); err != nil {
		return err
	}
	if w.form.PaymentMethod != sales.MethodMixed {
		return ErrNotMixed
	}
	w.setDownPayment(value)
	return nil
}

// SetInstallments sets the number of installments on Step2.
func (w *Wizard) SetInstallments(n int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StepPayment); err != nil {
		return err
	}
	w.setInstallments(n)
	return nil
}

// SetSalesperson assigns the salesperson on Step3.
func (w *Wizard) SetSalesperson(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StepReview); err != nil {
		return err
	}
	w.setSalesperson(name)
	return nil
}

// Changes is a partial form update. Nil fields are left alone.
type Changes struct {
	ClientID      *string              `json:"clientId"`
	VehicleID     *string              `json:"vehicleId"`
	PaymentMethod *sales.PaymentMethod `json:"paymentMethod"`
	DownPayment   *decimal.Decimal     `json:"downPayment"`
	Installments  *int                 `json:"installments"`
	Salesperson   *string              `json:"salesperson"`
}

// Apply sets every field of c or none of them. All fields must belong to
// the current step, and a down payment needs a mixed method once c is applied.
func (w *Wizard) Apply(c Changes) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return ErrClosed
	}

	checks := []struct {
		set  bool
		step Step
	}{
		{c.ClientID != nil, StepSelectParties},
		{c.VehicleID != nil, StepSelectParties},
		{c.PaymentMethod != nil, StepPayment},
		{c.DownPayment != nil, StepPayment},
		{c.Installments != nil, StepPayment},
		{c.Salesperson != nil, StepReview},
	}
	for _, ch := range checks {
		if !ch.set {
			continue
		}
		if err := w.guard(ch.step); err != nil {
			return err
		}
	}
	if c.DownPayment != nil {
		method := w.form.PaymentMethod
		if c.PaymentMethod != nil {
			method = *c.PaymentMethod
		}
		if method != sales.MethodMixed {
			return ErrNotMixed
		}
	}

	if c.ClientID != nil {
		w.setClient(*c.ClientID)
	}
	if c.VehicleID != nil {
		w.setVehicle(*c.VehicleID)
	}
	if c.PaymentMethod != nil {
		w.setPaymentMethod(*c.PaymentMethod)
	}
	if c.DownPayment != nil {
		w.setDownPayment(*c.DownPayment)
	}
	if c.Installments != nil {
		w.setInstallments(*c.Installments)
	}
	if c.Salesperson != nil {
		w.setSalesperson(*c.Salesperson)
	}
	return nil
}

func (w *Wizard) setClient(id string) {
	w.form.ClientID = strings.TrimSpace(id)
	delete(w.errors, "clientId")
}

func (w *Wizard) setVehicle(id string) {
	w.form.VehicleID = strings.TrimSpace(id)
	delete(w.errors, "vehicleId")
}

func (w *Wizard) setPaymentMethod(m sales.PaymentMethod) {
	w.form.PaymentMethod = m
	if m == sales.MethodMixed {
		w.form.FinancingAmount = w.form.TotalPrice.Sub(w.form.DownPayment)
	} else {
		w.form.DownPayment = decimal.Zero
		w.form.FinancingAmount = decimal.Zero
	}
	delete(w.errors, "paymentMethod")
	delete(w.errors, "downPayment")
}

func (w *Wizard) setDownPayment(value decimal.Decimal) {
	w.form.DownPayment = value
	w.form.FinancingAmount = w.form.TotalPrice.Sub(value)
	delete(w.errors, "downPayment")
}

func (w *Wizard) setInstallments(n int) {
	w.form.Installments = n
	delete(w.errors, "installments")
}

func (w *Wizard) setSalesperson(name string) {
	w.form.Salesperson = name
	delete(w.errors, "salesperson")
}

// Next validates the current step and advances. Leaving Step1 on a new
// sale captures the vehicle's current price as the total price.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return ErrClosed
	}
	if w.step == StepReview {
		return fmt.Errorf("%w: already on the last step", ErrWrongStep)
	}

	errs, err := w.validateStep(ctx)
	if err != nil {
		w.notify(notify.Error, "Error", err.Error())
		return err
	}
	if len(errs) > 0 {
		return w.fail(errs, notify.Warning)
	}

	if w.step == StepSelectParties && w.editingID == "" {
		v, err := w.deps.Vehicles.Get(ctx, w.form.VehicleID)
		if err != nil {
			w.notify(notify.Error, "Error", err.Error())
			return err
		}
		w.form.TotalPrice = v.Price
		if w.form.PaymentMethod == sales.MethodMixed {
			w.form.FinancingAmount = v.Price.Sub(w.form.DownPayment)
		}
	}

	w.step++
	return nil
}

// Prev goes back one step without validating.
func (w *Wizard) Prev() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return ErrClosed
	}
	if w.step == StepSelectParties {
		return fmt.Errorf("%w: already on the first step", ErrWrongStep)
	}
	w.step--
	return nil
}

// Commit validates Step3 and stores the sale. On success the wizard resets
// and closes; on failure it stays open on Step3 and nothing is stored.
func (w *Wizard) Commit(ctx context.Context) (*sales.Sale, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.guard(StepReview); err != nil {
		return nil, err
	}

	errs, err := w.validateStep(ctx)
	if err != nil {
		w.notify(notify.Error, "Error", err.Error())
		return nil, err
	}
	if len(errs) > 0 {
		return nil, w.fail(errs, notify.Error)
	}

	payment, err := sales.NewPayment(w.form.PaymentMethod, w.form.TotalPrice, w.form.DownPayment, w.form.Installments)
	if err != nil {
		w.notify(notify.Error, "Error", err.Error())
		return nil, err
	}
	draft := sales.Draft{
		ClientID:    w.form.ClientID,
		VehicleID:   w.form.VehicleID,
		TotalPrice:  w.form.TotalPrice,
		Payment:     payment,
		Salesperson: w.form.Salesperson,
	}

	var (
		sale  *sales.Sale
		title string
	)
	if w.editingID == "" {
		sale, err = w.deps.Committer.CreateSale(ctx, draft)
		title = "Venta registrada"
	} else {
		sale, err = w.deps.Committer.UpdateSale(ctx, w.editingID, draft)
		title = "Venta actualizada"
	}
	if err != nil {
		w.notify(notify.Error, "Error al guardar la venta", err.Error())
		return nil, err
	}

	w.reset()
	w.notify(notify.Success, title, fmt.Sprintf("La venta %s se guardó correctamente", sale.SaleNumber))
	return sale, nil
}

// validateStep returns the field errors of the current step. The error
// return is reserved for storage failures.
func (w *Wizard) validateStep(ctx context.Context) (map[string]string, error) {
	switch w.step {
	case StepSelectParties:
		errs := fieldErrors(w.validate, partiesInput{ClientID: w.form.ClientID, VehicleID: w.form.VehicleID})
		return errs, w.checkSelection(ctx, errs)
	case StepPayment:
		return fieldErrors(w.validate, paymentInput{
			PaymentMethod: w.form.PaymentMethod,
			TotalPrice:    w.form.TotalPrice,
			DownPayment:   w.form.DownPayment,
			Installments:  w.form.Installments,
		}), nil
	case StepReview:
		return fieldErrors(w.validate, reviewInput{Salesperson: strings.TrimSpace(w.form.Salesperson)}), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrWrongStep, w.step)
}

// checkSelection rejects picks that are not in the Step1 option lists.
// The vehicle already bound to the edited sale stays selectable.
func (w *Wizard) checkSelection(ctx context.Context, errs map[string]string) error {
	if _, bad := errs["clientId"]; !bad {
		c, err := w.deps.Clients.Get(ctx, w.form.ClientID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			errs["clientId"] = "selected client does not exist"
		case err != nil:
			return err
		case !c.IsActive() && !(w.editingID != "" && c.ID == w.original.ClientID):
			errs["clientId"] = "selected client is not active"
		}
	}
	if _, bad := errs["vehicleId"]; !bad {
		v, err := w.deps.Vehicles.Get(ctx, w.form.VehicleID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			errs["vehicleId"] = "selected vehicle does not exist"
		case err != nil:
			return err
		case !v.IsAvailable() && !(w.editingID != "" && v.ID == w.original.VehicleID):
			errs["vehicleId"] = "selected vehicle is not available"
		}
	}
	return nil
}

func (w *Wizard) fail(errs map[string]string, kind notify.Kind) error {
	w.errors = errs
	w.notify(kind, "Datos incompletos", "Por favor complete todos los campos requeridos")

	fields := make(map[string]string, len(errs))
	for k, v := range errs {
		fields[k] = v
	}
	return &ValidationError{Step: w.step, Fields: fields}
}

func (w *Wizard) notify(kind notify.Kind, title, message string) {
	w.deps.Sink.Notify(notify.Notification{Kind: kind, Title: title, Message: message})
}

// ClientOptions lists the clients selectable on Step1.
func (w *Wizard) ClientOptions(ctx context.Context, query string) ([]catalog.Client, error) {
	return catalog.ActiveClients(ctx, w.deps.Clients, query)
}

// VehicleOptions lists the vehicles selectable on Step1.
func (w *Wizard) VehicleOptions(ctx context.Context, query string) ([]catalog.Vehicle, error) {
	return catalog.AvailableVehicles(ctx, w.deps.Vehicles, query)
}
