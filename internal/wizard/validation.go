package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"api_dealership/internal/sales"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrIncomplete is the cause of every ValidationError.
var ErrIncomplete = errors.New("incomplete data")

// ValidationError carries the per-field messages of a failed step.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s (step %d): %s", ErrIncomplete, e.Step, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrIncomplete }

// partiesInput is what Step1 must provide.
type partiesInput struct {
	ClientID  string `json:"clientId" validate:"required"`
	VehicleID string `json:"vehicleId" validate:"required"`
}

// paymentInput is what Step2 must provide. The mixed-payment amounts are
// checked by paymentStructValidation.
type paymentInput struct {
	PaymentMethod sales.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash credit financing mixed"`
	TotalPrice    decimal.Decimal     `json:"totalPrice"`
	DownPayment   decimal.Decimal     `json:"downPayment"`
	Installments  int                 `json:"installments" validate:"min=0,max=120"`
}

// reviewInput is what Step3 must provide.
type reviewInput struct {
	Salesperson string `json:"salesperson" validate:"required"`
}

// messages maps "field.tag" to the text shown next to the field.
var messages = map[string]string{
	"clientId.required":      "must select a client",
	"vehicleId.required":     "must select a vehicle",
	"paymentMethod.required": "must select a payment method",
	"paymentMethod.oneof":    "invalid payment method",
	"downPayment.gt_zero":    sales.ErrDownPaymentTooLow.Error(),
	"downPayment.lt_total":   sales.ErrDownPaymentTooHigh.Error(),
	"installments.min":       "installments cannot be negative",
	"installments.max":       "installments cannot exceed 120",
	"salesperson.required":   "must assign a salesperson",
}

// newValidator returns a validator that reports fields by their JSON name.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(paymentStructValidation, paymentInput{})
	return v
}

// paymentStructValidation checks the down payment of a mixed sale. Both
// bounds are checked on their own.
func paymentStructValidation(sl validatorv10.StructLevel) {
	in := sl.Current().Interface().(paymentInput)
	if in.PaymentMethod != sales.MethodMixed {
		return
	}
	if !in.DownPayment.IsPositive() {
		sl.ReportError(in.DownPayment, "downPayment", "DownPayment", "gt_zero", "")
	}
	if !in.DownPayment.LessThan(in.TotalPrice) {
		sl.ReportError(in.DownPayment, "downPayment", "DownPayment", "lt_total", in.TotalPrice.String())
	}
}

// fieldErrors runs v on input and turns failures into a field→message map.
// When a field fails twice the first message is kept.
func fieldErrors(v *validatorv10.Validate, input any) map[string]string {
	out := map[string]string{}
	err := v.Struct(input)
	if err == nil {
		return out
	}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		out["form"] = err.Error()
		return out
	}
	for _, fe := range ve {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out[field] = msg
	}
	return out
}
