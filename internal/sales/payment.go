package sales

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidMethod is returned for an unknown payment method.
	ErrInvalidMethod = errors.New("invalid payment method")
	// ErrDownPaymentTooLow is returned when a mixed payment has no down payment.
	ErrDownPaymentTooLow = errors.New("down payment must be greater than zero")
	// ErrDownPaymentTooHigh is returned when a mixed payment leaves nothing to finance.
	ErrDownPaymentTooHigh = errors.New("down payment must be less than total price")
	// ErrFinancingMismatch is returned when financed amount and down payment do not add up.
	ErrFinancingMismatch = errors.New("financing amount must equal total price minus down payment")
)

// Payment is the tagged union of the payment methods a sale accepts.
// Only Financing and Mixed carry amounts.
type Payment interface {
	Method() PaymentMethod
	validate(total decimal.Decimal) error
}

// Cash is paid in full on delivery.
type Cash struct{}

// Credit is paid by card or bank credit handled outside the dealership.
type Credit struct{}

// Financing finances the whole price.
type Financing struct {
	FinancingAmount decimal.Decimal
	Installments    int
}

// Mixed splits the price between a down payment and a financed remainder.
type Mixed struct {
	DownPayment     decimal.Decimal
	FinancingAmount decimal.Decimal
	Installments    int
}

func (Cash) Method() PaymentMethod      { return MethodCash }
func (Credit) Method() PaymentMethod    { return MethodCredit }
func (Financing) Method() PaymentMethod { return MethodFinancing }
func (Mixed) Method() PaymentMethod     { return MethodMixed }

func (Cash) validate(decimal.Decimal) error   { return nil }
func (Credit) validate(decimal.Decimal) error { return nil }

func (f Financing) validate(total decimal.Decimal) error {
	if !f.FinancingAmount.Equal(total) {
		return ErrFinancingMismatch
	}
	return nil
}

func (m Mixed) validate(total decimal.Decimal) error {
	if !m.DownPayment.IsPositive() {
		return ErrDownPaymentTooLow
	}
	if !m.DownPayment.LessThan(total) {
		return ErrDownPaymentTooHigh
	}
	if !m.FinancingAmount.Equal(total.Sub(m.DownPayment)) {
		return ErrFinancingMismatch
	}
	return nil
}

// NewMixed builds a mixed payment for total, financing whatever the down payment leaves.
func NewMixed(total, down decimal.Decimal, installments int) (Mixed, error) {
	m := Mixed{DownPayment: down, FinancingAmount: total.Sub(down), Installments: installments}
	if err := m.validate(total); err != nil {
		return Mixed{}, err
	}
	return m, nil
}

// NewPayment builds the payment for method from raw form values.
// down is only read for mixed payments.
func NewPayment(method PaymentMethod, total, down decimal.Decimal, installments int) (Payment, error) {
	switch method {
	case MethodCash:
		return Cash{}, nil
	case MethodCredit:
		return Credit{}, nil
	case MethodFinancing:
		return Financing{FinancingAmount: total, Installments: installments}, nil
	case MethodMixed:
		return NewMixed(total, down, installments)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
}

// Terms is the flat view of a payment, used by storage rows and the wire format.
type Terms struct {
	HasDownPayment  bool
	DownPayment     decimal.Decimal
	HasFinancing    bool
	FinancingAmount decimal.Decimal
	Installments    int
}

// TermsOf flattens p. A nil payment has no terms.
func TermsOf(p Payment) Terms {
	switch v := p.(type) {
	case Financing:
		return Terms{HasFinancing: true, FinancingAmount: v.FinancingAmount, Installments: v.Installments}
	case Mixed:
		return Terms{
			HasDownPayment:  true,
			DownPayment:     v.DownPayment,
			HasFinancing:    true,
			FinancingAmount: v.FinancingAmount,
			Installments:    v.Installments,
		}
	}
	return Terms{}
}

// RestorePayment rebuilds a stored payment from its flat terms.
func RestorePayment(method PaymentMethod, t Terms) (Payment, error) {
	return restorePayment(method, t.DownPayment, t.FinancingAmount, t.Installments)
}
