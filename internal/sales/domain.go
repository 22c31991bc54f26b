package sales

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle status of a sale.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PaymentMethod identifies how a sale is paid.
type PaymentMethod string

const (
	MethodCash      PaymentMethod = "cash"
	MethodCredit    PaymentMethod = "credit"
	MethodFinancing PaymentMethod = "financing"
	MethodMixed     PaymentMethod = "mixed"
)

// ValidStatus reports whether s is a known sale status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodCredit, MethodFinancing, MethodMixed:
		return true
	}
	return false
}

// Sale represents a vehicle sale to a client.
type Sale struct {
	ID                string
	SaleNumber        string
	ClientID          string
	VehicleID         string
	TotalPrice        decimal.Decimal
	Payment           Payment
	Salesperson       string
	SaleDate          time.Time
	Status            Status
	ContractGenerated bool
}

// Method returns the payment method of the sale, cash when unset.
func (s Sale) Method() PaymentMethod {
	if s.Payment == nil {
		return MethodCash
	}
	return s.Payment.Method()
}

// saleJSON is the flat wire shape shared with the front end.
type saleJSON struct {
	ID                string           `json:"id"`
	SaleNumber        string           `json:"saleNumber"`
	ClientID          string           `json:"clientId"`
	VehicleID         string           `json:"vehicleId"`
	TotalPrice        decimal.Decimal  `json:"totalPrice"`
	PaymentMethod     PaymentMethod    `json:"paymentMethod"`
	Salesperson       string           `json:"salesperson"`
	DownPayment       *decimal.Decimal `json:"downPayment,omitempty"`
	FinancingAmount   *decimal.Decimal `json:"financingAmount,omitempty"`
	Installments      *int             `json:"installments,omitempty"`
	SaleDate          time.Time        `json:"saleDate"`
	Status            Status           `json:"status"`
	ContractGenerated bool             `json:"contractGenerated"`
}

// MarshalJSON flattens the payment union into optional fields.
func (s Sale) MarshalJSON() ([]byte, error) {
	out := saleJSON{
		ID:                s.ID,
		SaleNumber:        s.SaleNumber,
		ClientID:          s.ClientID,
		VehicleID:         s.VehicleID,
		TotalPrice:        s.TotalPrice,
		PaymentMethod:     s.Method(),
		Salesperson:       s.Salesperson,
		SaleDate:          s.SaleDate,
		Status:            s.Status,
		ContractGenerated: s.ContractGenerated,
	}
	terms := TermsOf(s.Payment)
	if terms.HasDownPayment {
		out.DownPayment = &terms.DownPayment
	}
	if terms.HasFinancing {
		out.FinancingAmount = &terms.FinancingAmount
		if terms.Installments > 0 {
			out.Installments = &terms.Installments
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the payment union from the flat wire shape.
func (s *Sale) UnmarshalJSON(data []byte) error {
	var in saleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = MethodCash
	}

	var down, financed decimal.Decimal
	installments := 0
	if in.DownPayment != nil {
		down = *in.DownPayment
	}
	if in.FinancingAmount != nil {
		financed = *in.FinancingAmount
	}
	if in.Installments != nil {
		installments = *in.Installments
	}
	p, err := restorePayment(in.PaymentMethod, down, financed, installments)
	if err != nil {
		return err
	}

	*s = Sale{
		ID:                in.ID,
		SaleNumber:        in.SaleNumber,
		ClientID:          in.ClientID,
		VehicleID:         in.VehicleID,
		TotalPrice:        in.TotalPrice,
		Payment:           p,
		Salesperson:       in.Salesperson,
		SaleDate:          in.SaleDate,
		Status:            in.Status,
		ContractGenerated: in.ContractGenerated,
	}
	return nil
}

// restorePayment rebuilds a stored payment without re-checking amounts.
func restorePayment(m PaymentMethod, down, financed decimal.Decimal, installments int) (Payment, error) {
	switch m {
	case MethodCash:
		return Cash{}, nil
	case MethodCredit:
		return Credit{}, nil
	case MethodFinancing:
		return Financing{FinancingAmount: financed, Installments: installments}, nil
	case MethodMixed:
		return Mixed{DownPayment: down, FinancingAmount: financed, Installments: installments}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
}

// SalesMetadata summarizes a sales search.
type SalesMetadata struct {
	Quantity    int             `json:"quantity"`
	Pending     int             `json:"pending"`
	Completed   int             `json:"completed"`
	Cancelled   int             `json:"cancelled"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
