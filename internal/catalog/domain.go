package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money amounts are written as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ClientStatus is the lifecycle status of a dealership client.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

// VehicleStatus is the stock status of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "available"
	VehicleSold      VehicleStatus = "sold"
	VehicleReserved  VehicleStatus = "reserved"
)

// Client represents a dealership client.
type Client struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Identification string       `json:"identification"`
	Email          string       `json:"email,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Status         ClientStatus `json:"status"`
}

// Vehicle represents a vehicle in stock.
// ClientID is only meaningful while Status is not available.
type Vehicle struct {
	ID       string          `json:"id"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Year     int             `json:"year"`
	Price    decimal.Decimal `json:"price"`
	Status   VehicleStatus   `json:"status"`
	ClientID string          `json:"clientId,omitempty"`
}

// IsActive reports whether the client can be picked for a new sale.
func (c Client) IsActive() bool {
	return c.Status == ClientActive
}

// IsAvailable reports whether the vehicle can be picked for a new sale.
func (v Vehicle) IsAvailable() bool {
	return v.Status == VehicleAvailable
}

// SellTo marks the vehicle as sold and binds it to clientID.
func (v *Vehicle) SellTo(clientID string) {
	v.Status = VehicleSold
	v.ClientID = clientID
}

// Release puts the vehicle back in stock.
func (v *Vehicle) Release() {
	v.Status = VehicleAvailable
	v.ClientID = ""
}

// Label is the short "Brand Model Year" text shown in option lists.
func (v Vehicle) Label() string {
	return strings.TrimSpace(v.Brand + " " + v.Model + " " + yearString(v.Year))
}

func yearString(y int) string {
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// ValidClientStatus reports whether s is a known client status.
func ValidClientStatus(s ClientStatus) bool {
	return s == ClientActive || s == ClientInactive
}

// ValidVehicleStatus reports whether s is a known vehicle status.
func ValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehicleAvailable, VehicleSold, VehicleReserved:
		return true
	}
	return false
}
