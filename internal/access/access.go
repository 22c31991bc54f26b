// Package access maps user roles to the dealership modules they may open
// and reads the role from signed tokens.
package access

// Module is a functional area of the dealership app.
type Module string

const (
	Dashboard  Module = "dashboard"
	Clients    Module = "clients"
	Vehicles   Module = "vehicles"
	Sales      Module = "sales"
	Inventory  Module = "inventory"
	Workshop   Module = "workshop"
	CRM        Module = "crm"
	Billing    Module = "billing"
	HR         Module = "hr"
	DIAN       Module = "dian"
	Plates     Module = "plates"
	Purchasing Module = "purchasing"
	Reports    Module = "reports"
)

// Role is a user role.
type Role string

const (
	Admin       Role = "admin"
	Manager     Role = "manager"
	Salesperson Role = "salesperson"
	Mechanic    Role = "mechanic"
	Accountant  Role = "accountant"
)

var allModules = []Module{Dashboard, Clients, Vehicles, Sales, Inventory, Workshop, CRM, Billing, HR, DIAN, Plates, Purchasing, Reports}

// Allowlist says which modules each role may open. Unknown roles get nothing.
type Allowlist map[Role]map[Module]bool

// DefaultAllowlist is the role matrix of the dealership.
func DefaultAllowlist() Allowlist {
	return NewAllowlist(map[Role][]Module{
		Admin:       allModules,
		Manager:     {Dashboard, Clients, Vehicles, Sales, Inventory, Workshop, CRM, Billing, Plates, Purchasing, Reports},
		Salesperson: {Dashboard, Clients, Vehicles, Sales, CRM, Plates},
		Mechanic:    {Dashboard, Vehicles, Inventory, Workshop},
		Accountant:  {Dashboard, Sales, Billing, DIAN, HR, Purchasing, Reports},
	})
}

// NewAllowlist builds an allowlist from role → modules.
func NewAllowlist(m map[Role][]Module) Allowlist {
	a := make(Allowlist, len(m))
	for role, mods := range m {
		set := make(map[Module]bool, len(mods))
		for _, mod := range mods {
			set[mod] = true
		}
		a[role] = set
	}
	return a
}

// Allows reports whether role may open module.
func (a Allowlist) Allows(role Role, module Module) bool {
	return a[role][module]
}

// Modules lists the modules role may open, in menu order.
func (a Allowlist) Modules(role Role) []Module {
	out := make([]Module, 0)
	for _, m := range allModules {
		if a.Allows(role, m) {
			out = append(out, m)
		}
	}
	return out
}
