package catalog

import "github.com/shopspring/decimal"

// DemoClients is the directory loaded when no remote catalog is configured.
func DemoClients() []Client {
	return []Client{
		{ID: "1", Name: "Carlos Rodríguez", Identification: "1020304050", Email: "carlos.rodriguez@email.com", Phone: "3001234567", Status: ClientActive},
		{ID: "2", Name: "María González", Identification: "52123456", Email: "maria.gonzalez@email.com", Phone: "3109876543", Status: ClientActive},
		{ID: "3", Name: "Andrés Martínez", Identification: "80456789", Email: "andres.martinez@email.com", Phone: "3205551234", Status: ClientInactive},
	}
}

// DemoVehicles is the stock loaded when no remote catalog is configured.
func DemoVehicles() []Vehicle {
	return []Vehicle{
		{ID: "1", Brand: "Toyota", Model: "Corolla", Year: 2024, Price: decimal.NewFromInt(95000000), Status: VehicleAvailable},
		{ID: "2", Brand: "Mazda", Model: "CX-5", Year: 2024, Price: decimal.NewFromInt(45000000), Status: VehicleAvailable},
		{ID: "3", Brand: "Chevrolet", Model: "Onix", Year: 2023, Price: decimal.NewFromInt(68000000), Status: VehicleSold, ClientID: "2"},
		{ID: "4", Brand: "Renault", Model: "Duster", Year: 2023, Price: decimal.NewFromInt(82000000), Status: VehicleReserved, ClientID: "1"},
	}
}
