package manifest

// Column headers of the Consolidado input sheet.
const (
	ColShipmentID       = "Cód. Envío"
	ColProductCode      = "Cód. Prod"
	ColPallets          = "Pallets"
	ColDate             = "Fecha"
	ColWeight           = "Peso Total Carga"
	ColOrigin           = "Cód. Origen"
	ColDestination      = "Cód. Destino"
	ColProductName      = "Producto"
	ColPriority         = "Prioridad"
	ColHL               = "HL"
	ColBultos           = "Bultos"
	ColCarrier          = "Operador Logístico"
	ColTrip             = "# Viaje"
	ColPalletReturnable = "Pallet_Retornable"
	ColPlantCode        = "Cod Planta"
	ColPlate            = "Placa"
)

// SheetName is the worksheet the planner fills in.
const SheetName = "Consolidado"

// RequiredColumns must all be present before any row is processed.
// Prioridad, HL and Bultos are required but recomputed from the master
// data store, matching the planner template.
var RequiredColumns = []string{
	ColShipmentID, ColProductCode, ColPallets, ColDate, ColWeight,
	ColOrigin, ColDestination, ColProductName, ColPriority, ColHL, ColBultos,
}

// Row is one planned shipment line. Immutable once read.
type Row struct {
	Index            int
	ShipmentID       string
	ProductCode      int64
	Pallets          int64
	Date             string
	BaseWeight       float64
	Origin           int64
	Destination      int64
	ProductName      string
	Carrier          string
	TripNumber       int64
	PalletReturnable string
	PlantCode        string
	Plate            string
}

// Manifest is the loaded input table.
type Manifest struct {
	SourcePath string
	Rows       []Row

	// PlateColumnFound reports whether the optional Placa column was
	// present; plate roster generation needs it together with Cod Planta.
	PlateColumnFound     bool
	PlantCodeColumnFound bool
}
