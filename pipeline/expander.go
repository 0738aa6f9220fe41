package pipeline

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"shipmentgen/manifest"
)

// Fixed business constants of the planning process.
const (
	// PalletProductCode is the reserved code for empty-pallet loads.
	PalletProductCode int64 = 1100
	// PalletQuantity overrides the stated pallet count for pallet loads.
	PalletQuantity int64 = 24
	// WeightPerUnit is the per-pallet weight added on top of the stated
	// base weight.
	WeightPerUnit float64 = 45

	shipmentNumberBase  int64 = 2226500000
	shipmentNumberRange int64 = 999999

	dateLayout = "2006-01-02 15:04"
)

// Reference number type tags of the fixed record layout.
const (
	RefTypeSalesOrder = "SALES_ORDER"
	RefTypeProduct    = "CODE_PROD"
	RefTypePalletRet  = "PALLET_RET"
)

// Record is one output row of the shipment order document. Pointer
// fields distinguish "blank cell" from zero.
type Record struct {
	Type           string
	ShipmentNumber string
	Description    string
	Commodity      string
	Priority       *int64
	Origin         string
	Destination    string
	PickupFrom     string
	PickupTo       string
	DeliveryFrom   string
	DeliveryTo     string
	Carrier        string
	Service        string
	RefType        string
	RefNumber      string
	Quantity       *int64
	Weight         *float64
	Hectoliters    *float64
	Bultos         *int64
	Pallets        string
}

// Resolved carries the master-data answers for one manifest row.
type Resolved struct {
	Name        string
	Commodity   string
	Priority    int64
	Hectoliters float64
	Bultos      int64
}

// Group is the fixed expansion of one manifest row: a header record and
// three detail records. RouteCorrelative is kept for traceability only;
// the current document mapping does not emit it.
type Group struct {
	Header           Record
	Details          [3]Record
	RouteCorrelative int64
}

// Records returns the group rows in document order.
func (g *Group) Records() []Record {
	return []Record{g.Header, g.Details[0], g.Details[1], g.Details[2]}
}

// Expander turns one manifest row plus its resolved attributes into a
// record group.
type Expander struct {
	Country string
	now     func() time.Time
}

func NewExpander(country string) *Expander {
	return &Expander{Country: country, now: time.Now}
}

// ShipmentNumber derives the deterministic document identifier for a
// row: a stable hash of (shipment id, product, origin, destination, row
// index) mapped into a fixed numeric range and prefixed with the country
// code. Reprocessing the same file yields the same values.
func (e *Expander) ShipmentNumber(row manifest.Row) string {
	seed := fmt.Sprintf("%s-%d-%d-%d-%d", row.ShipmentID, row.ProductCode, row.Origin, row.Destination, row.Index)
	sum := md5.Sum([]byte(seed))
	head, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return e.Country + strconv.FormatInt(shipmentNumberBase+head%shipmentNumberRange, 10)
}

// Expand emits the header and three detail records for a row and bumps
// the run counters.
//
// Pickup and delivery windows are anchored on processing time, not the
// row's stated shipment date; the legacy planner behaves the same way
// and downstream scheduling relies on it.
func (e *Expander) Expand(row manifest.Row, res Resolved, referenceNumber string, routeCorrelative int64, stats *Stats) *Group {
	quantity := row.Pallets
	if row.ProductCode == PalletProductCode {
		quantity = PalletQuantity
	}
	totalWeight := row.BaseWeight + float64(quantity)*WeightPerUnit

	now := e.now()
	pickupFrom := now.Format(dateLayout)
	pickupTo := now.AddDate(0, 0, 20).Format(dateLayout)
	deliveryFrom := now.Add(time.Minute).Format(dateLayout)
	deliveryTo := now.AddDate(0, 0, 25).Format(dateLayout)

	priority := res.Priority
	hectoliters := res.Hectoliters
	bultos := res.Bultos

	g := &Group{
		Header: Record{
			Type:           "H",
			ShipmentNumber: e.ShipmentNumber(row),
			Description:    res.Name,
			Commodity:      res.Commodity,
			Priority:       &priority,
			Origin:         fmt.Sprintf("%s_%d", e.Country, row.Origin),
			Destination:    fmt.Sprintf("%s_%d", e.Country, row.Destination),
			PickupFrom:     pickupFrom,
			PickupTo:       pickupTo,
			DeliveryFrom:   deliveryFrom,
			DeliveryTo:     deliveryTo,
			RefType:        RefTypeSalesOrder,
			RefNumber:      referenceNumber,
		},
		RouteCorrelative: routeCorrelative,
	}
	g.Details[0] = Record{
		Type:      "D",
		RefType:   RefTypeProduct,
		RefNumber: strconv.FormatInt(row.ProductCode, 10),
	}
	g.Details[1] = Record{
		Type:      "D",
		RefType:   RefTypePalletRet,
		RefNumber: row.PalletReturnable,
	}
	g.Details[2] = Record{
		Type:        "D",
		Quantity:    &quantity,
		Weight:      &totalWeight,
		Hectoliters: &hectoliters,
		Bultos:      &bultos,
	}

	stats.HeaderRecords++
	stats.DetailRecords += 3
	stats.TotalRecords += 4
	return g
}
