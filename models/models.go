package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Product is the primary product master (dados_produtos in the legacy store).
type Product struct {
	bun.BaseModel `bun:"table:products,alias:pd"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Code            int64     `bun:"code,unique,notnull"`
	Name            string    `bun:"name,notnull"`
	CommodityCode   string    `bun:"commodity_code"`
	HLPerPallet     float64   `bun:"hl_per_pallet"`
	BultosPerPallet int64     `bun:"bultos_per_pallet"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Packaging is the secondary per-pallet master consulted when a code is
// absent from products (maestro_envases in the legacy store).
type Packaging struct {
	bun.BaseModel `bun:"table:packaging,alias:pk"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Code            int64     `bun:"code,unique,notnull"`
	Description     string    `bun:"description,notnull"`
	HLPerPallet     float64   `bun:"hl_per_pallet"`
	BultosPerPallet int64     `bun:"bultos_per_pallet"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// RoutePriority maps a directional route key ("BO_10-BO_20") to a priority.
type RoutePriority struct {
	bun.BaseModel `bun:"table:route_priorities,alias:rp"`

	ID       int64  `bun:"id,pk,autoincrement"`
	RouteKey string `bun:"route_key,unique,notnull"`
	Priority int64  `bun:"priority,notnull"`
}

// ShipmentSequence holds the last issued external reference number.
// A single logical row; readers take the highest id.
type ShipmentSequence struct {
	bun.BaseModel `bun:"table:shipment_sequence,alias:ss"`

	ID                  int64     `bun:"id,pk,autoincrement"`
	LastReferenceNumber int64     `bun:"last_reference_number,notnull"`
	UpdatedAt           time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Driver maps a license plate to its carrier group.
type Driver struct {
	bun.BaseModel `bun:"table:drivers,alias:d"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Plate string `bun:"plate,unique,notnull"`
	Group string `bun:"group_name,notnull"`
}

// GenerationRun records the outcome of one manifest processing run.
type GenerationRun struct {
	bun.BaseModel `bun:"table:generation_runs,alias:gr"`

	ID            int64     `bun:"id,pk,autoincrement"`
	InputFile     string    `bun:"input_file,notnull"`
	FileType      string    `bun:"file_type,notnull"`
	PlanID        string    `bun:"plan_id,notnull"`
	HeaderRecords int64     `bun:"header_records,notnull"`
	DetailRecords int64     `bun:"detail_records,notnull"`
	QueryCount    int64     `bun:"query_count,notnull"`
	ErrorCount    int64     `bun:"error_count,notnull"`
	Status        string    `bun:"status,notnull"`
	Detail        string    `bun:"detail"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
