package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/uptrace/bun"

	"shipmentgen/infrastructure/sqlite"
	"shipmentgen/models"
)

// seedmaster loads the master data tables from CSV exports. Each file is
// optional; rows upsert on their natural key so reruns are safe.
//
// Expected columns (header row required):
//
//	products.csv:  code,name,commodity_code,hl_per_pallet,bultos_per_pallet
//	packaging.csv: code,description,hl_per_pallet,bultos_per_pallet
//	routes.csv:    route_key,priority
//	drivers.csv:   plate,group_name
func main() {
	dbPath := flag.String("db", "shipmentgen.db", "sqlite database path")
	productsCSV := flag.String("products", "", "products CSV export")
	packagingCSV := flag.String("packaging", "", "packaging CSV export")
	routesCSV := flag.String("routes", "", "route priorities CSV export")
	driversCSV := flag.String("drivers", "", "drivers CSV export")
	flag.Parse()

	db, err := sqlite.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqlite.ApplyEmbeddedMigrations(ctx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	if *productsCSV != "" {
		n, err := seedCSV(ctx, db, *productsCSV, 5, func(ctx context.Context, tx bun.Tx, rec []string) error {
			code, err := strconv.ParseInt(rec[0], 10, 64)
			if err != nil {
				return fmt.Errorf("code %q: %w", rec[0], err)
			}
			hl, bultos, err := parseRates(rec[3], rec[4])
			if err != nil {
				return err
			}
			_, err = tx.NewInsert().
				Model(&models.Product{
					Code:            code,
					Name:            rec[1],
					CommodityCode:   rec[2],
					HLPerPallet:     hl,
					BultosPerPallet: bultos,
				}).
				On("CONFLICT (code) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("commodity_code = EXCLUDED.commodity_code").
				Set("hl_per_pallet = EXCLUDED.hl_per_pallet").
				Set("bultos_per_pallet = EXCLUDED.bultos_per_pallet").
				Set("updated_at = CURRENT_TIMESTAMP").
				Exec(ctx)
			return err
		})
		report("products", n, err)
	}

	if *packagingCSV != "" {
		n, err := seedCSV(ctx, db, *packagingCSV, 4, func(ctx context.Context, tx bun.Tx, rec []string) error {
			code, err := strconv.ParseInt(rec[0], 10, 64)
			if err != nil {
				return fmt.Errorf("code %q: %w", rec[0], err)
			}
			hl, bultos, err := parseRates(rec[2], rec[3])
			if err != nil {
				return err
			}
			_, err = tx.NewInsert().
				Model(&models.Packaging{
					Code:            code,
					Description:     rec[1],
					HLPerPallet:     hl,
					BultosPerPallet: bultos,
				}).
				On("CONFLICT (code) DO UPDATE").
				Set("description = EXCLUDED.description").
				Set("hl_per_pallet = EXCLUDED.hl_per_pallet").
				Set("bultos_per_pallet = EXCLUDED.bultos_per_pallet").
				Exec(ctx)
			return err
		})
		report("packaging", n, err)
	}

	if *routesCSV != "" {
		n, err := seedCSV(ctx, db, *routesCSV, 2, func(ctx context.Context, tx bun.Tx, rec []string) error {
			priority, err := strconv.ParseInt(rec[1], 10, 64)
			if err != nil {
				return fmt.Errorf("priority %q: %w", rec[1], err)
			}
			_, err = tx.NewInsert().
				Model(&models.RoutePriority{RouteKey: rec[0], Priority: priority}).
				On("CONFLICT (route_key) DO UPDATE").
				Set("priority = EXCLUDED.priority").
				Exec(ctx)
			return err
		})
		report("route priorities", n, err)
	}

	if *driversCSV != "" {
		n, err := seedCSV(ctx, db, *driversCSV, 2, func(ctx context.Context, tx bun.Tx, rec []string) error {
			_, err := tx.NewInsert().
				Model(&models.Driver{Plate: rec[0], Group: rec[1]}).
				On("CONFLICT (plate) DO UPDATE").
				Set("group_name = EXCLUDED.group_name").
				Exec(ctx)
			return err
		})
		report("drivers", n, err)
	}
}

func report(table string, n int, err error) {
	if err != nil {
		log.Fatalf("seed %s: %v", table, err)
	}
	fmt.Printf("seeded %d %s rows\n", n, table)
}

// seedCSV streams the file and upserts one record at a time inside a
// single transaction.
func seedCSV(ctx context.Context, db *sqlite.DB, path string, fields int,
	upsert func(context.Context, bun.Tx, []string) error) (int, error) {

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	if _, err := r.Read(); err != nil { // header
		return 0, fmt.Errorf("read header: %w", err)
	}

	count := 0
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for line := 2; ; line++ {
			rec, err := r.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if err := upsert(ctx, tx, rec); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			count++
		}
	})
	return count, err
}

func parseRates(hlField, bultosField string) (float64, int64, error) {
	var hl float64
	var bultos int64
	var err error
	if hlField != "" {
		if hl, err = strconv.ParseFloat(hlField, 64); err != nil {
			return 0, 0, fmt.Errorf("hl_per_pallet %q: %w", hlField, err)
		}
	}
	if bultosField != "" {
		if bultos, err = strconv.ParseInt(bultosField, 10, 64); err != nil {
			return 0, 0, fmt.Errorf("bultos_per_pallet %q: %w", bultosField, err)
		}
	}
	return hl, bultos, nil
}
