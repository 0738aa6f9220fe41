package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"shipmentgen/generate"
	"shipmentgen/infrastructure/config"
	"shipmentgen/infrastructure/sqlite"
)

func main() {
	dbPath := flag.String("db", "shipmentgen.db", "sqlite database path")
	outputDir := flag.String("output", ".", "root for the generated documents")
	dataDir := flag.String("data", "", "root with disponibilidad_camiones and 2etapa trees (defaults to output)")
	fromPlanta := flag.Bool("from-planta", false, "use the Cod Planta column as the origin")
	noPlacas := flag.Bool("no-placas", false, "skip the plate availability roster")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <manifest.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	(&config.Config{LogLevel: *logLevel}).SetupLogging()

	db, err := sqlite.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := sqlite.ApplyEmbeddedMigrations(ctx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	out, err := generate.NewGenerator(db).Run(ctx, generate.Options{
		InputPath:        input,
		OutputDir:        *outputDir,
		DataDir:          *dataDir,
		UsePlantAsOrigin: *fromPlanta,
		SkipPlates:       *noPlacas,
	})
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	fmt.Print(out.Result.Report())
	fmt.Printf("document: %s\n", out.DocumentPath)
	fmt.Printf("report:   %s\n", out.ReportPath)
	if out.RosterPath != "" {
		fmt.Printf("roster:   %s\n", out.RosterPath)
	}
}
