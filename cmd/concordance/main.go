package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
	"github.com/servsurcp-stack/dashboard-concordance/internal/config"
	"github.com/servsurcp-stack/dashboard-concordance/internal/pipeline"
	"github.com/servsurcp-stack/dashboard-concordance/internal/report"
	"github.com/servsurcp-stack/dashboard-concordance/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := os.Args[1]
	switch cmd {
	case "ingest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "loading-conformity extract (.xlsx or .csv)")
		out := fs.String("out", cfg.OutputDir, "output directory")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		res, err := pipeline.RunSingle(*input, pipeline.Options{Locale: pipeline.Locale(cfg.WeekdayLocale)})
		must(err)
		finish(ctx, cfg, res, *out)
	case "merge":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		documentary := fs.String("documentary", "", "documentary/vehicle-state extract")
		conformity := fs.String("conformity", "", "loading-conformity extract")
		out := fs.String("out", cfg.OutputDir, "output directory")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*documentary) == "" || strings.TrimSpace(*conformity) == "" {
			must(fmt.Errorf("--documentary and --conformity are required"))
		}
		res, err := pipeline.RunMerged(*documentary, *conformity, pipeline.Options{Locale: pipeline.Locale(cfg.WeekdayLocale)})
		must(err)
		finish(ctx, cfg, res, *out)
	case "export:csv":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output csv path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		records := loadStored(ctx, cfg)
		must(pipeline.ExportCSV(records, *out))
		fmt.Printf("exported %d records to %s\n", len(records), *out)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		records := loadStored(ctx, cfg)
		must(pipeline.ExportXLSX(records, *out))
		fmt.Printf("exported %d records to %s\n", len(records), *out)
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.ServeAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		store, err := openStore(ctx, cfg)
		must(err)
		defer store.Close()
		srv := report.NewServer(report.ServerConfig{
			Addr:     *addr,
			CacheTTL: time.Duration(cfg.CacheTTLSec) * time.Second,
		}, store)
		fmt.Printf("dashboard listening on %s\n", *addr)
		must(srv.ListenAndServe())
	default:
		usage()
		os.Exit(1)
	}
}

// finish stores the pipeline result and writes the csv/xlsx outputs
// next to each other in the output directory.
func finish(ctx context.Context, cfg config.Config, res pipeline.Result, outDir string) {
	store, err := openStore(ctx, cfg)
	must(err)
	defer store.Close()
	must(store.ReplaceAll(ctx, res.Records))

	must(pipeline.ExportCSV(res.Records, filepath.Join(outDir, "verifications_chargement.csv")))
	must(pipeline.ExportXLSX(res.Records, filepath.Join(outDir, "verifications_chargement.xlsx")))

	fmt.Printf("processed %d records into %s\n", len(res.Records), outDir)
	if !res.Diagnostics.Empty() {
		fmt.Printf("diagnostics: %s\n", res.Diagnostics.Summary())
	}
}

func loadStored(ctx context.Context, cfg config.Config) []internal.Record {
	store, err := openStore(ctx, cfg)
	must(err)
	defer store.Close()
	records, err := store.List(ctx, internal.Filter{})
	must(err)
	return records
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.DBDriver == "postgres" {
		return storage.OpenPostgres(ctx, cfg.PostgresDSN)
	}
	return storage.Open(cfg.DBPath)
}

func usage() {
	fmt.Println("usage: concordance <command>")
	fmt.Println("commands:")
	fmt.Println("  ingest --input=extract.xlsx [--out=./out]")
	fmt.Println("  merge --documentary=doc.xlsx --conformity=conf.xlsx [--out=./out]")
	fmt.Println("  export:csv --out=./out/result.csv")
	fmt.Println("  export:xlsx --out=./out/result.xlsx")
	fmt.Println("  serve [--addr=:8080]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
