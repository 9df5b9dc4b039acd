package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contactkeval/option-heatmap/internal/config"
	"github.com/contactkeval/option-heatmap/internal/data"
	"github.com/contactkeval/option-heatmap/internal/grid"
	"github.com/contactkeval/option-heatmap/internal/logger"
	"github.com/contactkeval/option-heatmap/internal/pricing"
	"github.com/contactkeval/option-heatmap/internal/report"
	"github.com/contactkeval/option-heatmap/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config (defaults are used when empty)")
	rest := flag.Bool("rest", false, "run as REST server (accept pricing and grid requests)")
	port := flag.String("port", "", "REST server listen address, overrides server.addr")
	model := flag.String("model", "", "pricing model: black-scholes or binomial")
	steps := flag.Int("steps", 0, "binomial tree steps")
	outDir := flag.String("out", "", "report output directory")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("reading config: %v", err)
		}
	}

	// flags win over the file
	if *model != "" {
		cfg.Model = *model
	}
	if *steps > 0 {
		cfg.Steps = *steps
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *port != "" {
		cfg.Server.Addr = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger.SetVerbosity(cfg.Verbosity)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *rest {
		if err := server.New(cfg.Server, cfg.Workers).Run(ctx); err != nil {
			log.Fatalf("REST server: %v", err)
		}
		return
	}

	if cfg.Underlying != "" {
		prov := data.NewProvider(data.APIKeyFromEnv(), cfg.Seed)
		logger.Infof("%s provider enabled", prov.Name())
		spot, err := prov.LatestClose(ctx, cfg.Underlying)
		if err != nil {
			log.Fatalf("fetching spot for %s: %v", cfg.Underlying, err)
		}
		logger.Infof("%s spot %.2f from %s", cfg.Underlying, spot, prov.Name())
		cfg.Spot = spot
	}

	start := time.Now()
	m := cfg.PricingModel()
	params := cfg.MarketParameters()

	point, err := pricing.Price(m, params)
	if err != nil {
		log.Fatalf("pricing failed: %v", err)
	}

	g, err := grid.Build(ctx, m, params, cfg.Sweep(), grid.WithWorkers(cfg.Workers))
	if err != nil {
		log.Fatalf("heatmap failed: %v", err)
	}

	rep := report.NewGridReport(m, params, point, g)
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		logger.Warnf("could not create output dir %s: %v", cfg.OutputDir, err)
	}
	if err := report.WriteJSON(rep, cfg.OutputDir); err != nil {
		logger.Warnf("could not write JSON report: %v", err)
	}
	if err := report.WriteCSV(rep, cfg.OutputDir); err != nil {
		logger.Warnf("could not write CSV report: %v", err)
	}

	fmt.Println(report.Summary(rep))
	fmt.Println()
	if err := report.RenderTable(os.Stdout, "Call", g.Strikes, g.Vols, g.Call); err != nil {
		log.Fatalf("rendering call table: %v", err)
	}
	fmt.Println()
	if err := report.RenderTable(os.Stdout, "Put", g.Strikes, g.Vols, g.Put); err != nil {
		log.Fatalf("rendering put table: %v", err)
	}

	logger.Infof("finished in %v, wrote %dx%d grid to %s", time.Since(start), g.Rows(), g.Cols(), cfg.OutputDir)
}
