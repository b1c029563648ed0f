// Command rollup aggregates one NDJSON file into a run without starting the HTTP server.
//
//	rollup [-run-id ID] [-summaries] <config.yml> <input.ndjson>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"traffic-rollup/internal/app"
	"traffic-rollup/internal/ingestors"
	"traffic-rollup/internal/shared/configs"
	"traffic-rollup/internal/shared/loggers"
)

func main() {
	runID := flag.String("run-id", "", "run id; a ULID is generated when empty")
	withSummaries := flag.Bool("summaries", false, "print every window summary, not only the run manifest")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-run-id ID] [-summaries] <config.yml> <input.ndjson>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1), *runID, *withSummaries); err != nil {
		fmt.Fprintf(os.Stderr, "rollup failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, inputPath, runID string, withSummaries bool) error {
	cfg, err := configs.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries the result document.
	cfg.Log.Output = loggers.OutputStderr

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer application.Close()

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer input.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = application.Logger().WithContext(ctx)

	result, err := application.IngestionService().IngestRun(ctx, runID, ingestors.FormatNDJSON, input)
	if err != nil {
		return err
	}

	var output any = result.Manifest
	if withSummaries {
		output = result
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
