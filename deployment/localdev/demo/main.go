package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/miradorstack/docrouter-health/internal/collector"
	"github.com/miradorstack/docrouter-health/internal/gauges"
	"github.com/miradorstack/docrouter-health/internal/health"
	"github.com/miradorstack/docrouter-health/internal/models"
	"github.com/miradorstack/docrouter-health/internal/recorder"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

func main() {
	var exportPath string
	flag.StringVar(&exportPath, "out", "test_metrics.json", "Structured export destination")
	flag.Parse()

	logger := utils.NewLogger("warn", false)
	ctx := context.Background()

	rec := recorder.New(recorder.DefaultHistorySize)
	hostGauges := gauges.NewHostProvider(gauges.HostConfig{CPUSampleInterval: time.Second})
	evaluator := health.NewEvaluator(logger)
	if err := collector.RegisterHostProbes(evaluator, hostGauges, nil); err != nil {
		logger.Error("failed to register probes", slog.Any("error", err))
		os.Exit(1)
	}
	coll := collector.New(logger, rec, evaluator, hostGauges)

	fmt.Println("=== Recording sample requests ===")
	formats := []string{"Email", "JSON", "PDF"}
	intents := []string{"Complaint", "Invoice", "RFQ"}
	for i := 0; i < 10; i++ {
		rec.Record(recorder.Event{
			Duration: 100*time.Millisecond + time.Duration(i)*50*time.Millisecond,
			Success:  i != 7,
			Tags:     models.Tags{Format: formats[i%3], Intent: intents[i%3]},
		})
	}

	snap := coll.Collect(ctx)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		logger.Error("failed to encode snapshot", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(string(data))

	if err := collector.WriteSnapshot(exportPath, snap); err != nil {
		logger.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Printf("\nMetrics exported to %s\n", exportPath)

	fmt.Println("\n=== Prometheus Format ===")
	text, err := coll.ExportLineMetrics(ctx)
	if err != nil {
		logger.Error("line metrics failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Print(text)
}
