package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dbehnke/adlog-decoder/pkg/audit"
	"github.com/dbehnke/adlog-decoder/pkg/config"
	"github.com/dbehnke/adlog-decoder/pkg/coordinator"
	"github.com/dbehnke/adlog-decoder/pkg/decode"
	"github.com/dbehnke/adlog-decoder/pkg/format"
	"github.com/dbehnke/adlog-decoder/pkg/logger"
	"github.com/dbehnke/adlog-decoder/pkg/metrics"
	"github.com/dbehnke/adlog-decoder/pkg/web"
	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	file := flag.String("file", "", "Path to the .bin flight log to decode")
	workers := flag.Int("workers", 4, "Number of segments/workers to partition the file into")
	roundFloats := flag.Bool("round-floats", false, "Round float fields named in parser.round_fields to 3 decimal places")
	mode := flag.String("mode", "parallel", "Dispatch mode: parallel or cooperative")
	filter := flag.String("filter", "ALL", "Comma-separated message type allow-list, or ALL")
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	enableMetrics := flag.Bool("metrics", false, "Override config and enable the Prometheus metrics endpoint")
	enableAudit := flag.Bool("audit", false, "Override config and enable the run ledger")
	enableWeb := flag.Bool("web", false, "Override config and enable the status web server")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("adlog-decoder %s\n", version)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		fmt.Printf("Built: %s\n", buildTime)
		os.Exit(0)
	}

	log := logger.New(logger.Config{Level: "info", Format: "text"})

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	log = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if *enableMetrics {
		cfg.Metrics.Enabled = true
	}
	if *enableAudit {
		cfg.Audit.Enabled = true
	}
	if *enableWeb {
		cfg.Web.Enabled = true
	}

	if *file == "" {
		log.Error("Missing required -file flag")
		flag.Usage()
		os.Exit(1)
	}

	runMode, err := parseMode(*mode)
	if err != nil {
		log.Error("Invalid -mode flag", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	metricsCollector := metrics.NewCollector()
	if cfg.Metrics.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			server := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Enabled,
					Port:    cfg.Metrics.Port,
					Path:    cfg.Metrics.Path,
				},
				metricsCollector,
				log.WithComponent("metrics"),
			)
			if err := server.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Metrics server error", logger.Error(err))
			}
		}()
		log.Info("Prometheus metrics server started",
			logger.Int("port", cfg.Metrics.Port),
			logger.String("path", cfg.Metrics.Path))
	}

	var runRepo *audit.Repository
	if cfg.Audit.Enabled {
		store, err := audit.Open(audit.Config{Path: cfg.Audit.Path}, log.WithComponent("audit"))
		if err != nil {
			log.Error("Failed to open audit store", logger.Error(err))
			os.Exit(1)
		}
		defer store.Close()

		runRepo = audit.NewRepository(store.GetDB())

		if cfg.Audit.RetentionDays > 0 {
			sweeper := audit.NewRetentionSweeper(runRepo, time.Duration(cfg.Audit.RetentionDays)*24*time.Hour, log.WithComponent("audit"))
			wg.Add(1)
			go func() {
				defer wg.Done()
				sweeper.Start(ctx)
			}()
		}
	}

	var webServer *web.Server
	if cfg.Web.Enabled {
		webServer = web.NewServer(cfg.Web, log.WithComponent("web")).
			WithRunRepository(runRepo)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
		log.Info("Web server started",
			logger.String("host", cfg.Web.Host),
			logger.Int("port", cfg.Web.Port))
	}

	alphabet := wire.NewAlphabet(cfg.Parser.ArduToStruct, cfg.Parser.ScaleFactors, cfg.Parser.RoundFields)
	nameFilter := format.ParseNameFilter(*filter)

	coord := coordinator.New(log.WithComponent("coordinator"))

	var runID uint
	startedAt := time.Now()
	metricsCollector.RunStarted(*workers)
	if webServer != nil {
		webServer.GetHub().BroadcastRunStarted(runID, *file, *workers, *mode)
	}

	observer := func(s coordinator.State) {
		log.Debug("Run phase transition", logger.String("phase", s.String()))
		if webServer != nil {
			webServer.GetHub().BroadcastRunPhase(runID, s.String())
		}
	}

	opts := coordinator.Options{
		Workers:     *workers,
		Mode:        runMode,
		RoundFloats: *roundFloats,
		NameFilter:  nameFilter,
		Alphabet:    alphabet,
	}
	if webServer != nil {
		opts.SegmentObserver = func(index, total int) {
			webServer.GetHub().BroadcastSegmentDone(runID, index, total)
		}
	}

	result, runErr := coord.Run(ctx, *file, opts, observer)
	finishedAt := time.Now()
	durationMS := finishedAt.Sub(startedAt).Milliseconds()

	succeeded := runErr == nil
	messageCount, warningCount := 0, 0
	if result != nil {
		messageCount = len(result.Messages)
		warningCount = len(result.Warnings)
	}
	metricsCollector.RunFinished(messageCount, warningCount, succeeded, finishedAt.Sub(startedAt).Seconds())

	if runRepo != nil {
		run := &audit.Run{
			FilePath:    *file,
			Workers:     *workers,
			Mode:        *mode,
			MessagesOut: messageCount,
			WarningsOut: warningCount,
			Succeeded:   succeeded,
			StartedAt:   startedAt,
			FinishedAt:  finishedAt,
			DurationMS:  durationMS,
		}
		if runErr != nil {
			run.FailureMessage = runErr.Error()
		}
		if err := runRepo.Create(run); err != nil {
			log.Warn("Failed to record run in audit ledger", logger.Error(err))
		} else {
			runID = run.ID
		}
	}

	if webServer != nil {
		if runErr != nil {
			webServer.GetHub().BroadcastRunFailed(runID, runErr.Error())
		} else {
			webServer.GetHub().BroadcastRunCompleted(runID, messageCount, warningCount, durationMS)
		}
	}

	if runErr != nil {
		log.Error("Decode failed", logger.Error(runErr))
		shutdown(cancel, &wg)
		os.Exit(1)
	}

	if err := writeMessages(os.Stdout, result.Messages); err != nil {
		log.Error("Failed to write decoded output", logger.Error(err))
		shutdown(cancel, &wg)
		os.Exit(1)
	}

	for _, w := range result.Warnings {
		log.Warn("Decode warning", logger.String("detail", w))
	}

	log.Info("Decode completed",
		logger.Int("messages", messageCount),
		logger.Int("warnings", warningCount),
		logger.Int("segments", result.Segments))

	if cfg.Web.Enabled || cfg.Metrics.Enabled {
		sig := <-sigChan
		log.Info("Received shutdown signal", logger.String("signal", sig.String()))
	}

	shutdown(cancel, &wg)
	log.Info("adlog-decoder stopped")
}

// shutdown cancels the run context and waits for ambient background
// servers (metrics, web, audit retention sweeper) to stop.
func shutdown(cancel context.CancelFunc, wg *sync.WaitGroup) {
	cancel()
	wg.Wait()
}

func parseMode(s string) (coordinator.Mode, error) {
	switch s {
	case "parallel":
		return coordinator.ModeParallelWorker, nil
	case "cooperative":
		return coordinator.ModeCooperativeThread, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want parallel or cooperative)", s)
	}
}

// messageJSON is the wire shape written to stdout: one JSON object per
// decoded message, fields flattened by name.
type messageJSON struct {
	Type   string                 `json:"message_type"`
	Fields map[string]interface{} `json:"fields"`
}

func writeMessages(w *os.File, messages []decode.Message) error {
	enc := json.NewEncoder(w)
	for _, m := range messages {
		fields := make(map[string]interface{}, len(m.Fields))
		for _, f := range m.Fields {
			fields[f.Name] = valueToInterface(f.Value)
		}
		if err := enc.Encode(messageJSON{Type: m.Type, Fields: fields}); err != nil {
			return err
		}
	}
	return nil
}

func valueToInterface(v decode.Value) interface{} {
	switch v.Kind {
	case decode.KindInt64:
		return v.I
	case decode.KindUint64:
		return v.U
	case decode.KindFloat64:
		return v.F
	case decode.KindString:
		return v.S
	default:
		return nil
	}
}
