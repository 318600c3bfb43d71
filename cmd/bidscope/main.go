package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kbidlab/bidscope/internal/batch"
	"github.com/kbidlab/bidscope/internal/config"
	"github.com/kbidlab/bidscope/internal/export"
	"github.com/kbidlab/bidscope/internal/g2b"
	"github.com/kbidlab/bidscope/internal/logger"
	"github.com/kbidlab/bidscope/internal/models"
	"github.com/kbidlab/bidscope/internal/storage"
	"github.com/kbidlab/bidscope/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	input      = flag.String("input", "-", "Notice list: a file path, '-' for stdin, or an inline comma/newline list")
	officer    = flag.String("officer", "", "Only analyze notices handled by this contracting officer")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	noticeInput, err := readNoticeInput(*input)
	if err != nil {
		logger.Fatal("Failed to read notice list: %v", err)
	}

	// Initialize the procurement client, optionally behind the lookup cache
	var fetcher batch.Fetcher = g2b.NewClient(cfg.G2B)
	if cfg.Cache.Enabled {
		cache, err := storage.Open(cfg.Cache.DBPath, cfg.Cache.TTL)
		if err != nil {
			logger.Fatal("Failed to open lookup cache: %v", err)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error("Failed to close lookup cache: %v", err)
			}
		}()
		fetcher = storage.NewCachedFetcher(fetcher, cache)
		logger.Info("Lookup cache enabled at %s (ttl: %v)", cfg.Cache.DBPath, cfg.Cache.TTL)
	}

	// Initialize Telegram client
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cancelling run...")
		cancel()
	}()

	aggregator := batch.NewAggregator(batch.NewAnalyzer(fetcher, cfg.Analysis), cfg.Analysis)
	report := aggregator.Run(ctx, noticeInput, *officer)

	printReport(report)

	if cfg.Export.Enabled && report.Merged != nil {
		path, err := export.Export(report, cfg.Export.OutputDir)
		if err != nil {
			logger.Error("Failed to export comparison table: %v", err)
		} else {
			logger.Info("Comparison table exported to %s", path)
		}
	}

	if cfg.Telegram.Enabled && telegramClient != nil {
		if err := telegramClient.Send(report); err != nil {
			logger.Error("Failed to send Telegram notification: %v", err)
		} else {
			logger.Info("Sent Telegram summary for run %s", report.RunID)
		}
	}
}

// readNoticeInput resolves the -input flag: "-" reads stdin, an existing
// file path reads the file, anything else is treated as an inline list.
func readNoticeInput(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("read notice file: %w", err)
		}
		return string(data), nil
	}

	return arg, nil
}

func printReport(report *models.Report) {
	fmt.Printf("Run %s\n", report.RunID)
	fmt.Println(strings.Repeat("-", 60))
	for _, line := range report.Logs {
		fmt.Println(line)
	}
	fmt.Println(strings.Repeat("-", 60))

	fmt.Printf("Notices: %d total, %d analyzed, %d missing\n",
		report.Summary.Total, report.Summary.Filtered, report.Summary.Missing)

	if report.HotZone != nil {
		fmt.Printf("Hot zone: %.2f%% ~ %.2f%% (%d winners)\n",
			report.HotZone.Start, report.HotZone.End, report.HotZone.Count)
	}
	fmt.Printf("Blue ocean: %s\n", report.Summary.BlueRange)
	if report.Summary.RecommendedRate != nil {
		fmt.Printf("Recommended rate: %.4f%%\n", *report.Summary.RecommendedRate)
	}
}
