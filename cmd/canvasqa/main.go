// CLAUDE:SUMMARY CLI entry point for canvasqa — MCP tools on stdio, plugin WebSocket channel, SQLite audit.
// Command canvasqa bridges AI agents to a design document. MCP tools are
// served on stdio; the design-tool plugin connects over WebSocket.
//
// Usage:
//
//	canvasqa -config canvasqa.yaml
//	canvasqa -listen 127.0.0.1:8787 -db canvasqa.db
//	canvasqa -snapshot page.json           # offline, no plugin required
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/canvasqa/audit"
	"github.com/hazyhaar/canvasqa/bridge"
	"github.com/hazyhaar/canvasqa/canvas"
	"github.com/hazyhaar/canvasqa/dbopen"
	"github.com/hazyhaar/canvasqa/pluginchan"
	"github.com/hazyhaar/canvasqa/progress"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to canvasqa.yaml config file")
	listen := flag.String("listen", "", "plugin channel listen address (overrides config)")
	dbPath := flag.String("db", "", "audit database path (overrides config)")
	snapshot := flag.String("snapshot", "", "preload a document snapshot JSON file")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "canvasqa: config:", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dbPath != "" {
		cfg.DB = *dbPath
	}
	if *snapshot != "" {
		cfg.Snapshot = *snapshot
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	// stdout carries the MCP protocol; all logging goes to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("canvasqa: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *Config) error {
	doc := canvas.NewDocument()
	if cfg.Snapshot != "" {
		data, err := os.ReadFile(cfg.Snapshot)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if err := doc.LoadJSON(data); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		logger.Info("snapshot preloaded", "path", cfg.Snapshot)
	}

	channel := pluginchan.New(doc, pluginchan.WithLogger(logger))

	var host canvas.Host = channel
	if cfg.Snapshot != "" {
		// Offline runs mutate the mirror directly.
		host = &canvas.Loopback{Doc: doc}
	}

	opts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithProgressSinks(channel, progress.NewStdout(os.Stderr)),
	}
	if cfg.DB != "" {
		db, err := dbopen.Open(cfg.DB, dbopen.WithSchema(audit.Schema), dbopen.WithMkdirAll())
		if err != nil {
			return fmt.Errorf("open audit db: %w", err)
		}
		defer db.Close()
		store := audit.NewStore(db, audit.WithLogger(logger))
		if err := store.Cleanup(ctx, cfg.Audit.RetentionDays, cfg.Audit.ReportRetentionDays); err != nil {
			logger.Warn("audit cleanup failed", "error", err)
		}
		opts = append(opts, bridge.WithAudit(store))
	}

	b := bridge.New(doc, host, bridge.Config{
		ChunkSize:        cfg.Batch.ChunkSize,
		ChunkPause:       cfg.Batch.ChunkPause,
		HighlightDelay:   cfg.Highlight.RevertDelay,
		RequiredTypeface: cfg.QA.RequiredTypeface,
	}, opts...)

	srv := mcp.NewServer(&mcp.Implementation{Name: "canvasqa", Version: version}, nil)
	b.RegisterMCP(srv)

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           channel.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("plugin channel listening", "addr", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("plugin channel server failed", "error", err)
		}
	}()

	logger.Info("canvasqa started", "version", version, "audit", cfg.DB != "")
	err := srv.Run(ctx, &mcp.StdioTransport{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
