// main is the entry point of the student records manager.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the configured key-value backend
//  4. Build the student store on top of it
//  5. Load the list view once and log what it shows
//
// RUNNING:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/bolt"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
	"github.com/aanand-mishra/student-records/internal/student"
	"github.com/aanand-mishra/student-records/internal/view"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-records",
		slog.String("env", cfg.Env),
		slog.String("backend", cfg.Storage.Backend),
	)

	// ── 3. Open Storage ───────────────────────────────────────────────────
	// A backend that cannot be opened is not fatal: the store runs purely
	// in memory for this session instead.
	kv, closer, err := openStorage(cfg)
	if err != nil {
		log.Warn("storage unavailable, running in memory only",
			slog.String("error", err.Error()))
		kv, closer = storage.Unavailable{}, io.NopCloser(nil)
	}
	defer closer.Close()

	// ── 4. Build the Store ────────────────────────────────────────────────
	svc := student.New(kv, student.Options{
		Key:     cfg.Storage.Key,
		Latency: cfg.Latency,
		Logger:  log,
	})

	// ── 5. Show the List ──────────────────────────────────────────────────
	// Ctrl+C (SIGINT) or SIGTERM cancels the in-flight load.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	list := view.NewList(svc, log)
	if err := list.Load(ctx); err != nil {
		log.Error("failed to load students", slog.String("error", err.Error()))
		return
	}

	for _, st := range list.Rows() {
		log.Info("student",
			slog.Int64("id", st.ID),
			slog.String("name", st.Name),
			slog.String("email", st.Email),
			slog.String("course", st.Course),
			slog.Float64("marks", st.Marks),
			slog.String("result", string(st.Result)),
		)
	}
}

// openStorage returns the backend selected by cfg.Storage.Backend and a
// closer that releases it.
func openStorage(cfg *config.Config) (storage.KV, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.BackendBolt:
		db, err := bolt.New(cfg, 0o600)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.BackendMemory:
		return memory.New(), io.NopCloser(nil), nil
	case config.BackendNone:
		return storage.Unavailable{}, io.NopCloser(nil), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
