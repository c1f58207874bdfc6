package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/automaxprocs/maxprocs"

	"sheet2cal/internal/app"
	"sheet2cal/internal/config"
)

// Response is returned to the scheduler that invoked the function.
type Response struct {
	Added      int `json:"added"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

// HandleRequest runs one import per invocation, e.g. from an EventBridge schedule.
func HandleRequest(ctx context.Context) (*Response, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := newLogger(cfg.LogLevel).With("component", "sheet2cal")

	im, err := app.NewImporter(ctx, logger, cfg, false)
	if err != nil {
		logger.Error("Failed to create importer", "error", err)
		return nil, err
	}

	summary, err := im.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{
		Added:      len(summary.Added),
		Skipped:    len(summary.Skipped),
		Duplicates: summary.Duplicates,
	}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if _, err := maxprocs.Set(); err != nil {
		slog.Error("Error setting GOMAXPROCS", "error", err)
	}
	lambda.Start(HandleRequest)
}
