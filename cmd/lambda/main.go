package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tendant/site-content/pkg/sitecontent/config"
	"github.com/tendant/site-content/pkg/sitecontent/gateway"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	handler, err := cfg.BuildHandler(context.Background(), logger)
	if err != nil {
		slog.Error("Failed to build handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(gateway.NewHandler(handler, logger).HandleEvent)
}
