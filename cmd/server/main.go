package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/site-content/pkg/sitecontent/api"
	"github.com/tendant/site-content/pkg/sitecontent/config"
	"github.com/tendant/site-content/pkg/sitecontent/presigned"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	content, media, err := cfg.BuildStores(context.Background())
	if err != nil {
		slog.Error("Failed to build storage", "err", err)
		os.Exit(1)
	}

	handler, err := config.NewHandler(content, media, logger)
	if err != nil {
		slog.Error("Failed to build handler", "err", err)
		os.Exit(1)
	}

	slog.Info("Site content server configured",
		"storage", cfg.StorageType,
		"content_bucket", cfg.ContentBucket,
		"media_bucket", cfg.MediaBucket,
		"env", cfg.Environment,
	)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(corsOptions(cfg)))
		r.Mount("/", api.NewHandler(handler, logger).Routes())
	})

	// Filesystem media has no native upload URLs; serve the signed ones here
	if cfg.StorageType == config.StorageFS {
		signer := cfg.Signer()
		if !signer.IsEnabled() {
			slog.Warn("FS_SIGNATURE_SECRET_KEY not set, upload URLs are unsigned")
		}
		server.R.Route("/upload", func(r chi.Router) {
			r.Use(cors.Handler(corsOptions(cfg)))
			r.Mount("/", presigned.NewUploadHandler(media, signer, logger).Routes())
		})
	}

	server.Run()
}

// corsOptions answers browser preflight requests before they reach the
// handler, which only knows the five API routes.
func corsOptions(cfg *config.Config) cors.Options {
	return cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Amz-Date",
			"Authorization",
			"X-Api-Key",
			"X-Amz-Security-Token",
		},
		ExposedHeaders: []string{api.RequestIDHeader},
		MaxAge:         300,
	}
}
