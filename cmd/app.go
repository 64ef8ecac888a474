package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-auth/internal/api"
	"github.com/kozaktomas/face-auth/internal/auth"
	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/config"
	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/payload"
	"github.com/kozaktomas/face-auth/internal/session"
	"github.com/kozaktomas/face-auth/internal/validation"
)

// app holds everything a client command needs. It owns the session store.
type app struct {
	cfg     *config.Config
	store   *session.Store
	client  *api.Client
	service *auth.Service
	camera  capture.Camera
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	store, err := session.Open(ctx, cfg.Session.Store, cfg.Session.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client, err := api.New(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(store),
		api.WithPayloadFormat(payload.Format(cfg.API.PayloadFormat)),
		api.WithCacheTTL(cfg.API.CacheTTL),
		api.WithReadRetry(constants.ReadRetryAttempts, constants.ReadRetryBase),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	if captureDir != "" {
		if err := client.SetCaptureDir(captureDir); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to set capture directory: %w", err)
		}
	}

	schema := validation.NewSchema(
		validation.LimitsFromConfig(&cfg.Limits),
		validation.WithImageInspection(cfg.Limits.InspectImages),
	)

	return &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		service: auth.NewService(schema, client, store),
		camera:  capture.NewFFmpegCamera(cfg.Camera.Device, cfg.Camera.FFmpegPath),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
