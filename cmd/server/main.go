// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point of the video preview HTTP server.
//
// The server loads the configuration, sets up logging and OpenTelemetry,
// creates the shared storage clients once, builds the preview workflows and
// serves them with gin. When Pub/Sub subscriptions are configured, uploads
// announced by Cloud Storage notifications are previewed in the background.
// SIGINT and SIGTERM trigger a graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaycherian/gcp-go-video-preview/internal/api"
	"github.com/jaycherian/gcp-go-video-preview/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	telemetry.SetupLogging(os.Stdout, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state, err := InitState(ctx)
	if err != nil {
		return err
	}
	defer state.Close(context.Background())

	telemetry.SetupLogging(os.Stdout, state.config.Application.Debug)
	SetupListeners(ctx, state)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", state.config.Server.Port),
		Handler:           api.NewRouter(state.config, state.preview),
		ReadHeaderTimeout: 20 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	slog.Info("server ready", "port", state.config.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("failed to listen: %w", err)
	}
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
