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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/workflow"
	"github.com/jaycherian/gcp-go-video-preview/internal/telemetry"
)

// StateManager holds everything created once at start and shared by all
// requests.
type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	preview   *workflow.PreviewWorkflow
	trigger   *workflow.StorageTriggerWorkflow
	telemetry func(context.Context) error
}

// InitState loads the configuration and creates telemetry, clients and
// workflows.
func InitState(ctx context.Context) (*StateManager, error) {
	config, err := cloud.Load()
	if err != nil {
		return nil, err
	}
	if !config.Application.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup OpenTelemetry: %w", err)
	}

	clients, err := cloud.NewServiceClients(ctx, config)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create service clients: %w", err), shutdown(ctx))
	}
	slog.Info("initialized state", "provider", config.Storage.Provider, "bucket", config.Storage.Bucket)

	return &StateManager{
		config:    config,
		cloud:     clients,
		preview:   workflow.NewPreviewWorkflow(config, clients, workflow.Toolchain{}),
		trigger:   workflow.NewStorageTriggerWorkflow(config, clients, workflow.Toolchain{}, workflow.TriggerGCSNotification),
		telemetry: shutdown,
	}, nil
}

// Close releases the clients and flushes telemetry.
func (s *StateManager) Close(ctx context.Context) {
	if err := errors.Join(s.cloud.Close(), s.telemetry(ctx)); err != nil {
		slog.Warn("shutdown reported errors", "error", err)
	}
}
