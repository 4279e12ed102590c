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

// Package main is the AWS Lambda entry point. application.mode selects the
// event source: "http" for API Gateway / function URL requests, "s3" for
// object created notifications.
package main

import (
	"context"
	"log/slog"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/workflow"
	"github.com/jaycherian/gcp-go-video-preview/internal/lambda"
	"github.com/jaycherian/gcp-go-video-preview/internal/telemetry"
)

func main() {
	telemetry.SetupLogging(os.Stdout, false)
	ctx := context.Background()

	config, err := cloud.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	telemetry.SetupLogging(os.Stdout, config.Application.Debug)

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("failed to setup OpenTelemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdown(ctx) }()

	clients, err := cloud.NewServiceClients(ctx, config)
	if err != nil {
		slog.Error("failed to create service clients", "error", err)
		os.Exit(1)
	}

	switch config.Application.Mode {
	case cloud.ModeS3:
		wf := workflow.NewStorageTriggerWorkflow(config, clients, workflow.Toolchain{}, workflow.TriggerS3Record)
		awslambda.Start(lambda.NewS3EventHandler(wf))
	default:
		wf := workflow.NewPreviewWorkflow(config, clients, workflow.Toolchain{})
		awslambda.Start(lambda.NewHTTPHandler(wf))
	}
}
