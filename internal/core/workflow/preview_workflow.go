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

package workflow

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// PreviewWorkflow builds a preview from a JSON request body:
//
//	parse -> probe -> schedule -> generate -> upload -> inspect
type PreviewWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	store  cloud.ObjectStore
	tools  Toolchain
	chain  cor.Chain
}

// NewPreviewWorkflow builds the request-driven workflow.
//
// Inputs:
//   - config: The validated configuration.
//   - serviceClients: Provides the ObjectStore.
//   - tools: Media collaborators; zero values use ffmpeg from config.
//
// Outputs:
//   - *PreviewWorkflow: The workflow, safe to Run concurrently.
func NewPreviewWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients, tools Toolchain) *PreviewWorkflow {
	out := &PreviewWorkflow{
		BaseCommand: *cor.NewBaseCommand("preview-workflow"),
		config:      config,
		store:       serviceClients.Store,
		tools:       tools.withDefaults(config),
	}
	out.initializeChain()
	return out
}

func (w *PreviewWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewPreviewRequestParser("preview-request-parser", w.config.RequestDefaults()))
	addPreviewTail(out, w.config, w.store, w.tools, w.config.Storage.Bucket)
	w.chain = out
}

func (w *PreviewWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run builds the preview described by body.
func (w *PreviewWorkflow) Run(ctx context.Context, body []byte) (*model.PreviewResult, error) {
	result, err := run(ctx, w, body)
	if err != nil {
		slog.ErrorContext(ctx, "preview failed", "status", model.StatusCode(err), "error", err)
		return nil, err
	}
	slog.InfoContext(ctx, "preview created", "url", result.URL, "duration", result.Duration, "size", result.Size)
	return result, nil
}
