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

// TriggerSource selects how the storage notification is decoded.
type TriggerSource int

const (
	// TriggerGCSNotification expects the JSON of a Cloud Storage notification.
	TriggerGCSNotification TriggerSource = iota
	// TriggerS3Record expects an events.S3EventRecord.
	TriggerS3Record
)

// StorageTriggerWorkflow builds a preview for a newly uploaded object using
// the configured preview defaults:
//
//	trigger -> request (presigned source) -> probe -> schedule -> generate -> upload -> inspect
//
// Objects under the output prefix are skipped; Run then returns nil, nil.
type StorageTriggerWorkflow struct {
	cor.BaseCommand
	config *cloud.Config
	store  cloud.ObjectStore
	tools  Toolchain
	source TriggerSource
	chain  cor.Chain
}

// NewStorageTriggerWorkflow builds the notification-driven workflow.
//
// Inputs:
//   - config: The validated configuration.
//   - serviceClients: Provides the ObjectStore.
//   - tools: Media collaborators; zero values use ffmpeg from config.
//   - source: The notification format of the entry point.
//
// Outputs:
//   - *StorageTriggerWorkflow: The workflow, safe to Run concurrently.
func NewStorageTriggerWorkflow(config *cloud.Config, serviceClients *cloud.ServiceClients, tools Toolchain, source TriggerSource) *StorageTriggerWorkflow {
	out := &StorageTriggerWorkflow{
		BaseCommand: *cor.NewBaseCommand("storage-trigger-workflow"),
		config:      config,
		store:       serviceClients.Store,
		tools:       tools.withDefaults(config),
		source:      source,
	}
	out.initializeChain()
	return out
}

func (w *StorageTriggerWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	switch w.source {
	case TriggerS3Record:
		out.AddCommand(commands.NewS3EventToStorageObject("s3-event-reader"))
	default:
		out.AddCommand(commands.NewMediaTriggerToStorageObject("gcs-topic-listener"))
	}
	out.AddCommand(commands.NewStorageEventToRequest("storage-event-to-request",
		w.store, w.config.TriggerDefaults(), w.config.Storage.PresignExpiry()))
	addPreviewTail(out, w.config, w.store, w.tools, w.config.Storage.Bucket)
	w.chain = out
}

func (w *StorageTriggerWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// Run builds the preview for the notification in. in is the notification
// JSON (string or []byte) or an events.S3EventRecord, matching the source.
func (w *StorageTriggerWorkflow) Run(ctx context.Context, in interface{}) (*model.PreviewResult, error) {
	result, err := run(ctx, w, in)
	switch {
	case err != nil:
		slog.ErrorContext(ctx, "triggered preview failed", "error", err)
		return nil, err
	case result == nil:
		slog.InfoContext(ctx, "triggered preview skipped")
		return nil, nil
	}
	slog.InfoContext(ctx, "triggered preview created", "url", result.URL, "duration", result.Duration, "size", result.Size)
	return result, nil
}
