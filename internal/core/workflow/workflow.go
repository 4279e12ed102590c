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

// Package workflow assembles the preview commands into the pipelines run by
// each entry point.
//
// Workflows:
//   - PreviewWorkflow: JSON request body in, PreviewResult out. Used by the
//     HTTP server and the Lambda HTTP handler.
//   - StorageTriggerWorkflow: a storage notification in, PreviewResult out.
//     Used by the Pub/Sub listener and the Lambda S3 handler.
//
// Both share the tail of the pipeline:
//
//	probe -> schedule -> generate -> upload -> inspect
//
// Chains are built once by the constructors and executed once per
// invocation with a fresh cor.Context, which is closed before Run returns so
// the rendered scratch file never outlives the invocation.
package workflow

import (
	"context"
	"errors"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// ErrNoResult is returned when a chain finished without error and without a
// result, which means a command was skipped unexpectedly.
var ErrNoResult = errors.New("workflow produced no result")

// Toolchain holds the media collaborators. Zero fields are filled from the
// configuration with the ffmpeg binaries.
type Toolchain struct {
	Prober  commands.MediaProber
	Encoder commands.MediaEncoder
}

func (t Toolchain) withDefaults(config *cloud.Config) Toolchain {
	if t.Prober != nil && t.Encoder != nil {
		return t
	}
	ff := commands.NewFFmpeg(config.FFmpeg.FFmpegPath, config.FFmpeg.FFprobePath, config.Application.Debug)
	if t.Prober == nil {
		t.Prober = ff
	}
	if t.Encoder == nil {
		t.Encoder = ff
	}
	return t
}

// addPreviewTail appends the commands shared by every workflow.
func addPreviewTail(chain cor.Chain, config *cloud.Config, store cloud.ObjectStore, tools Toolchain, bucket string) {
	chain.AddCommand(commands.NewMediaProbe("media-probe", tools.Prober))
	chain.AddCommand(commands.NewSampleScheduler("sample-scheduler"))
	chain.AddCommand(commands.NewPreviewGenerator("preview-generator", tools.Encoder, config.FFmpeg.TempDir))
	chain.AddCommand(commands.NewPreviewUpload("preview-upload", store, bucket))
	chain.AddCommand(commands.NewPreviewInspect("preview-inspect", tools.Prober))
}

// run executes command with input under cor.CtxIn and extracts the outcome.
// A nil result with a nil error means the invocation was skipped.
func run(ctx context.Context, command cor.Command, input interface{}) (*model.PreviewResult, error) {
	chCtx := cor.NewBaseContextWith(ctx)
	defer chCtx.Close()
	chCtx.Add(cor.CtxIn, input)

	command.Execute(chCtx)
	return Result(chCtx)
}

// Result returns the outcome recorded on an executed context.
func Result(chCtx cor.Context) (*model.PreviewResult, error) {
	if err := chCtx.FirstError(); err != nil {
		return nil, err
	}
	if result, ok := chCtx.Get(commands.ResultKey).(*model.PreviewResult); ok {
		return result, nil
	}
	if chCtx.Get(commands.SkippedKey) != nil {
		return nil, nil
	}
	return nil, ErrNoResult
}
