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

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// TempFilePrefix names the scratch files previews are rendered into.
const TempFilePrefix = "video-preview-"

// PreviewGenerator renders the scheduled samples into a scratch file. The
// file is registered on the context so it is removed when the invocation
// ends, whatever the outcome.
type PreviewGenerator struct {
	cor.BaseCommand
	encoder MediaEncoder
	tempDir string
}

// NewPreviewGenerator reads the request under RequestKey and the schedule
// under ScheduleKey.
//
// Inputs:
//   - name: The command name.
//   - encoder: Runs the encode, normally *FFmpeg.
//   - tempDir: Directory for the scratch file; empty means os.TempDir.
//
// Outputs:
//   - *PreviewGenerator: The command.
func NewPreviewGenerator(name string, encoder MediaEncoder, tempDir string) *PreviewGenerator {
	out := &PreviewGenerator{BaseCommand: *cor.NewBaseCommand(name), encoder: encoder, tempDir: tempDir}
	out.InputParamName = ScheduleKey
	return out
}

func (c *PreviewGenerator) fail(context cor.Context, err error) {
	slog.ErrorContext(context.GetContext(), "failed to generate preview", "error", err)
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(c.GetName(), model.NewStageError(model.StageGeneration, err))
}

// Execute encodes the preview for the schedule into a new temp file.
//
// Inputs:
//   - context: Holds the schedule under ScheduleKey and the request under RequestKey.
//
// The temp file is registered with the context before ffmpeg runs, so it is
// removed on Close whatever the outcome. On success its path is stored under
// ArtifactKey.
func (c *PreviewGenerator) Execute(context cor.Context) {
	schedule := context.Get(c.GetInputParam()).(model.SampleSchedule)
	req, ok := context.Get(RequestKey).(*model.PreviewRequest)
	if !ok {
		c.fail(context, fmt.Errorf("no preview request in context"))
		return
	}
	format, ok := model.LookupFormat(req.Format)
	if !ok {
		c.fail(context, fmt.Errorf("unsupported format %q", req.Format))
		return
	}

	out, err := os.CreateTemp(c.tempDir, TempFilePrefix+"*."+format.Format)
	if err != nil {
		c.fail(context, err)
		return
	}
	context.AddTempFile(out.Name())
	if err := out.Close(); err != nil {
		c.fail(context, err)
		return
	}

	job := EncodeJob{
		Source:         req.URL,
		Schedule:       schedule,
		SampleDuration: req.SampleDuration,
		Scale:          req.Scale,
		Muxer:          format.Muxer,
		Output:         out.Name(),
	}
	if err := c.encoder.Encode(context.GetContext(), job); err != nil {
		c.fail(context, err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ArtifactKey, out.Name())
	context.Add(c.GetOutputParam(), out.Name())
}
