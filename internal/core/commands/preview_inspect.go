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
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// PreviewInspect probes the rendered preview and assembles the result
// returned to the caller.
type PreviewInspect struct {
	cor.BaseCommand
	prober MediaProber
}

// NewPreviewInspect creates the command that measures the uploaded preview
// and assembles the result.
func NewPreviewInspect(name string, prober MediaProber) *PreviewInspect {
	out := &PreviewInspect{BaseCommand: *cor.NewBaseCommand(name), prober: prober}
	out.InputParamName = OutputURLKey
	return out
}

// Execute probes the local artifact and stores a *model.PreviewResult under
// ResultKey. When ffprobe reports no size the file is measured on disk.
func (c *PreviewInspect) Execute(context cor.Context) {
	url := context.Get(c.GetInputParam()).(string)
	artifact, _ := context.Get(ArtifactKey).(string)

	probe, err := c.prober.Probe(context.GetContext(), artifact)
	if err != nil {
		slog.ErrorContext(context.GetContext(), "failed to probe preview", "file", artifact, "error", err)
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewStageError(model.StageProbe, err))
		return
	}

	size := probe.Size
	if size == 0 {
		if info, err := os.Stat(artifact); err == nil {
			size = info.Size()
		}
	}
	result := &model.PreviewResult{URL: url, Duration: probe.Duration, Size: size}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ResultKey, result)
	context.Add(c.GetOutputParam(), result)
}
