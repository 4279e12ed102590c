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

	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// MediaProbe reads the duration of the source video. It only runs when the
// request has no explicit sample offsets.
type MediaProbe struct {
	cor.BaseCommand
	prober MediaProber
}

// NewMediaProbe creates the command that measures the source video.
//
// Inputs:
//   - name: The name errors and spans are recorded under.
//   - prober: Runs ffprobe, or a fake in tests.
//
// Outputs:
//   - *MediaProbe: The command, reading the request from RequestKey.
func NewMediaProbe(name string, prober MediaProber) *MediaProbe {
	out := &MediaProbe{BaseCommand: *cor.NewBaseCommand(name), prober: prober}
	out.InputParamName = RequestKey
	return out
}

// IsExecutable skips the probe when the request carries explicit offsets.
func (c *MediaProbe) IsExecutable(context cor.Context) bool {
	if !c.BaseCommand.IsExecutable(context) {
		return false
	}
	req, ok := context.Get(c.GetInputParam()).(*model.PreviewRequest)
	return ok && !req.HasExplicitSchedule()
}

// Execute probes the request URL and stores the duration under DurationKey.
// A probe failure is recorded as a StageProbe error.
func (c *MediaProbe) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.PreviewRequest)

	probe, err := c.prober.Probe(context.GetContext(), req.URL)
	if err != nil {
		slog.ErrorContext(context.GetContext(), "failed to probe source", "error", err)
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewStageError(model.StageProbe, err))
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(DurationKey, probe.Duration)
	context.Add(c.GetOutputParam(), probe.Duration)
}
