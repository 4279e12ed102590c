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

	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// SampleScheduler decides where samples are cut. Explicit offsets are used
// verbatim; otherwise they are spread over the probed duration.
type SampleScheduler struct {
	cor.BaseCommand
}

// NewSampleScheduler creates the scheduling command.
func NewSampleScheduler(name string) *SampleScheduler {
	out := &SampleScheduler{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = RequestKey
	return out
}

// Execute stores the sample offsets under ScheduleKey. Explicit offsets are
// used as given; otherwise they are spread over the probed duration and an
// overlap is reported as a ScheduleError.
func (c *SampleScheduler) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.PreviewRequest)

	var schedule model.SampleSchedule
	if req.HasExplicitSchedule() {
		schedule = req.SampleSeconds
	} else {
		duration, ok := context.Get(DurationKey).(float64)
		if !ok {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("media duration is not available"))
			return
		}
		var err error
		schedule, err = model.CalculateSampleSeconds(duration, req.Samples, req.SampleDuration)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), err)
			return
		}
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ScheduleKey, schedule)
	context.Add(c.GetOutputParam(), schedule)
}
