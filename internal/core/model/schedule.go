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

package model

// CalculateSampleSeconds spreads sampleCount samples evenly over totalDuration.
// Every sample starts at the beginning of its slot, so the first offset is 0
// and the last is spacing*(sampleCount-1). The call fails with a ScheduleError
// when the slots are shorter than sampleDuration; equal is accepted.
//
// Callers must ensure sampleCount > 0 and sampleDuration > 0.
func CalculateSampleSeconds(totalDuration float64, sampleCount int, sampleDuration float64) (SampleSchedule, error) {
	spacing := totalDuration / float64(sampleCount)
	if spacing < sampleDuration {
		return nil, &ScheduleError{MaxSampleDuration: spacing}
	}

	out := make(SampleSchedule, sampleCount)
	for i := range out {
		out[i] = spacing * float64(i)
	}
	return out, nil
}
