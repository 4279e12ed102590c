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

// Package model_test covers sample scheduling, request validation and the
// error taxonomy of the model package.
package model_test

import (
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSampleSeconds(t *testing.T) {
	tests := []struct {
		name           string
		total          float64
		samples        int
		sampleDuration float64
		want           model.SampleSchedule
	}{
		{name: "hundred second video", total: 100, samples: 4, sampleDuration: 2, want: model.SampleSchedule{0, 25, 50, 75}},
		{name: "even spacing", total: 10, samples: 4, sampleDuration: 2, want: model.SampleSchedule{0, 2.5, 5, 7.5}},
		{name: "spacing equals duration", total: 10, samples: 5, sampleDuration: 2, want: model.SampleSchedule{0, 2, 4, 6, 8}},
		{name: "single sample", total: 7, samples: 1, sampleDuration: 5, want: model.SampleSchedule{0}},
		{name: "single sample full length", total: 3, samples: 1, sampleDuration: 3, want: model.SampleSchedule{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.CalculateSampleSeconds(tt.total, tt.samples, tt.sampleDuration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, tt.samples)
		})
	}
}

func TestCalculateSampleSecondsRejectsOverlap(t *testing.T) {
	_, err := model.CalculateSampleSeconds(10, 6, 2)
	require.Error(t, err)

	var se *model.ScheduleError
	require.True(t, errors.As(err, &se))
	assert.InDelta(t, 10.0/6.0, se.MaxSampleDuration, 1e-12)
	assert.Equal(t, "sample_duration should be shorter than: 1.6666666666666667", err.Error())
	assert.Equal(t, 400, model.StatusCode(err))
}

func TestCalculateSampleSecondsReportsSpacing(t *testing.T) {
	_, err := model.CalculateSampleSeconds(10, 5, 3)
	require.Error(t, err)

	var se *model.ScheduleError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2.0, se.MaxSampleDuration)
	assert.Equal(t, "sample_duration should be shorter than: 2", err.Error())
}

func TestCalculateSampleSecondsSampleLongerThanVideo(t *testing.T) {
	_, err := model.CalculateSampleSeconds(5, 1, 7)
	require.Error(t, err)
	assert.Equal(t, "sample_duration should be shorter than: 5", err.Error())
}

func TestCalculateSampleSecondsFitsWithinVideo(t *testing.T) {
	total, sampleDuration := 93.4, 3.0
	got, err := model.CalculateSampleSeconds(total, 7, sampleDuration)
	require.NoError(t, err)
	for i, start := range got {
		assert.LessOrEqual(t, start+sampleDuration, total+1e-9)
		if i > 0 {
			assert.GreaterOrEqual(t, start, got[i-1])
		}
	}
}
