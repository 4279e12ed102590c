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

package model_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	upstream := errors.New("exit status 1")

	assert.Equal(t, 200, model.StatusCode(nil))
	assert.Equal(t, 400, model.StatusCode(model.MissingField("url")))
	assert.Equal(t, 400, model.StatusCode(model.InvalidField("samples", "must be greater than 0")))
	assert.Equal(t, 400, model.StatusCode(&model.ScheduleError{MaxSampleDuration: 1}))
	assert.Equal(t, 400, model.StatusCode(fmt.Errorf("wrapped: %w", model.MissingField("url"))))
	assert.Equal(t, 500, model.StatusCode(model.NewStageError(model.StageProbe, upstream)))
	assert.Equal(t, 500, model.StatusCode(model.NewStageError(model.StageGeneration, upstream)))
	assert.Equal(t, 500, model.StatusCode(model.NewStageError(model.StageUpload, upstream)))
	assert.Equal(t, 500, model.StatusCode(upstream))
}

func TestMessageHidesUpstreamDetail(t *testing.T) {
	upstream := errors.New("ffmpeg: moov atom not found")

	assert.Equal(t, "Failed to get video info", model.Message(model.NewStageError(model.StageProbe, upstream)))
	assert.Equal(t, "Failed to generate video preview", model.Message(model.NewStageError(model.StageGeneration, upstream)))
	assert.Equal(t, "Failed to upload video preview", model.Message(model.NewStageError(model.StageUpload, upstream)))
	assert.Equal(t, "Internal error", model.Message(upstream))
	assert.Equal(t, "", model.Message(nil))
}

func TestStageErrorUnwrap(t *testing.T) {
	upstream := errors.New("access denied")
	err := model.NewStageError(model.StageUpload, upstream)

	assert.True(t, errors.Is(err, upstream))
	assert.Contains(t, err.Error(), "access denied")
}

func TestErrorResponseShape(t *testing.T) {
	b, err := json.Marshal(model.NewErrorResponse(model.MissingField("url")))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"statusCode":400,"body":"url is required"}`, string(b))

	b, err = json.Marshal(model.PreviewResult{URL: "https://b.host/output/a.mp4", Duration: 8.04, Size: 1024})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://b.host/output/a.mp4","duration":8.04,"size":1024}`, string(b))
}
