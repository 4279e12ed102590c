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

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	test "github.com/jaycherian/gcp-go-video-preview/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	zassert "github.com/zeebo/assert"
)

var triggerDefaults = model.Defaults{Samples: 4, SampleDuration: 2, Format: "mp4", OutputPrefix: "output"}

func TestStorageObjectFromS3Record(t *testing.T) {
	obj, err := commands.StorageObjectFromS3Record(test.GetTestS3Record("uploads", "movies/My+Trailer%282024%29.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "uploads", obj.Bucket)
	assert.Equal(t, "movies/My Trailer(2024).mp4", obj.Name)

	_, err = commands.StorageObjectFromS3Record(test.GetTestS3Record("", "a.mp4"))
	assert.Equal(t, 400, model.StatusCode(err))

	_, err = commands.StorageObjectFromS3Record(test.GetTestS3Record("uploads", "bad%zzkey"))
	assert.Equal(t, 400, model.StatusCode(err))
}

func TestIsOutput(t *testing.T) {
	zassert.Equal(t, commands.IsOutput("output", "output/clip.mp4"), true)
	zassert.Equal(t, commands.IsOutput("/output/", "/output/clip.mp4"), true)
	zassert.Equal(t, commands.IsOutput("previews/small", "previews/small/a.gif"), true)
	zassert.Equal(t, commands.IsOutput("output", "outputs/clip.mp4"), false)
	zassert.Equal(t, commands.IsOutput("output", "clip.mp4"), false)
	zassert.Equal(t, commands.IsOutput("", "output/clip.mp4"), false)
}

func TestMediaTriggerToStorageObject(t *testing.T) {
	cmd := commands.NewMediaTriggerToStorageObject("gcs-topic-listener")

	chCtx := cor.NewBaseContextWith(context.Background())
	chCtx.Add(cor.CtxIn, test.GetTestUploadMessageText())
	cmd.Execute(chCtx)

	require.NoError(t, chCtx.FirstError())
	obj := chCtx.Get(cloud.StorageObjectKey).(*cloud.StorageObject)
	assert.Equal(t, &cloud.StorageObject{Bucket: "media_uploads", Name: "test-trailer-001.mp4", MIMEType: "video/mp4"}, obj)

	chCtx = cor.NewBaseContextWith(context.Background())
	chCtx.Add(cor.CtxIn, `{"kind":"storage#object"}`)
	cmd.Execute(chCtx)
	assert.Equal(t, 400, model.StatusCode(chCtx.FirstError()))
}

func TestStorageEventToRequest(t *testing.T) {
	store := &test.FakeStore{}
	cmd := commands.NewStorageEventToRequest("storage-event-to-request", store, triggerDefaults, time.Hour)

	chCtx := cor.NewBaseContextWith(context.Background())
	chCtx.Add(cloud.StorageObjectKey, &cloud.StorageObject{Bucket: "uploads", Name: "in/clip.mov"})
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)

	require.NoError(t, chCtx.FirstError())
	req := chCtx.Get(commands.RequestKey).(*model.PreviewRequest)
	assert.Equal(t, "https://uploads.signed.example/in/clip.mov?X-Amz-Expires=3600", req.URL)
	assert.Equal(t, 4, req.Samples)
	assert.Equal(t, 2.0, req.SampleDuration)
	assert.Equal(t, "output/clip.mp4", req.OutputKey())
	assert.Equal(t, []string{"uploads/in/clip.mov"}, store.Signed)
}

func TestStorageEventToRequestSkipsOutput(t *testing.T) {
	store := &test.FakeStore{}
	cmd := commands.NewStorageEventToRequest("storage-event-to-request", store, triggerDefaults, time.Hour)

	chCtx := cor.NewBaseContextWith(context.Background())
	chCtx.Add(cloud.StorageObjectKey, &cloud.StorageObject{Bucket: "uploads", Name: "output/clip.mp4"})
	cmd.Execute(chCtx)

	assert.NoError(t, chCtx.FirstError())
	assert.Nil(t, chCtx.Get(commands.RequestKey))
	assert.NotNil(t, chCtx.Get(commands.SkippedKey))
	assert.Empty(t, store.Signed)
}

func TestStorageEventToRequestSignFailure(t *testing.T) {
	store := &test.FakeStore{SignErr: errors.New("no credentials")}
	cmd := commands.NewStorageEventToRequest("storage-event-to-request", store, triggerDefaults, time.Hour)

	chCtx := cor.NewBaseContextWith(context.Background())
	chCtx.Add(cloud.StorageObjectKey, &cloud.StorageObject{Bucket: "uploads", Name: "clip.mp4"})
	cmd.Execute(chCtx)

	var se *model.StageError
	require.True(t, errors.As(chCtx.FirstError(), &se))
	assert.Equal(t, model.StageUpload, se.Stage)
}
