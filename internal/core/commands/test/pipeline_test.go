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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	test "github.com/jaycherian/gcp-go-video-preview/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestContext(req *model.PreviewRequest) cor.Context {
	chCtx := cor.NewBaseContextWith(context.Background())
	chCtx.Add(commands.RequestKey, req)
	return chCtx
}

func stageOf(t *testing.T, err error) model.Stage {
	t.Helper()
	var se *model.StageError
	require.True(t, errors.As(err, &se), "expected a stage error, got %v", err)
	return se.Stage
}

func TestPreviewRequestParser(t *testing.T) {
	cmd := commands.NewPreviewRequestParser("preview-request-parser", model.RequestDefaults("output"))

	chCtx := cor.NewBaseContextWith(context.Background())
	chCtx.Add(cor.CtxIn, []byte(`{"url":"https://example.com/a.mp4","sample_duration":1}`))
	cmd.Execute(chCtx)
	require.NoError(t, chCtx.FirstError())
	assert.Equal(t, "https://example.com/a.mp4", chCtx.Get(commands.RequestKey).(*model.PreviewRequest).URL)

	chCtx = cor.NewBaseContextWith(context.Background())
	chCtx.Add(cor.CtxIn, `{"sample_duration":1}`)
	cmd.Execute(chCtx)
	assert.EqualError(t, chCtx.FirstError(), "url is required")

	chCtx = cor.NewBaseContextWith(context.Background())
	chCtx.Add(cor.CtxIn, 42)
	cmd.Execute(chCtx)
	assert.Equal(t, 400, model.StatusCode(chCtx.FirstError()))
}

func TestMediaProbe(t *testing.T) {
	prober := &test.FakeProber{Default: &commands.ProbeResult{Duration: 20}}
	cmd := commands.NewMediaProbe("media-probe", prober)

	chCtx := newRequestContext(&model.PreviewRequest{URL: "https://example.com/a.mp4", Samples: 2, SampleDuration: 1})
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)
	require.NoError(t, chCtx.FirstError())
	assert.Equal(t, 20.0, chCtx.Get(commands.DurationKey))
	assert.Equal(t, []string{"https://example.com/a.mp4"}, prober.Calls)

	explicit := newRequestContext(&model.PreviewRequest{URL: "u", Samples: 1, SampleDuration: 1, SampleSeconds: model.SampleSchedule{3}})
	assert.False(t, cmd.IsExecutable(explicit))

	prober.Err = errors.New("moov atom not found")
	chCtx = newRequestContext(&model.PreviewRequest{URL: "u", Samples: 1, SampleDuration: 1})
	cmd.Execute(chCtx)
	assert.Equal(t, model.StageProbe, stageOf(t, chCtx.FirstError()))
	assert.Equal(t, "Failed to get video info", model.Message(chCtx.FirstError()))
}

func TestSampleScheduler(t *testing.T) {
	cmd := commands.NewSampleScheduler("sample-scheduler")

	chCtx := newRequestContext(&model.PreviewRequest{URL: "u", Samples: 4, SampleDuration: 2})
	chCtx.Add(commands.DurationKey, 10.0)
	cmd.Execute(chCtx)
	require.NoError(t, chCtx.FirstError())
	assert.Equal(t, model.SampleSchedule{0, 2.5, 5, 7.5}, chCtx.Get(commands.ScheduleKey))

	explicit := model.SampleSchedule{30, 5, 12}
	chCtx = newRequestContext(&model.PreviewRequest{URL: "u", Samples: 1, SampleDuration: 100, SampleSeconds: explicit})
	cmd.Execute(chCtx)
	require.NoError(t, chCtx.FirstError())
	assert.Equal(t, explicit, chCtx.Get(commands.ScheduleKey))

	chCtx = newRequestContext(&model.PreviewRequest{URL: "u", Samples: 4, SampleDuration: 3})
	chCtx.Add(commands.DurationKey, 10.0)
	cmd.Execute(chCtx)
	assert.EqualError(t, chCtx.FirstError(), "sample_duration should be shorter than: 2.5")
	assert.Equal(t, 400, model.StatusCode(chCtx.FirstError()))

	chCtx = newRequestContext(&model.PreviewRequest{URL: "u", Samples: 1, SampleDuration: 1})
	cmd.Execute(chCtx)
	assert.Error(t, chCtx.FirstError())
}

func TestPreviewGenerator(t *testing.T) {
	dir := t.TempDir()
	encoder := &test.FakeEncoder{}
	cmd := commands.NewPreviewGenerator("preview-generator", encoder, dir)

	req := &model.PreviewRequest{URL: "https://example.com/a.mp4", Samples: 2, SampleDuration: 1.5, Scale: &model.Scale{Width: 320, Height: 240}, Format: "mkv"}
	chCtx := newRequestContext(req)
	chCtx.Add(commands.ScheduleKey, model.SampleSchedule{0, 4})
	cmd.Execute(chCtx)
	require.NoError(t, chCtx.FirstError())

	artifact := chCtx.Get(commands.ArtifactKey).(string)
	assert.Equal(t, dir, filepath.Dir(artifact))
	assert.True(t, strings.HasPrefix(filepath.Base(artifact), commands.TempFilePrefix))
	assert.Equal(t, ".mkv", filepath.Ext(artifact))
	assert.FileExists(t, artifact)
	assert.Equal(t, []string{artifact}, chCtx.GetTempFiles())

	require.Len(t, encoder.Jobs, 1)
	job := encoder.Jobs[0]
	assert.Equal(t, "https://example.com/a.mp4", job.Source)
	assert.Equal(t, model.SampleSchedule{0, 4}, job.Schedule)
	assert.Equal(t, 1.5, job.SampleDuration)
	assert.Equal(t, "matroska", job.Muxer)
	assert.Equal(t, req.Scale, job.Scale)

	chCtx.Close()
	assert.NoFileExists(t, artifact)
}

func TestPreviewGeneratorFailureKeepsTempFileRegistered(t *testing.T) {
	dir := t.TempDir()
	cmd := commands.NewPreviewGenerator("preview-generator", &test.FakeEncoder{Err: errors.New("exit status 1")}, dir)

	chCtx := newRequestContext(&model.PreviewRequest{URL: "u", Samples: 1, SampleDuration: 1, Format: "mp4"})
	chCtx.Add(commands.ScheduleKey, model.SampleSchedule{0})
	cmd.Execute(chCtx)

	assert.Equal(t, model.StageGeneration, stageOf(t, chCtx.FirstError()))
	require.Len(t, chCtx.GetTempFiles(), 1)
	chCtx.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestContentType(t *testing.T) {
	dir := t.TempDir()
	mp4 := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(mp4, test.MP4Header, 0o600))
	assert.Equal(t, "video/mp4", commands.ContentType(mp4, "webm"))

	unknown := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(unknown, []byte("plain text, not media"), 0o600))
	assert.Equal(t, "video/webm", commands.ContentType(unknown, "webm"))
	assert.Equal(t, "application/octet-stream", commands.ContentType(unknown, "flv"))
}

func writeArtifact(t *testing.T, chCtx cor.Context) string {
	t.Helper()
	artifact := filepath.Join(t.TempDir(), "video-preview-1.mp4")
	require.NoError(t, os.WriteFile(artifact, test.MP4Header, 0o600))
	chCtx.Add(commands.ArtifactKey, artifact)
	return artifact
}

func TestPreviewUpload(t *testing.T) {
	store := &test.FakeStore{}
	cmd := commands.NewPreviewUpload("preview-upload", store, "previews")

	chCtx := newRequestContext(&model.PreviewRequest{URL: "https://example.com/v/clip.mov", Format: "mp4", OutputPrefix: "output"})
	writeArtifact(t, chCtx)
	cmd.Execute(chCtx)
	require.NoError(t, chCtx.FirstError())

	require.Len(t, store.Uploads, 1)
	up := store.Uploads[0]
	assert.Equal(t, "previews", up.Bucket)
	assert.Equal(t, "output/clip.mp4", up.Key)
	assert.Equal(t, "video/mp4", up.ContentType)
	assert.Equal(t, test.MP4Header, up.Body)
	assert.Equal(t, "https://previews.ams3.digitaloceanspaces.com/output/clip.mp4", chCtx.Get(commands.OutputURLKey))
}

func TestPreviewUploadFallsBackToSourceBucket(t *testing.T) {
	store := &test.FakeStore{}
	cmd := commands.NewPreviewUpload("preview-upload", store, "")

	chCtx := newRequestContext(&model.PreviewRequest{URL: "https://uploads.signed.example/clip.mp4", Format: "mp4", OutputPrefix: "output"})
	chCtx.Add(cloud.StorageObjectKey, &cloud.StorageObject{Bucket: "uploads", Name: "clip.mp4"})
	writeArtifact(t, chCtx)
	cmd.Execute(chCtx)
	require.NoError(t, chCtx.FirstError())
	require.Len(t, store.Uploads, 1)
	assert.Equal(t, "uploads", store.Uploads[0].Bucket)

	chCtx = newRequestContext(&model.PreviewRequest{URL: "u", Format: "mp4"})
	writeArtifact(t, chCtx)
	cmd.Execute(chCtx)
	assert.Equal(t, model.StageUpload, stageOf(t, chCtx.FirstError()))
}

func TestPreviewUploadFailure(t *testing.T) {
	store := &test.FakeStore{UploadErr: errors.New("access denied")}
	cmd := commands.NewPreviewUpload("preview-upload", store, "previews")

	chCtx := newRequestContext(&model.PreviewRequest{URL: "u", Format: "mp4"})
	writeArtifact(t, chCtx)
	cmd.Execute(chCtx)

	assert.Equal(t, model.StageUpload, stageOf(t, chCtx.FirstError()))
	assert.Equal(t, "Failed to upload video preview", model.Message(chCtx.FirstError()))
	assert.Nil(t, chCtx.Get(commands.OutputURLKey))
}

func TestPreviewInspect(t *testing.T) {
	chCtx := cor.NewBaseContextWith(context.Background())
	artifact := writeArtifact(t, chCtx)
	chCtx.Add(commands.OutputURLKey, "https://b.host/output/a.mp4")

	prober := &test.FakeProber{Sources: map[string]*commands.ProbeResult{artifact: {Duration: 8, Size: 0}}}
	commands.NewPreviewInspect("preview-inspect", prober).Execute(chCtx)
	require.NoError(t, chCtx.FirstError())

	result := chCtx.Get(commands.ResultKey).(*model.PreviewResult)
	assert.Equal(t, "https://b.host/output/a.mp4", result.URL)
	assert.Equal(t, 8.0, result.Duration)
	assert.Equal(t, int64(len(test.MP4Header)), result.Size)

	chCtx = cor.NewBaseContextWith(context.Background())
	writeArtifact(t, chCtx)
	chCtx.Add(commands.OutputURLKey, "https://b.host/output/a.mp4")
	commands.NewPreviewInspect("preview-inspect", &test.FakeProber{Err: errors.New("invalid data")}).Execute(chCtx)
	assert.Equal(t, model.StageProbe, stageOf(t, chCtx.FirstError()))
}
