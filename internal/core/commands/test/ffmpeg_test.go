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

// Package commands_test covers the ffmpeg argument builder and each preview
// command against in-memory fakes.
package commands_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterGraphWithoutScale(t *testing.T) {
	graph, label := commands.FilterGraph(model.SampleSchedule{0, 2.5}, 2, nil)

	assert.Equal(t,
		"[0:v]trim=start=0:duration=2,setpts=PTS-STARTPTS[s0];"+
			"[0:v]trim=start=2.5:duration=2,setpts=PTS-STARTPTS[s1];"+
			"[s0][s1]concat=n=2:v=1:a=0[cat]",
		graph)
	assert.Equal(t, "[cat]", label)
}

func TestFilterGraphWithScale(t *testing.T) {
	graph, label := commands.FilterGraph(model.SampleSchedule{12.75}, 1.5, &model.Scale{Width: 320, Height: 240})

	assert.Equal(t,
		"[0:v]trim=start=12.75:duration=1.5,setpts=PTS-STARTPTS[s0];"+
			"[s0]concat=n=1:v=1:a=0[cat];"+
			"[cat]scale=w='min(320,iw)':h='min(240,ih)':force_original_aspect_ratio=decrease[out]",
		graph)
	assert.Equal(t, "[out]", label)
}

func TestEncodeArgs(t *testing.T) {
	job := commands.EncodeJob{
		Source:         "https://example.com/in.mp4",
		Schedule:       model.SampleSchedule{0},
		SampleDuration: 2,
		Muxer:          "matroska",
		Output:         "/tmp/video-preview-1.mkv",
	}
	graph, _ := commands.FilterGraph(job.Schedule, job.SampleDuration, nil)

	assert.Equal(t, []string{
		"-hide_banner", "-y", "-loglevel", "error",
		"-i", "https://example.com/in.mp4",
		"-filter_complex", graph,
		"-map", "[cat]",
		"-f", "matroska",
		"/tmp/video-preview-1.mkv",
	}, commands.EncodeArgs(job, false))

	debugArgs := commands.EncodeArgs(job, true)
	assert.NotContains(t, debugArgs, "-loglevel")
	assert.Equal(t, "-i", debugArgs[2])
}

func TestParseProbeOutput(t *testing.T) {
	probe, err := commands.ParseProbeOutput([]byte(`{"format":{"duration":"12.345000","size":"1048576"}}`))
	require.NoError(t, err)
	assert.Equal(t, 12.345, probe.Duration)
	assert.Equal(t, int64(1048576), probe.Size)

	probe, err = commands.ParseProbeOutput([]byte(`{"format":{"duration":"3.5"}}`))
	require.NoError(t, err)
	assert.Equal(t, 3.5, probe.Duration)
	assert.Zero(t, probe.Size)

	for _, in := range []string{
		`not json`,
		`{"format":{}}`,
		`{"format":{"duration":"N/A","size":"10"}}`,
		`{"format":{"duration":"abc"}}`,
		`{"format":{"duration":"1.0","size":"big"}}`,
	} {
		_, err := commands.ParseProbeOutput([]byte(in))
		assert.Error(t, err, in)
	}
}
