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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface used by the preview
// workflows. This file wraps the ffmpeg and ffprobe binaries.
//
// ffprobe is asked for the container duration and size only:
//
//	ffprobe -v error -show_entries format=duration,size -of json <source>
//
// ffmpeg receives one filter graph that trims every sample out of the first
// video stream, resets its timestamps, concatenates the samples in schedule
// order and optionally fits the result into the requested box:
//
//	[0:v]trim=start=0:duration=2,setpts=PTS-STARTPTS[s0];
//	[0:v]trim=start=5:duration=2,setpts=PTS-STARTPTS[s1];
//	[s0][s1]concat=n=2:v=1:a=0[cat];
//	[cat]scale=w='min(320,iw)':h='min(240,ih)':force_original_aspect_ratio=decrease[out]
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// ProbeResult is the subset of ffprobe's format section the function uses.
type ProbeResult struct {
	Duration float64
	Size     int64
}

// MediaProber reads the duration and size of a media file or URL.
type MediaProber interface {
	Probe(ctx context.Context, source string) (*ProbeResult, error)
}

// EncodeJob describes one preview encode.
type EncodeJob struct {
	Source         string
	Schedule       model.SampleSchedule
	SampleDuration float64
	Scale          *model.Scale
	Muxer          string
	Output         string
}

// MediaEncoder renders an EncodeJob to its output file.
type MediaEncoder interface {
	Encode(ctx context.Context, job EncodeJob) error
}

// FFmpeg runs the ffmpeg and ffprobe executables.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	// Debug streams ffmpeg's own output to Stderr. Otherwise ffmpeg runs with
	// "-loglevel error" and its output is attached to the returned error.
	Debug  bool
	Stderr io.Writer
}

// NewFFmpeg returns a runner for the given binaries.
func NewFFmpeg(ffmpegPath string, ffprobePath string, debug bool) *FFmpeg {
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath, Debug: debug, Stderr: os.Stderr}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// Probe runs ffprobe against source, a local path or URL, and parses its
// JSON output.
func (f *FFmpeg) Probe(ctx context.Context, source string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration,size",
		"-of", "json",
		source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseProbeOutput(stdout.Bytes())
}

// ParseProbeOutput decodes ffprobe's JSON. A missing size is reported as 0,
// a missing duration is an error.
func ParseProbeOutput(b []byte) (*ProbeResult, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if out.Format.Duration == "" || out.Format.Duration == "N/A" {
		return nil, fmt.Errorf("ffprobe reported no duration")
	}
	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", out.Format.Duration, err)
	}
	result := &ProbeResult{Duration: duration}
	if out.Format.Size != "" && out.Format.Size != "N/A" {
		size, err := strconv.ParseInt(out.Format.Size, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", out.Format.Size, err)
		}
		result.Size = size
	}
	return result, nil
}

// Encode runs ffmpeg for job. In debug mode its output is streamed to the
// process stderr, otherwise it is kept and returned inside the error.
func (f *FFmpeg) Encode(ctx context.Context, job EncodeJob) error {
	cmd := exec.CommandContext(ctx, f.FFmpegPath, EncodeArgs(job, f.Debug)...)
	var captured bytes.Buffer
	if f.Debug && f.Stderr != nil {
		cmd.Stdout = f.Stderr
		cmd.Stderr = f.Stderr
	} else {
		cmd.Stderr = &captured
	}
	if err := cmd.Run(); err != nil {
		if captured.Len() > 0 {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(captured.String()))
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// EncodeArgs builds the ffmpeg argument list for job.
func EncodeArgs(job EncodeJob, debug bool) []string {
	graph, label := FilterGraph(job.Schedule, job.SampleDuration, job.Scale)
	args := []string{"-hide_banner", "-y"}
	if !debug {
		args = append(args, "-loglevel", "error")
	}
	return append(args,
		"-i", job.Source,
		"-filter_complex", graph,
		"-map", label,
		"-f", job.Muxer,
		job.Output)
}

// FilterGraph returns the filter_complex graph for a schedule and the label
// of its final output pad.
func FilterGraph(schedule model.SampleSchedule, sampleDuration float64, scale *model.Scale) (string, string) {
	var b strings.Builder
	d := formatSeconds(sampleDuration)
	for i, start := range schedule {
		fmt.Fprintf(&b, "[0:v]trim=start=%s:duration=%s,setpts=PTS-STARTPTS[s%d];", formatSeconds(start), d, i)
	}
	for i := range schedule {
		fmt.Fprintf(&b, "[s%d]", i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=0[cat]", len(schedule))
	if scale == nil {
		return b.String(), "[cat]"
	}
	fmt.Fprintf(&b, ";[cat]scale=w='min(%d,iw)':h='min(%d,ih)':force_original_aspect_ratio=decrease[out]", scale.Width, scale.Height)
	return b.String(), "[out]"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
