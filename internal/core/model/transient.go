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

// Package model defines the data structures that flow through the preview
// workflow. None of them are persisted: a PreviewRequest lives for a single
// invocation, the SampleSchedule is computed from it and handed to the
// generator, and the PreviewResult is returned to the caller.
//
// Structs:
//   - PreviewRequest: A validated request to build a preview clip.
//   - Scale: The bounding box the preview is rescaled into.
//   - PreviewResult: The public location, duration and size of an uploaded preview.
//   - ErrorResponse: The failure envelope returned by every entry point.
//   - Defaults: Values applied when a request omits optional fields.
package model

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Default values applied to request bodies that omit the optional fields.
const (
	DefaultSamples = 1
	DefaultFormat  = "mp4"
)

// MaxSamples bounds the number of samples in one preview, both evenly spaced
// and explicit. Each sample becomes a pair of inputs to the ffmpeg filter
// graph.
const MaxSamples = 1000

// SampleSchedule is the ordered list of start offsets, in seconds, at which
// samples are cut from the source video.
type SampleSchedule []float64

// Scale is the width:height box the preview is fitted into.
type Scale struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String renders the scale in the W:H form accepted by ParseScale.
func (s Scale) String() string {
	return fmt.Sprintf("%d:%d", s.Width, s.Height)
}

// ParseScale parses a "W:H" string. Each side must be a positive integer or
// one of ffmpeg's keep-aspect sentinels (-1, -2); both sides cannot be sentinels.
func ParseScale(in string) (*Scale, error) {
	parts := strings.Split(strings.TrimSpace(in), ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected W:H, got %q", in)
	}
	w, err := parseScaleSide(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid width: %w", err)
	}
	h, err := parseScaleSide(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid height: %w", err)
	}
	if w < 0 && h < 0 {
		return nil, fmt.Errorf("width and height cannot both be negative")
	}
	return &Scale{Width: w, Height: h}, nil
}

func parseScaleSide(in string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil {
		return 0, err
	}
	if v == 0 || v < -2 {
		return 0, fmt.Errorf("%d is out of range", v)
	}
	return v, nil
}

// PreviewRequest is a validated request to build a preview. When SampleSeconds
// is empty the schedule is derived from the probed media duration.
type PreviewRequest struct {
	URL            string         // Source video, any URL ffmpeg can open.
	Samples        int            // Number of samples, always > 0.
	SampleDuration float64        // Length of each sample in seconds, always > 0.
	SampleSeconds  SampleSchedule // Explicit offsets; overrides the computed schedule.
	Scale          *Scale         // Optional bounding box; nil means no rescale.
	Format         string         // Output container, see ContainerFormats.
	OutputPrefix   string         // Object key prefix the preview is stored under.
}

// HasExplicitSchedule reports whether the caller supplied the sample offsets.
func (r *PreviewRequest) HasExplicitSchedule() bool {
	return len(r.SampleSeconds) > 0
}

// OutputKey returns the object key the preview for this request is stored under.
func (r *PreviewRequest) OutputKey() string {
	return OutputKey(r.OutputPrefix, r.URL, r.Format)
}

// OutputKey derives "<prefix>/<basename>.<format>" from a source location.
// Only the path of a URL is considered so presigned query strings do not leak
// into the key. An empty prefix yields the bare file name.
func OutputKey(prefix string, source string, format string) string {
	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == "/" {
		base = "preview"
	}
	return path.Join(prefix, base+"."+format)
}

// PreviewResult is the success payload returned to callers.
type PreviewResult struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
	Size     int64   `json:"size"`
}

// ErrorResponse is the failure payload returned to callers. Every entry point
// uses this shape.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// NewErrorResponse maps an error onto the failure envelope.
func NewErrorResponse(err error) *ErrorResponse {
	return &ErrorResponse{StatusCode: StatusCode(err), Body: Message(err)}
}

// Defaults holds the values used when a request leaves a field out.
type Defaults struct {
	Samples        int
	SampleDuration float64 // Zero means the field is required.
	Scale          string
	Format         string
	OutputPrefix   string
}

// RequestDefaults are the defaults of the JSON request-body entry points.
func RequestDefaults(outputPrefix string) Defaults {
	return Defaults{Samples: DefaultSamples, Format: DefaultFormat, OutputPrefix: outputPrefix}
}
