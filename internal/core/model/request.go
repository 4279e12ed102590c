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

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawPreviewRequest is the JSON body accepted by the request-driven entry
// points. Pointers distinguish an absent field from a zero value.
type RawPreviewRequest struct {
	URL            *string   `json:"url"`
	Samples        *float64  `json:"samples"`
	SampleDuration *float64  `json:"sample_duration"`
	SampleSeconds  []float64 `json:"sample_seconds"`
	Scale          *string   `json:"scale"`
	Format         *string   `json:"format"`
}

// ParsePreviewRequest decodes and validates a JSON request body.
func ParsePreviewRequest(body []byte, defaults Defaults) (*PreviewRequest, error) {
	var raw RawPreviewRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, InvalidField("body", "must be a JSON object: "+err.Error())
	}
	return raw.Validate(defaults)
}

// Validate applies the request rules in a fixed order and returns the first
// failure, so the reported field is deterministic.
func (r *RawPreviewRequest) Validate(defaults Defaults) (*PreviewRequest, error) {
	if r.URL == nil || strings.TrimSpace(*r.URL) == "" {
		return nil, MissingField("url")
	}

	sampleDuration := defaults.SampleDuration
	if r.SampleDuration != nil {
		sampleDuration = *r.SampleDuration
	} else if defaults.SampleDuration == 0 {
		return nil, MissingField("sample_duration")
	}
	if sampleDuration <= 0 {
		return nil, InvalidField("sample_duration", "must be greater than 0")
	}

	samples := float64(defaults.Samples)
	if r.Samples != nil {
		samples = *r.Samples
	}
	if samples <= 0 {
		return nil, InvalidField("samples", "must be greater than 0")
	}
	if samples > MaxSamples {
		return nil, InvalidField("samples", "must be at most "+strconv.Itoa(MaxSamples))
	}
	if samples != math.Trunc(samples) {
		return nil, InvalidField("samples", "must be an integer")
	}
	if len(r.SampleSeconds) > MaxSamples {
		return nil, InvalidField("sample_seconds", "must hold at most "+strconv.Itoa(MaxSamples)+" offsets")
	}

	out := &PreviewRequest{
		URL:            strings.TrimSpace(*r.URL),
		Samples:        int(samples),
		SampleDuration: sampleDuration,
		SampleSeconds:  r.SampleSeconds,
		OutputPrefix:   defaults.OutputPrefix,
	}

	scale := defaults.Scale
	if r.Scale != nil {
		scale = *r.Scale
	}
	if strings.TrimSpace(scale) != "" {
		s, err := ParseScale(scale)
		if err != nil {
			return nil, InvalidField("scale", err.Error())
		}
		out.Scale = s
	}

	format := defaults.Format
	if r.Format != nil && strings.TrimSpace(*r.Format) != "" {
		format = *r.Format
	}
	if format == "" {
		format = DefaultFormat
	}
	f, ok := LookupFormat(format)
	if !ok {
		return nil, InvalidField("format", "must be one of "+strings.Join(SupportedFormats(), ", "))
	}
	out.Format = f.Format

	return out, nil
}
