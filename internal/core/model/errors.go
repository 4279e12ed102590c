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

// Package model - error taxonomy.
//
// Client caused failures (HTTP 400):
//   - ValidationError with KindMissingField or KindInvalidField.
//   - ScheduleError, raised when the requested samples cannot fit the video.
//
// Upstream caused failures (HTTP 500):
//   - StageError for the probe, generation and upload stages.
package model

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ValidationKind distinguishes a missing field from a present but invalid one.
type ValidationKind string

const (
	KindMissingField ValidationKind = "MissingField"
	KindInvalidField ValidationKind = "InvalidField"
)

// ValidationError identifies the request field that failed validation and why.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Reason string
}

// MissingField builds the error for a required field that was not supplied.
func MissingField(field string) *ValidationError {
	return &ValidationError{Kind: KindMissingField, Field: field, Reason: "is required"}
}

// InvalidField builds the error for a field whose value was rejected.
func InvalidField(field string, reason string) *ValidationError {
	return &ValidationError{Kind: KindInvalidField, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ScheduleError is the InvalidConfiguration failure of the sample-time
// calculation: the samples would overlap. MaxSampleDuration is the spacing
// between samples, the longest sample duration that would have been accepted.
type ScheduleError struct {
	MaxSampleDuration float64
}

func (e *ScheduleError) Error() string {
	return "sample_duration should be shorter than: " + strconv.FormatFloat(e.MaxSampleDuration, 'f', -1, 64)
}

// Stage names a step of the pipeline that depends on an external system.
type Stage string

const (
	StageProbe      Stage = "ProbeFailure"
	StageGeneration Stage = "GenerationFailure"
	StageUpload     Stage = "UploadFailure"
)

var stageMessages = map[Stage]string{
	StageProbe:      "Failed to get video info",
	StageGeneration: "Failed to generate video preview",
	StageUpload:     "Failed to upload video preview",
}

// StageError wraps the failure of an upstream collaborator (ffprobe, ffmpeg,
// object storage). The caller sees only the stage message, the wrapped error
// is kept for logs.
type StageError struct {
	Stage Stage
	Err   error
}

// NewStageError wraps err as a failure of the given stage.
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return stageMessages[e.Stage]
	}
	return fmt.Sprintf("%s: %v", stageMessages[e.Stage], e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error to the HTTP status reported to the caller.
func StatusCode(err error) int {
	var ve *ValidationError
	var se *ScheduleError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve), errors.As(err, &se):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the human readable text reported to the caller. Upstream
// details are left out; they are logged instead.
func Message(err error) string {
	var ve *ValidationError
	var se *ScheduleError
	var ste *StageError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &ste):
		return stageMessages[ste.Stage]
	default:
		return "Internal error"
	}
}
