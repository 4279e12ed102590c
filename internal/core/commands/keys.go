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

package commands

// Context keys shared by the preview commands.
const (
	RequestKey   = "__PREVIEW_REQUEST__"  // *model.PreviewRequest
	DurationKey  = "__MEDIA_DURATION__"   // float64, seconds
	ScheduleKey  = "__SAMPLE_SCHEDULE__"  // model.SampleSchedule
	ArtifactKey  = "__PREVIEW_ARTIFACT__" // string, local file path
	OutputURLKey = "__PREVIEW_URL__"      // string, public URL
	ResultKey    = "__PREVIEW_RESULT__"   // *model.PreviewResult
	SkippedKey   = "__SKIPPED__"          // string, reason the invocation did nothing
)
