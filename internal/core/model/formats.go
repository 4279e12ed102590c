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
	"sort"
	"strings"
)

// MediaFormatFilter maps a user facing container name to the ffmpeg muxer
// that writes it and the content type the resulting object is stored with.
type MediaFormatFilter struct {
	Format      string // e.g., "mp4", "mkv"
	Muxer       string // e.g., "mp4", "matroska"
	ContentType string // e.g., "video/mp4"
}

// ContainerFormats lists the output formats a request may ask for.
var ContainerFormats = map[string]MediaFormatFilter{
	"mp4":  {Format: "mp4", Muxer: "mp4", ContentType: "video/mp4"},
	"webm": {Format: "webm", Muxer: "webm", ContentType: "video/webm"},
	"mkv":  {Format: "mkv", Muxer: "matroska", ContentType: "video/x-matroska"},
	"mov":  {Format: "mov", Muxer: "mov", ContentType: "video/quicktime"},
	"gif":  {Format: "gif", Muxer: "gif", ContentType: "image/gif"},
	"avi":  {Format: "avi", Muxer: "avi", ContentType: "video/x-msvideo"},
	"ts":   {Format: "ts", Muxer: "mpegts", ContentType: "video/mp2t"},
}

// LookupFormat returns the filter for a format name, case-insensitively.
func LookupFormat(name string) (MediaFormatFilter, bool) {
	f, ok := ContainerFormats[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// SupportedFormats returns the sorted list of accepted format names.
func SupportedFormats() []string {
	out := make([]string, 0, len(ContainerFormats))
	for k := range ContainerFormats {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
