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

import (
	"log/slog"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// StorageEventToRequest builds the preview request for an uploaded object.
// The source is handed to ffmpeg as a presigned URL so no download step is
// needed. Objects already under the output prefix are previews written by
// this function and are skipped.
type StorageEventToRequest struct {
	cor.BaseCommand
	store    cloud.ObjectStore
	defaults model.Defaults
	ttl      time.Duration
}

// NewStorageEventToRequest reads the *cloud.StorageObject stored under
// cloud.StorageObjectKey.
//
// Inputs:
//   - name: The command name.
//   - store: Signs the source object.
//   - defaults: Sample settings applied to every triggered preview.
//   - ttl: Lifetime of the presigned source URL.
//
// Outputs:
//   - *StorageEventToRequest: The command.
func NewStorageEventToRequest(name string, store cloud.ObjectStore, defaults model.Defaults, ttl time.Duration) *StorageEventToRequest {
	out := &StorageEventToRequest{
		BaseCommand: *cor.NewBaseCommand(name),
		store:       store,
		defaults:    defaults,
		ttl:         ttl,
	}
	out.InputParamName = cloud.StorageObjectKey
	return out
}

// IsOutput reports whether key lies under the output prefix.
func IsOutput(prefix string, key string) bool {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return false
	}
	return strings.HasPrefix(strings.TrimPrefix(key, "/"), prefix+"/")
}

// Execute turns the storage object into a preview request over a presigned
// URL. Objects under the output prefix are marked skipped instead, leaving
// the rest of the chain idle.
func (c *StorageEventToRequest) Execute(context cor.Context) {
	obj := context.Get(c.GetInputParam()).(*cloud.StorageObject)

	if IsOutput(c.defaults.OutputPrefix, obj.Name) {
		slog.InfoContext(context.GetContext(), "skipping generated preview", "bucket", obj.Bucket, "name", obj.Name)
		context.Add(SkippedKey, "object is under the output prefix")
		return
	}

	signed, err := c.store.SignedURL(context.GetContext(), obj.Bucket, obj.Name, c.ttl)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewStageError(model.StageUpload, err))
		return
	}

	raw := model.RawPreviewRequest{URL: &signed}
	req, err := raw.Validate(c.defaults)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(RequestKey, req)
	context.Add(c.GetOutputParam(), req)
}
