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
	"fmt"
	"log/slog"
	"os"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PreviewUpload stores the rendered preview with public-read visibility and
// records its public URL. With no bucket configured the preview goes back to
// the bucket of the triggering object.
type PreviewUpload struct {
	cor.BaseCommand
	store  cloud.ObjectStore
	bucket string
}

// NewPreviewUpload creates the upload command.
//
// Inputs:
//   - name: The command name.
//   - store: Destination object store.
//   - bucket: Destination bucket. When empty the bucket of the triggering
//     object is used.
//
// Outputs:
//   - *PreviewUpload: The command, reading the artifact path from ArtifactKey.
func NewPreviewUpload(name string, store cloud.ObjectStore, bucket string) *PreviewUpload {
	out := &PreviewUpload{BaseCommand: *cor.NewBaseCommand(name), store: store, bucket: bucket}
	out.InputParamName = ArtifactKey
	return out
}

// ContentType sniffs the file header and falls back to the type registered
// for format.
func ContentType(path string, format string) string {
	if kind, err := filetype.MatchFile(path); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if f, ok := model.LookupFormat(format); ok {
		return f.ContentType
	}
	return "application/octet-stream"
}

// Execute uploads the artifact under the request's output key with
// public-read visibility and stores its public URL under OutputURLKey.
func (c *PreviewUpload) Execute(context cor.Context) {
	artifact := context.Get(c.GetInputParam()).(string)
	req, ok := context.Get(RequestKey).(*model.PreviewRequest)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewStageError(model.StageUpload, fmt.Errorf("no preview request in context")))
		return
	}

	bucket := c.bucket
	if bucket == "" {
		if obj, ok := context.Get(cloud.StorageObjectKey).(*cloud.StorageObject); ok {
			bucket = obj.Bucket
		}
	}
	if bucket == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewStageError(model.StageUpload, fmt.Errorf("no destination bucket")))
		return
	}

	key := req.OutputKey()
	contentType := ContentType(artifact, req.Format)
	trace.SpanFromContext(context.GetContext()).SetAttributes(
		attribute.String("preview.bucket", bucket),
		attribute.String("preview.key", key),
		attribute.String("preview.content_type", contentType))

	file, err := os.Open(artifact)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewStageError(model.StageUpload, err))
		return
	}
	defer file.Close()

	if err := c.store.Upload(context.GetContext(), bucket, key, contentType, file); err != nil {
		slog.ErrorContext(context.GetContext(), "failed to upload preview", "bucket", bucket, "key", key, "error", err)
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.NewStageError(model.StageUpload, err))
		return
	}

	url := c.store.PublicURL(bucket, key)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(OutputURLKey, url)
	context.Add(c.GetOutputParam(), url)
}
