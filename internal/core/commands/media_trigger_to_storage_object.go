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
	"encoding/json"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// MediaTriggerToStorageObject parses a Cloud Storage notification delivered
// through Pub/Sub into a *cloud.StorageObject.
type MediaTriggerToStorageObject struct {
	cor.BaseCommand
}

// NewMediaTriggerToStorageObject creates the command decoding GCS notifications.
func NewMediaTriggerToStorageObject(name string) *MediaTriggerToStorageObject {
	return &MediaTriggerToStorageObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute decodes the notification JSON from the input parameter and stores
// a *cloud.StorageObject under cloud.StorageObjectKey. Payloads that are not
// notifications, or name no object, fail with a 400.
func (c *MediaTriggerToStorageObject) Execute(context cor.Context) {
	var raw []byte
	switch in := context.Get(c.GetInputParam()).(type) {
	case string:
		raw = []byte(in)
	case []byte:
		raw = in
	}

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal(raw, &out); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.InvalidField("body", "is not a storage notification: "+err.Error()))
		return
	}
	if out.Bucket == "" || out.Name == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.InvalidField("body", "notification has no bucket or object name"))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	obj := &cloud.StorageObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}
	context.Add(cloud.StorageObjectKey, obj)
	context.Add(c.GetOutputParam(), obj)
}
