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
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// S3EventToStorageObject converts one S3 notification record into a
// *cloud.StorageObject. Keys arrive form-encoded, so "+" becomes a space.
type S3EventToStorageObject struct {
	cor.BaseCommand
}

// NewS3EventToStorageObject creates the command converting one S3 event record.
func NewS3EventToStorageObject(name string) *S3EventToStorageObject {
	return &S3EventToStorageObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute converts the events.S3EventRecord held by the input parameter.
func (c *S3EventToStorageObject) Execute(context cor.Context) {
	record, ok := context.Get(c.GetInputParam()).(events.S3EventRecord)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.InvalidField("Records", "expected an S3 event record"))
		return
	}

	obj, err := StorageObjectFromS3Record(record)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cloud.StorageObjectKey, obj)
	context.Add(c.GetOutputParam(), obj)
}

// StorageObjectFromS3Record extracts the bucket and the decoded key.
func StorageObjectFromS3Record(record events.S3EventRecord) (*cloud.StorageObject, error) {
	bucket := record.S3.Bucket.Name
	if bucket == "" || record.S3.Object.Key == "" {
		return nil, model.InvalidField("Records", "record has no bucket or object key")
	}
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return nil, model.InvalidField("Records", fmt.Sprintf("object key %q is not url encoded: %v", record.S3.Object.Key, err))
	}
	return &cloud.StorageObject{Bucket: bucket, Name: key}, nil
}
