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

package test

import (
	"github.com/aws/aws-lambda-go/events"
)

// GetTestUploadMessageText returns a Cloud Storage notification for an
// uploaded trailer.
func GetTestUploadMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "media_uploads/test-trailer-001.mp4/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/media_uploads/o/test-trailer-001.mp4",
  "name": "test-trailer-001.mp4",
  "bucket": "media_uploads",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "size": "259348037",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/media_uploads/o/test-trailer-001.mp4?generation=1728615848664286&alt=media",
  "metadata": { "touch": "18" },
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}

// GetTestOutputMessageText returns a notification for a preview written by
// the function itself, under the default "output" prefix.
func GetTestOutputMessageText() string {
	return `{
  "kind": "storage#object",
  "name": "output/test-trailer-001.mp4",
  "bucket": "media_uploads",
  "contentType": "video/mp4",
  "size": "1048576"
}`
}

// GetTestS3Record returns an S3 notification record for key in bucket. key
// is used as delivered by S3, so it must already be form-encoded.
func GetTestS3Record(bucket string, key string) events.S3EventRecord {
	return events.S3EventRecord{
		EventVersion: "2.1",
		EventSource:  "aws:s3",
		AWSRegion:    "us-east-1",
		EventName:    "ObjectCreated:Put",
		S3: events.S3Entity{
			SchemaVersion: "1.0",
			Bucket:        events.S3Bucket{Name: bucket, Arn: "arn:aws:s3:::" + bucket},
			Object:        events.S3Object{Key: key, Size: 259348037},
		},
	}
}
