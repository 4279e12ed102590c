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

package cloud

// StorageObjectKey is the context key under which the storage-triggered
// workflow keeps the object that caused the invocation.
const StorageObjectKey = "__STORAGE__OBJ__"

// GCSPubSubNotification is the JSON payload of a Cloud Storage notification
// delivered through Pub/Sub. Only the fields the function reads are mapped.
type GCSPubSubNotification struct {
	Kind        string                 `json:"kind"`
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Bucket      string                 `json:"bucket"`
	Generation  string                 `json:"generation"`
	ContentType string                 `json:"contentType"`
	TimeCreated string                 `json:"timeCreated"`
	Size        string                 `json:"size"`
	MediaLink   string                 `json:"mediaLink"`
	MetaData    map[string]interface{} `json:"metadata"`
}

// StorageObject identifies an uploaded source video, whichever store
// announced it.
type StorageObject struct {
	Bucket   string
	Name     string
	MIMEType string
}
