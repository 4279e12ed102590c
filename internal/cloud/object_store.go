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

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"
)

// ObjectStore is the storage abstraction the preview pipeline writes to and
// presigns source objects with. Implementations are safe for concurrent use.
type ObjectStore interface {
	// Upload writes body to bucket/key with public-read visibility.
	Upload(ctx context.Context, bucket string, key string, contentType string, body io.Reader) error
	// SignedURL returns a time limited GET URL for bucket/key.
	SignedURL(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error)
	// PublicURL returns the unauthenticated URL of bucket/key.
	PublicURL(bucket string, key string) string
}

// EndpointHost extracts the host name of an endpoint that may or may not
// carry a scheme. Any port is dropped. It returns fallback when endpoint is
// empty.
func EndpointHost(endpoint string, fallback string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return fallback
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		return fallback
	}
	return u.Hostname()
}

// VirtualHostedURL renders "https://<bucket>.<host>/<key>".
func VirtualHostedURL(host string, bucket string, key string) string {
	u := url.URL{
		Scheme: "https",
		Host:   bucket + "." + host,
		Path:   "/" + strings.TrimPrefix(key, "/"),
	}
	return u.String()
}
