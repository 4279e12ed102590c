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
	"fmt"
	"io"
	"net/http"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// DefaultGCSHost is the public host of Cloud Storage.
const DefaultGCSHost = "storage.googleapis.com"

// GCSStore writes previews to Google Cloud Storage.
type GCSStore struct {
	client      *storage.Client
	iam         *credentials.IamCredentialsClient
	signerEmail string
	host        string
}

// NewGCSStore wraps the storage client. When signerEmail is set, URLs are
// signed through the IAM Credentials SignBlob API so no key file is needed.
func NewGCSStore(client *storage.Client, iam *credentials.IamCredentialsClient, signerEmail string, endpoint string) *GCSStore {
	return &GCSStore{
		client:      client,
		iam:         iam,
		signerEmail: signerEmail,
		host:        EndpointHost(endpoint, DefaultGCSHost),
	}
}

func (s *GCSStore) Upload(ctx context.Context, bucket string, key string, contentType string, body io.Reader) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.PredefinedACL = "publicRead"
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) SignedURL(ctx context.Context, bucket string, key string, ttl time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	}
	if s.signerEmail != "" && s.iam != nil {
		opts.GoogleAccessID = s.signerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			resp, err := s.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.signerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}
	u, err := s.client.Bucket(bucket).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", bucket, key, err)
	}
	return u, nil
}

// PublicURL uses the virtual hosted form, matching the S3 store.
func (s *GCSStore) PublicURL(bucket string, key string) string {
	return VirtualHostedURL(s.host, bucket, key)
}
