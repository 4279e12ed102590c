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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/commands"
)

// MP4Header is the start of an ISO base media file, enough for content
// sniffing to report video/mp4.
var MP4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}

// Upload is one object written to a FakeStore.
type Upload struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
}

// FakeStore is an in-memory cloud.ObjectStore.
type FakeStore struct {
	mu        sync.Mutex
	Uploads   []Upload
	Signed    []string
	UploadErr error
	SignErr   error
}

var _ cloud.ObjectStore = (*FakeStore)(nil)

func (s *FakeStore) Upload(_ context.Context, bucket string, key string, contentType string, body io.Reader) error {
	if s.UploadErr != nil {
		return s.UploadErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads = append(s.Uploads, Upload{Bucket: bucket, Key: key, ContentType: contentType, Body: b})
	return nil
}

func (s *FakeStore) SignedURL(_ context.Context, bucket string, key string, ttl time.Duration) (string, error) {
	if s.SignErr != nil {
		return "", s.SignErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Signed = append(s.Signed, bucket+"/"+key)
	return fmt.Sprintf("https://%s.signed.example/%s?X-Amz-Expires=%d", bucket, key, int(ttl.Seconds())), nil
}

func (s *FakeStore) PublicURL(bucket string, key string) string {
	return cloud.VirtualHostedURL("ams3.digitaloceanspaces.com", bucket, key)
}

// FakeProber answers probes from Sources, falling back to Default. Files it
// does not know are measured on disk, or fail with UnknownErr when set.
type FakeProber struct {
	mu         sync.Mutex
	Sources    map[string]*commands.ProbeResult
	Default    *commands.ProbeResult
	Err        error
	UnknownErr error
	Calls      []string
}

var _ commands.MediaProber = (*FakeProber)(nil)

func (p *FakeProber) Probe(_ context.Context, source string) (*commands.ProbeResult, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, source)
	p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	if r, ok := p.Sources[source]; ok {
		return r, nil
	}
	if p.Default != nil {
		return p.Default, nil
	}
	if p.UnknownErr != nil {
		return nil, p.UnknownErr
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	return &commands.ProbeResult{Duration: 1, Size: info.Size()}, nil
}

// FakeEncoder records jobs and writes Data (MP4Header when nil) to the output.
type FakeEncoder struct {
	mu   sync.Mutex
	Jobs []commands.EncodeJob
	Data []byte
	Err  error
}

var _ commands.MediaEncoder = (*FakeEncoder)(nil)

func (e *FakeEncoder) Encode(_ context.Context, job commands.EncodeJob) error {
	e.mu.Lock()
	e.Jobs = append(e.Jobs, job)
	e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	data := e.Data
	if data == nil {
		data = MP4Header
	}
	return os.WriteFile(job.Output, bytes.Clone(data), 0o600)
}
