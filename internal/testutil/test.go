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

// Package test provides configuration, fixtures and in-memory fakes shared by
// the test suites. Nothing here touches the network or runs ffmpeg.
package test

import (
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
)

// TestBucket is the destination bucket of GetConfig.
const TestBucket = "test-bucket"

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// SetupOS points the configuration loader at dir for the given runtime. The
// variables are restored when the test ends.
func SetupOS(t *testing.T, dir string, runtime string) {
	t.Helper()
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, runtime)
}

// WriteFile writes content to dir/name and fails the test on error.
func WriteFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.WriteFile(dir+string(os.PathSeparator)+name, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// GetConfig returns a valid configuration for tests: S3 provider, the test
// bucket, a DigitalOcean style endpoint and scratch files in tempDir.
func GetConfig(tempDir string) *cloud.Config {
	config := cloud.NewConfig()
	config.Storage.Bucket = TestBucket
	config.Storage.Endpoint = "https://ams3.digitaloceanspaces.com"
	config.Storage.SecretsDir = ""
	config.FFmpeg.TempDir = tempDir
	return config
}
