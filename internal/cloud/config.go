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

// Package cloud holds the configuration of the preview function and the
// clients it uses to reach object storage and Pub/Sub.
//
// The configuration is read from TOML files (see LoadConfig) and then
// overridden by the plain environment variables the function has always
// accepted (samples, sample_duration, scale, format, s3_bucket, ...).
//
// Structs:
//   - Config: The root of the configuration tree.
//   - Storage: Where previews are written and how the store is authenticated.
//   - Preview: Defaults applied to storage-triggered invocations.
//   - FFmpeg: Location of the ffmpeg and ffprobe binaries.
//   - Server: HTTP listener settings.
//   - TopicSubscription: A Pub/Sub subscription delivering storage notifications.
package cloud

import (
	"errors"
	"fmt"
	"time"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// Supported storage providers.
const (
	ProviderS3  = "s3"
	ProviderGCS = "gcs"
)

// Supported Lambda modes.
const (
	ModeHTTP = "http"
	ModeS3   = "s3"
)

// TopicSubscription names a Pub/Sub subscription carrying GCS notifications.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Storage configures the object store previews are uploaded to.
type Storage struct {
	Provider     string `toml:"provider"`       // "s3" or "gcs".
	Bucket       string `toml:"bucket"`         // Destination bucket; Lambda s3 mode falls back to the source bucket.
	Endpoint     string `toml:"endpoint"`       // Custom S3 endpoint, e.g. "https://ams3.digitaloceanspaces.com".
	Region       string `toml:"region"`         // S3 signing region.
	OutputPrefix string `toml:"output_prefix"`  // Key prefix of uploaded previews.
	UsePathStyle bool   `toml:"use_path_style"` // S3 path-style addressing, needed by some S3 compatible stores.

	SecretsDir string `toml:"secrets_dir"` // Directory holding mounted secrets.
	KeyFile    string `toml:"key_file"`    // File name of the access key id inside SecretsDir.
	SecretFile string `toml:"secret_file"` // File name of the secret access key inside SecretsDir.

	CredentialsFile           string `toml:"credentials_file"`             // GCS service account key file, empty for ADC.
	SignerServiceAccountEmail string `toml:"signer_service_account_email"` // GCS signer used through IAM SignBlob.
	PresignExpirySeconds      int    `toml:"presign_expiry_seconds"`       // TTL of presigned source URLs.
}

// PresignExpiry returns the TTL of presigned source URLs, one hour by default.
func (s Storage) PresignExpiry() time.Duration {
	if s.PresignExpirySeconds <= 0 {
		return time.Hour
	}
	return time.Duration(s.PresignExpirySeconds) * time.Second
}

// Preview holds the defaults of storage-triggered invocations, where there
// is no request body to carry them.
type Preview struct {
	Samples        int     `toml:"samples"`
	SampleDuration float64 `toml:"sample_duration"`
	Scale          string  `toml:"scale"`
	Format         string  `toml:"format"`
}

// FFmpeg locates the media binaries. Bare names are resolved through PATH.
type FFmpeg struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	TempDir     string `toml:"temp_dir"` // Scratch directory for generated previews, empty for os.TempDir.
}

// Server configures the HTTP entry point.
type Server struct {
	Port              int      `toml:"port"`
	RequestsPerSecond float64  `toml:"requests_per_second"` // Zero disables rate limiting.
	Burst             int      `toml:"burst"`
	AllowOrigins      []string `toml:"allow_origins"`
}

// Config is the root configuration object.
type Config struct {
	Application struct {
		Name            string `toml:"name"`
		GoogleProjectId string `toml:"google_project_id"`
		Debug           bool   `toml:"debug"`
		Mode            string `toml:"mode"` // Lambda mode, "http" or "s3".
	} `toml:"application"`
	Storage   Storage `toml:"storage"`
	Preview   Preview `toml:"preview"`
	FFmpeg    FFmpeg  `toml:"ffmpeg"`
	Server    Server  `toml:"server"`
	Telemetry struct {
		Exporter string `toml:"exporter"` // "none" or "gcp".
	} `toml:"telemetry"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
}

// NewConfig returns a Config populated with the built-in defaults. Values
// from files and the environment are layered on top.
func NewConfig() *Config {
	c := &Config{
		Storage: Storage{
			Provider:     ProviderS3,
			Region:       "us-east-1",
			OutputPrefix: "output",
			SecretsDir:   "/var/openfaas/secrets",
			KeyFile:      "video-preview-s3-key",
			SecretFile:   "video-preview-s3-secret",
		},
		Preview: Preview{
			Samples:        4,
			SampleDuration: 2,
			Format:         model.DefaultFormat,
		},
		FFmpeg: FFmpeg{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Server: Server{
			Port:         8080,
			AllowOrigins: []string{"*"},
		},
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Application.Name = "video-preview"
	c.Application.Mode = ModeHTTP
	c.Telemetry.Exporter = "none"
	return c
}

// RequestDefaults are applied to JSON request bodies. sample_duration stays
// mandatory there.
func (c *Config) RequestDefaults() model.Defaults {
	return model.RequestDefaults(c.Storage.OutputPrefix)
}

// TriggerDefaults are applied to storage notifications.
func (c *Config) TriggerDefaults() model.Defaults {
	return model.Defaults{
		Samples:        c.Preview.Samples,
		SampleDuration: c.Preview.SampleDuration,
		Scale:          c.Preview.Scale,
		Format:         c.Preview.Format,
		OutputPrefix:   c.Storage.OutputPrefix,
	}
}

// Validate rejects configurations the function cannot run with. All problems
// are reported together.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Provider {
	case ProviderS3, ProviderGCS:
	default:
		errs = append(errs, fmt.Errorf("storage.provider must be %q or %q, got %q", ProviderS3, ProviderGCS, c.Storage.Provider))
	}
	if c.Storage.Bucket == "" && c.Application.Mode != ModeS3 {
		errs = append(errs, errors.New("storage.bucket is required"))
	}
	if c.Preview.Samples <= 0 || c.Preview.Samples > model.MaxSamples {
		errs = append(errs, fmt.Errorf("preview.samples must be between 1 and %d", model.MaxSamples))
	}
	if c.Preview.SampleDuration <= 0 {
		errs = append(errs, errors.New("preview.sample_duration must be greater than 0"))
	}
	if _, ok := model.LookupFormat(c.Preview.Format); !ok {
		errs = append(errs, fmt.Errorf("preview.format %q is not supported", c.Preview.Format))
	}
	if c.Preview.Scale != "" {
		if _, err := model.ParseScale(c.Preview.Scale); err != nil {
			errs = append(errs, fmt.Errorf("preview.scale: %w", err))
		}
	}
	if c.FFmpeg.FFmpegPath == "" || c.FFmpeg.FFprobePath == "" {
		errs = append(errs, errors.New("ffmpeg.ffmpeg_path and ffmpeg.ffprobe_path are required"))
	}
	switch c.Application.Mode {
	case ModeHTTP, ModeS3:
	default:
		errs = append(errs, fmt.Errorf("application.mode must be %q or %q, got %q", ModeHTTP, ModeS3, c.Application.Mode))
	}
	return errors.Join(errs...)
}
