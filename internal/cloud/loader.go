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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Configuration file naming. Files are "<prefix>/.env.toml" followed by
// "<prefix>/.env.<runtime>.toml".
const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "VP_CONFIG_PREFIX"
	EnvConfigRuntime    = "VP_RUNTIME"
	DefaultRuntime      = "test"
)

// Environment variables that override the TOML values.
const (
	EnvSamples        = "samples"
	EnvSampleDuration = "sample_duration"
	EnvScale          = "scale"
	EnvFormat         = "format"
	EnvOutputPrefix   = "s3_output_prefix"
	EnvEndpointURL    = "s3_endpoint_url"
	EnvBucket         = "s3_bucket"
	EnvDebug          = "debug"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, fs.ErrNotExist)
}

// LoadDotEnv loads a ".env" file from the working directory when one exists.
// Variables already set in the process environment win.
func LoadDotEnv() error {
	if !fileExists(".env") {
		return nil
	}
	return godotenv.Load()
}

// LoadConfig decodes the base configuration file and then the runtime
// specific one into baseConfig. Missing files are skipped; values in the
// runtime file replace those of the base file.
//
// Inputs:
//   - baseConfig: A pointer to the struct the TOML files decode into.
//
// Outputs:
//   - error: A decode failure, naming the offending file.
func LoadConfig(baseConfig interface{}) error {
	prefix := os.Getenv(EnvConfigFilePrefix)
	runtime := os.Getenv(EnvConfigRuntime)
	if runtime == "" {
		runtime = DefaultRuntime
	}

	files := []string{
		filepath.Join(prefix, ConfigFileBaseName+ConfigFileExtension),
		filepath.Join(prefix, ConfigFileBaseName+ConfigSeparator+runtime+ConfigFileExtension),
	}
	for _, file := range files {
		if !fileExists(file) {
			slog.Debug("configuration file not found", "file", file)
			continue
		}
		if _, err := toml.DecodeFile(file, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", file, err)
		}
		slog.Debug("loaded configuration file", "file", file)
	}
	return nil
}

// ApplyEnvOverrides copies the function's environment variables onto c.
// lookup is normally os.LookupEnv.
func ApplyEnvOverrides(c *Config, lookup func(string) (string, bool)) error {
	var errs []error
	if v, ok := lookup(EnvSamples); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSamples, err))
		} else {
			c.Preview.Samples = n
		}
	}
	if v, ok := lookup(EnvSampleDuration); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSampleDuration, err))
		} else {
			c.Preview.SampleDuration = f
		}
	}
	if v, ok := lookup(EnvScale); ok {
		c.Preview.Scale = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvFormat); ok && strings.TrimSpace(v) != "" {
		c.Preview.Format = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvOutputPrefix); ok {
		c.Storage.OutputPrefix = strings.Trim(strings.TrimSpace(v), "/")
	}
	if v, ok := lookup(EnvEndpointURL); ok && v != "" {
		c.Storage.Endpoint = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvBucket); ok && v != "" {
		c.Storage.Bucket = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvDebug); ok {
		c.Application.Debug = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return errors.Join(errs...)
}

// Load builds the effective configuration: defaults, optional .env file,
// TOML files, environment overrides, then validation.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	config := NewConfig()
	if err := LoadConfig(config); err != nil {
		return nil, err
	}
	if err := ApplyEnvOverrides(config, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
