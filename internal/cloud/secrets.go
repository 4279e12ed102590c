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
	"os"
	"path/filepath"
	"strings"
)

// ReadSecret returns the trimmed contents of dir/name. found is false when
// the file does not exist.
func ReadSecret(dir string, name string) (value string, found bool, err error) {
	if dir == "" || name == "" {
		return "", false, nil
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	return strings.TrimSpace(string(b)), true, nil
}

// StaticKeys is an access key pair read from mounted secrets.
type StaticKeys struct {
	AccessKeyID     string
	SecretAccessKey string
}

// LoadStaticKeys reads the key pair named by s. It returns nil when either
// file is missing, in which case the SDK's default credential chain applies.
func LoadStaticKeys(s Storage) (*StaticKeys, error) {
	key, okKey, err := ReadSecret(s.SecretsDir, s.KeyFile)
	if err != nil {
		return nil, err
	}
	secret, okSecret, err := ReadSecret(s.SecretsDir, s.SecretFile)
	if err != nil {
		return nil, err
	}
	if !okKey || !okSecret {
		return nil, nil
	}
	return &StaticKeys{AccessKeyID: key, SecretAccessKey: secret}, nil
}
