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

package cor

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

type keyedError struct {
	key string
	err error
}

// BaseContext is the default Context. It is not safe for concurrent use; one
// invocation owns one BaseContext.
type BaseContext struct {
	data      map[string]interface{}
	errors    []keyedError
	tempFiles []string
	context   context.Context
}

// NewBaseContext returns an empty Context. Callers set the Go context with
// SetContext before executing a chain.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		tempFiles: make([]string, 0),
	}
}

// NewBaseContextWith returns an empty Context bound to ctx.
func NewBaseContextWith(ctx context.Context) Context {
	c := NewBaseContext()
	c.SetContext(ctx)
	return c
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close removes the registered scratch files. Files that are already gone are
// not reported.
func (c *BaseContext) Close() {
	for _, file := range c.tempFiles {
		if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove temporary file", "file", file, "error", err)
		}
	}
	c.tempFiles = c.tempFiles[:0]
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

// AddError records err under key. A second error for the same key replaces
// the first but keeps its position.
func (c *BaseContext) AddError(key string, err error) {
	for i := range c.errors {
		if c.errors[i].key == key {
			c.errors[i].err = err
			return
		}
	}
	c.errors = append(c.errors, keyedError{key: key, err: err})
}

func (c *BaseContext) GetErrors() map[string]error {
	out := make(map[string]error, len(c.errors))
	for _, e := range c.errors {
		out[e.key] = e.err
	}
	return out
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}

func (c *BaseContext) FirstError() error {
	if len(c.errors) == 0 {
		return nil
	}
	return c.errors[0].err
}
