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

// Package cor (Chain of Responsibility) runs a preview invocation as an
// ordered list of commands sharing one Context.
//
// A chain is built once when the process starts and executed once per
// invocation with a fresh Context. Commands never return errors; they record
// them on the Context under their own name and the chain stops before the next
// command. The first recorded error is the one reported to the caller.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Keys used by BaseChain to pipe the output of one command into the next.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the per-invocation state bag passed through a chain.
type Context interface {
	SetContext(context context.Context)
	GetContext() context.Context

	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records err under key, normally the command name. Errors keep
	// the order in which they were recorded.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool
	// FirstError returns the earliest recorded error, or nil.
	FirstError() error

	// AddTempFile registers a scratch file that Close must remove.
	AddTempFile(file string)
	GetTempFiles() []string

	// Close removes every registered scratch file. Callers defer it right
	// after creating the Context so it runs on every exit path.
	Close()
}

// Executable is anything that runs against a Context.
type Executable interface {
	Execute(context Context)
}

// Command is a single step of a workflow.
type Command interface {
	Executable

	GetName() string
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable reports whether the Context holds what the command needs.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is a Command made of other commands, run in insertion order.
type Chain interface {
	Command

	ContinueOnFailure(bool) Chain
	AddCommand(command Command) Chain
}
