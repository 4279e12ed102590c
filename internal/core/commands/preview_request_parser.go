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

package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// PreviewRequestParser turns the raw JSON body found under its input key into
// a validated *model.PreviewRequest.
type PreviewRequestParser struct {
	cor.BaseCommand
	defaults model.Defaults
}

// NewPreviewRequestParser returns a parser applying defaults to absent fields.
//
// Inputs:
//   - name: The command name.
//   - defaults: Values for omitted optional fields.
//
// Outputs:
//   - *PreviewRequestParser: The command.
func NewPreviewRequestParser(name string, defaults model.Defaults) *PreviewRequestParser {
	return &PreviewRequestParser{BaseCommand: *cor.NewBaseCommand(name), defaults: defaults}
}

// Execute parses the body held by the input parameter, as []byte or string.
func (c *PreviewRequestParser) Execute(context cor.Context) {
	var body []byte
	switch in := context.Get(c.GetInputParam()).(type) {
	case []byte:
		body = in
	case string:
		body = []byte(in)
	default:
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.InvalidField("body", fmt.Sprintf("unsupported input type %T", in)))
		return
	}

	req, err := model.ParsePreviewRequest(body, c.defaults)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(RequestKey, req)
	context.Add(c.GetOutputParam(), req)
}
