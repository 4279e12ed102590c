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

// Package lambda adapts the preview workflows to AWS Lambda events.
//
// Handlers:
//   - NewHTTPHandler: API Gateway v2 / function URL requests carrying the
//     JSON body.
//   - NewS3EventHandler: S3 object created notifications. Every record is
//     processed in order and the first failure fails the invocation, so
//     Lambda's own retry policy applies.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
)

// Previewer runs the request-driven workflow.
type Previewer interface {
	Run(ctx context.Context, body []byte) (*model.PreviewResult, error)
}

// Trigger runs the storage-driven workflow for a single S3 record.
type Trigger interface {
	Run(ctx context.Context, in interface{}) (*model.PreviewResult, error)
}

// HTTPHandler is the signature lambda.Start expects for HTTP events.
type HTTPHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// S3EventHandler is the signature lambda.Start expects for S3 events.
type S3EventHandler func(ctx context.Context, event events.S3Event) ([]model.PreviewResult, error)

// NewHTTPHandler answers every request with a JSON body; workflow failures
// become error responses, never invocation errors.
func NewHTTPHandler(previewer Previewer) HTTPHandler {
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return errorResponse(model.InvalidField("body", "is not valid base64")), nil
			}
			body = decoded
		}

		result, err := previewer.Run(ctx, body)
		if err != nil {
			return errorResponse(err), nil
		}
		return jsonResponse(http.StatusOK, result), nil
	}
}

// NewS3EventHandler builds a preview for every record of the event.
func NewS3EventHandler(trigger Trigger) S3EventHandler {
	return func(ctx context.Context, event events.S3Event) ([]model.PreviewResult, error) {
		if len(event.Records) == 0 {
			return nil, model.InvalidField("Records", "is empty")
		}
		results := make([]model.PreviewResult, 0, len(event.Records))
		for i, record := range event.Records {
			result, err := trigger.Run(ctx, record)
			if err != nil {
				return results, fmt.Errorf("record %d (s3://%s/%s): %w", i, record.S3.Bucket.Name, record.S3.Object.Key, err)
			}
			if result != nil {
				results = append(results, *result)
			}
		}
		return results, nil
	}
}

func errorResponse(err error) events.APIGatewayV2HTTPResponse {
	resp := model.NewErrorResponse(err)
	return jsonResponse(resp.StatusCode, resp)
}

func jsonResponse(status int, v interface{}) events.APIGatewayV2HTTPResponse {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"statusCode":500,"body":"Internal error"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}
}
