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

// Package lambda_test invokes the Lambda handlers directly with synthetic
// events.
package lambda_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	"github.com/jaycherian/gcp-go-video-preview/internal/lambda"
	test "github.com/jaycherian/gcp-go-video-preview/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type previewFunc func(ctx context.Context, body []byte) (*model.PreviewResult, error)

func (f previewFunc) Run(ctx context.Context, body []byte) (*model.PreviewResult, error) {
	return f(ctx, body)
}

type triggerFunc func(ctx context.Context, in interface{}) (*model.PreviewResult, error)

func (f triggerFunc) Run(ctx context.Context, in interface{}) (*model.PreviewResult, error) {
	return f(ctx, in)
}

const requestBody = `{"url":"https://example.com/a.mp4","sample_duration":2}`

func echoPreviewer(t *testing.T) lambda.Previewer {
	return previewFunc(func(_ context.Context, body []byte) (*model.PreviewResult, error) {
		assert.Equal(t, requestBody, string(body))
		return &model.PreviewResult{URL: "https://b.host/output/a.mp4", Duration: 2, Size: 10}, nil
	})
}

func TestHTTPHandler(t *testing.T) {
	handler := lambda.NewHTTPHandler(echoPreviewer(t))

	resp, err := handler(context.Background(), events.APIGatewayV2HTTPRequest{Body: requestBody})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.JSONEq(t, `{"url":"https://b.host/output/a.mp4","duration":2,"size":10}`, resp.Body)
}

func TestHTTPHandlerBase64Body(t *testing.T) {
	handler := lambda.NewHTTPHandler(echoPreviewer(t))

	resp, err := handler(context.Background(), events.APIGatewayV2HTTPRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(requestBody)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = handler(context.Background(), events.APIGatewayV2HTTPRequest{Body: "%%%", IsBase64Encoded: true})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHTTPHandlerErrorResponse(t *testing.T) {
	handler := lambda.NewHTTPHandler(previewFunc(func(context.Context, []byte) (*model.PreviewResult, error) {
		return nil, model.NewStageError(model.StageUpload, errors.New("access denied"))
	}))

	resp, err := handler(context.Background(), events.APIGatewayV2HTTPRequest{Body: requestBody})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"statusCode":500,"body":"Failed to upload video preview"}`, resp.Body)
}

func TestS3EventHandler(t *testing.T) {
	var seen []string
	handler := lambda.NewS3EventHandler(triggerFunc(func(_ context.Context, in interface{}) (*model.PreviewResult, error) {
		record := in.(events.S3EventRecord)
		seen = append(seen, record.S3.Object.Key)
		if record.S3.Object.Key == "output/a.mp4" {
			return nil, nil
		}
		return &model.PreviewResult{URL: "https://uploads.host/output/" + record.S3.Object.Key}, nil
	}))

	results, err := handler(context.Background(), events.S3Event{Records: []events.S3EventRecord{
		test.GetTestS3Record("uploads", "a.mp4"),
		test.GetTestS3Record("uploads", "output/a.mp4"),
		test.GetTestS3Record("uploads", "b.mp4"),
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp4", "output/a.mp4", "b.mp4"}, seen)
	require.Len(t, results, 2)
	assert.Equal(t, "https://uploads.host/output/b.mp4", results[1].URL)
}

func TestS3EventHandlerStopsOnFailure(t *testing.T) {
	calls := 0
	failure := model.NewStageError(model.StageGeneration, errors.New("exit status 1"))
	handler := lambda.NewS3EventHandler(triggerFunc(func(context.Context, interface{}) (*model.PreviewResult, error) {
		calls++
		return nil, failure
	}))

	_, err := handler(context.Background(), events.S3Event{Records: []events.S3EventRecord{
		test.GetTestS3Record("uploads", "a.mp4"),
		test.GetTestS3Record("uploads", "b.mp4"),
	}})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.Is(err, failure))
	assert.Contains(t, err.Error(), "s3://uploads/a.mp4")

	_, err = handler(context.Background(), events.S3Event{})
	assert.Equal(t, 400, model.StatusCode(err))
}
