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

// Package api exposes the preview workflow over HTTP with gin.
//
// Routes:
//   - POST /                 Function style entry point.
//   - POST /api/v1/previews  Same handler under the versioned API.
//   - GET  /healthz          Liveness probe.
//
// A successful request answers 200 with {url, duration, size}; failures
// answer with the mapped status and {statusCode, body}.
package api

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// MaxBodyBytes bounds the JSON request body.
const MaxBodyBytes = 1 << 20

// Previewer runs one preview invocation. *workflow.PreviewWorkflow
// satisfies it.
type Previewer interface {
	Run(ctx context.Context, body []byte) (*model.PreviewResult, error)
}

// NewRouter returns the gin engine serving the preview routes.
//
// Inputs:
//   - config: Supplies the service name, CORS origins and rate limits.
//   - previewer: Runs the preview workflow.
//
// Outputs:
//   - *gin.Engine: The configured router.
func NewRouter(config *cloud.Config, previewer Previewer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(config.Application.Name))
	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(cors.New(corsConfig(config.Server.AllowOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limited := r.Group("/")
	limited.Use(RateLimit(config.Server.RequestsPerSecond, config.Server.Burst))
	limited.POST("/", PreviewHandler(previewer))

	apiV1 := limited.Group("/api/v1")
	{
		PreviewRouter(apiV1, previewer)
	}
	return r
}

// PreviewRouter registers the versioned preview routes.
func PreviewRouter(r *gin.RouterGroup, previewer Previewer) {
	previews := r.Group("/previews")
	{
		previews.POST("", PreviewHandler(previewer))
	}
}

// PreviewHandler reads the body, runs the workflow and writes the outcome.
func PreviewHandler(previewer Previewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
		if err != nil {
			WriteError(c, model.InvalidField("body", err.Error()))
			return
		}
		result, err := previewer.Run(c.Request.Context(), body)
		if err != nil {
			WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// WriteError answers with the failure envelope for err.
func WriteError(c *gin.Context, err error) {
	resp := model.NewErrorResponse(err)
	c.AbortWithStatusJSON(resp.StatusCode, resp)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, RequestIDHeader)
	cfg.ExposeHeaders = []string{RequestIDHeader}
	return cfg
}
