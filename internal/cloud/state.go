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
	"context"
	"errors"
	"fmt"
	"log/slog"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ServiceClients holds the clients created once at process start and shared
// read-only by every invocation.
//
// Logic Flow:
//  1. NewServiceClients builds the ObjectStore for the configured provider.
//  2. For "gcs" it also opens the Storage and IAM Credentials clients.
//  3. When subscriptions are configured a Pub/Sub client and one listener per
//     subscription are created; commands are attached later by the caller.
type ServiceClients struct {
	Store           ObjectStore
	StorageClient   *storage.Client
	IAMClient       *credentials.IamCredentialsClient
	PubsubClient    *pubsub.Client
	PubSubListeners map[string]*PubSubListener
}

// Close releases every open client.
func (c *ServiceClients) Close() error {
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.IAMClient != nil {
		errs = append(errs, c.IAMClient.Close())
	}
	if c.PubsubClient != nil {
		errs = append(errs, c.PubsubClient.Close())
	}
	return errors.Join(errs...)
}

// NewServiceClients creates the clients named by config.
//
// Inputs:
//   - ctx: The root context of the process.
//   - config: The validated configuration.
//
// Outputs:
//   - *ServiceClients: The shared clients.
//   - error: The first client that failed to initialize.
func NewServiceClients(ctx context.Context, config *Config) (_ *ServiceClients, err error) {
	clients := &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	defer func() {
		if err != nil {
			_ = clients.Close()
		}
	}()

	var gcpOpts []option.ClientOption
	if config.Storage.CredentialsFile != "" {
		gcpOpts = append(gcpOpts, option.WithCredentialsFile(config.Storage.CredentialsFile))
	}

	switch config.Storage.Provider {
	case ProviderS3:
		store, err := NewS3Store(ctx, config.Storage)
		if err != nil {
			return nil, err
		}
		clients.Store = store
	case ProviderGCS:
		sc, err := storage.NewClient(ctx, gcpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		clients.StorageClient = sc
		if config.Storage.SignerServiceAccountEmail != "" {
			ic, err := credentials.NewIamCredentialsClient(ctx, gcpOpts...)
			if err != nil {
				return nil, fmt.Errorf("failed to create iam credentials client: %w", err)
			}
			clients.IAMClient = ic
		}
		clients.Store = NewGCSStore(sc, clients.IAMClient, config.Storage.SignerServiceAccountEmail, config.Storage.Endpoint)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", config.Storage.Provider)
	}

	if len(config.TopicSubscriptions) > 0 {
		pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId, gcpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		clients.PubsubClient = pc
		for key, sub := range config.TopicSubscriptions {
			clients.PubSubListeners[key] = NewPubSubListener(pc, sub, nil)
			slog.Debug("configured subscription", "key", key, "subscription", sub.Name)
		}
	}

	return clients, nil
}
