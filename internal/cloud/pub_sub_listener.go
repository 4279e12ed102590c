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
	"log/slog"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-preview/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener feeds each message of a subscription to a command.
//
// Messages that fail with a client error (a 4xx status, e.g. a malformed
// notification or a video too short for the schedule) are acknowledged,
// since delivering them again cannot succeed. When the subscription names a
// dead letter topic they are republished there first, with the status and
// message as attributes. Upstream failures (5xx) are not acknowledged and are
// redelivered after the ack deadline.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	deadLetter   *pubsub.Topic
	command      cor.Command
}

// NewPubSubListener binds the subscription described by sub to command.
// command may be nil and set later with SetCommand. A positive
// TimeoutInSeconds bounds how long one message is held before the client
// stops extending its ack deadline.
func NewPubSubListener(pubsubClient *pubsub.Client, sub TopicSubscription, command cor.Command) *PubSubListener {
	subscription := pubsubClient.Subscription(sub.Name)
	if sub.TimeoutInSeconds > 0 {
		subscription.ReceiveSettings.MaxExtension = time.Duration(sub.TimeoutInSeconds) * time.Second
	}
	listener := &PubSubListener{
		client:       pubsubClient,
		subscription: subscription,
		command:      command,
	}
	if sub.DeadLetterTopic != "" {
		listener.deadLetter = pubsubClient.Topic(sub.DeadLetterTopic)
	}
	return listener
}

// SetCommand attaches command unless one is already set.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen receives messages in a background goroutine until ctx is done.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening", "subscription", m.subscription.String())

	go func() {
		tracer := otel.Tracer("message-listener")
		err := m.subscription.Receive(ctx, func(msgCtx context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(msgCtx, "receive-message")
			defer span.End()
			span.SetAttributes(attribute.String("message.id", msg.ID))

			chainCtx := cor.NewBaseContextWith(spanCtx)
			defer chainCtx.Close()
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			err := chainCtx.FirstError()
			if err == nil {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
				return
			}

			span.RecordError(err)
			span.SetStatus(codes.Error, "failed")
			status := model.StatusCode(err)
			span.SetAttributes(attribute.Int("preview.status_code", status))
			if status >= 500 {
				slog.ErrorContext(spanCtx, "failed to process message, leaving it for redelivery", "message_id", msg.ID, "error", err)
				return
			}

			slog.WarnContext(spanCtx, "rejected message", "message_id", msg.ID, "status", status, "error", err)
			if m.deadLetter != nil {
				if perr := m.publishDeadLetter(spanCtx, msg, status, err); perr != nil {
					slog.ErrorContext(spanCtx, "failed to publish to dead letter topic", "message_id", msg.ID, "error", perr)
					return
				}
			}
			msg.Ack()
		})
		if err != nil {
			slog.Error("error receiving messages", "subscription", m.subscription.String(), "error", err)
		}
		if m.deadLetter != nil {
			m.deadLetter.Stop()
		}
	}()
}

func (m *PubSubListener) publishDeadLetter(ctx context.Context, msg *pubsub.Message, status int, cause error) error {
	attrs := make(map[string]string, len(msg.Attributes)+3)
	for k, v := range msg.Attributes {
		attrs[k] = v
	}
	attrs["source_message_id"] = msg.ID
	attrs["status_code"] = strconv.Itoa(status)
	attrs["error"] = model.Message(cause)
	_, err := m.deadLetter.Publish(ctx, &pubsub.Message{Data: msg.Data, Attributes: attrs}).Get(ctx)
	return err
}
