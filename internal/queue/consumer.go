package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"VolunteerHub/internal/model"
	"VolunteerHub/internal/service"
	"VolunteerHub/pkg/logger"
	"VolunteerHub/storage/mq"
)

var notificationService *service.NotificationService

// SetNotificationService must run before StartAllConsumers; every
// consumer hands its messages to it.
func SetNotificationService(s *service.NotificationService) {
	notificationService = s
}

// StartAllConsumers runs one consumer goroutine per queue and blocks
// until the context is cancelled. A broken consume loop is retried with
// a fixed backoff.
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []mq.ConsumeOptions{
		{
			Queue:         mq.QueueSignupCreated,
			ConsumerTag:   "worker-signup-created",
			PrefetchCount: 10,
			Handler:       handleSignupCreated(ctx),
		},
		{
			Queue:         mq.QueueSignupAutoClosed,
			ConsumerTag:   "worker-signup-autoclosed",
			PrefetchCount: 10,
			Handler:       handleSignupAutoClosed(ctx),
		},
	}

	for _, opts := range consumers {
		wg.Add(1)
		go func(opts mq.ConsumeOptions) {
			defer wg.Done()
			runConsumer(ctx, opts)
		}(opts)
	}

	wg.Wait()
}

func runConsumer(ctx context.Context, opts mq.ConsumeOptions) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := mq.Consume(opts); err != nil {
			logger.Logger.Error("Consumer stopped, retrying",
				zap.String("queue", opts.Queue),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func handleSignupCreated(ctx context.Context) mq.MessageHandler {
	return func(body []byte) error {
		if notificationService == nil {
			return fmt.Errorf("notification service not set")
		}

		var msg model.SignupCreatedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			// Malformed payloads would requeue forever; log and drop.
			logger.Logger.Error("Failed to decode signup created message",
				zap.ByteString("body", body),
				zap.Error(err),
			)
			return nil
		}

		return notificationService.RecordSignupCreated(ctx, msg)
	}
}

func handleSignupAutoClosed(ctx context.Context) mq.MessageHandler {
	return func(body []byte) error {
		if notificationService == nil {
			return fmt.Errorf("notification service not set")
		}

		var msg model.SignupAutoClosedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Logger.Error("Failed to decode auto-checkout message",
				zap.ByteString("body", body),
				zap.Error(err),
			)
			return nil
		}

		return notificationService.RecordSignupAutoClosed(ctx, msg)
	}
}
