package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sam8709/repair-track-25-08/internal/config"
	"github.com/Sam8709/repair-track-25-08/internal/domain"
	"github.com/Sam8709/repair-track-25-08/internal/events"
	"github.com/Sam8709/repair-track-25-08/internal/notify"
)

// fakeSender records every delivery attempt. It is shared by the job
// service tests, which assert on the messages that reach it.
type fakeSender struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
	delay    time.Duration
}

func newFakeSender() *fakeSender {
	return &fakeSender{}
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("SM%04d", len(f.messages)), nil
}

func (f *fakeSender) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSender) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeSender) lastMessage() notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return notify.Message{}
	}
	return f.messages[len(f.messages)-1]
}

func newTestNotificationService(sender notify.Sender) (*NotificationService, events.Dispatcher) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, sender, zap.NewNop(), nil, config.WhatsAppConfig{DefaultCountryCode: "+91"})
	svc.RegisterHandlers()
	return svc, dispatcher
}

func TestJobCreatedMessage(t *testing.T) {
	sender := newFakeSender()
	_, dispatcher := newTestNotificationService(sender)

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:    "evt-1",
		Type:  events.EventJobCreated,
		JobID: "job-1",
		Payload: events.JobCreatedPayload{
			JobCode:          "RT-2025-000004",
			CustomerName:     "Asha",
			CustomerWhatsApp: "9876543210",
			ItemName:         "Phone",
		},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sender.attemptCount() == 1 }, time.Second, 10*time.Millisecond)
	msg := sender.lastMessage()
	assert.Equal(t, "+919876543210", msg.To, "bare local number gets the default country code")
	assert.Equal(t, "Hi Asha, we've received your Phone. Job: RT-2025-000004.", msg.Body)
}

func TestStatusChangedMessage(t *testing.T) {
	sender := newFakeSender()
	_, dispatcher := newTestNotificationService(sender)

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:    "evt-2",
		Type:  events.EventJobStatusChanged,
		JobID: "job-1",
		Payload: events.JobStatusChangedPayload{
			JobCode:          "RT-2025-000004",
			CustomerWhatsApp: "+919876543210",
			OldStatus:        domain.JobStatusReceived,
			NewStatus:        domain.JobStatusCompleted,
		},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sender.attemptCount() == 1 }, time.Second, 10*time.Millisecond)
	msg := sender.lastMessage()
	assert.Equal(t, "+919876543210", msg.To)
	assert.Equal(t, `Update for Job RT-2025-000004: Status changed to "Completed".`, msg.Body)
}

func TestDeliveryDoesNotBlockPublisher(t *testing.T) {
	sender := newFakeSender()
	sender.delay = 300 * time.Millisecond
	_, dispatcher := newTestNotificationService(sender)

	start := time.Now()
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:    "evt-3",
		Type:  events.EventJobCreated,
		JobID: "job-1",
		Payload: events.JobCreatedPayload{
			JobCode:          "RT-2025-000001",
			CustomerName:     "Asha",
			CustomerWhatsApp: "+919876543210",
			ItemName:         "Phone",
		},
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "publish must return before the send completes")

	require.Eventually(t, func() bool { return sender.attemptCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSenderFailureIsSwallowed(t *testing.T) {
	sender := newFakeSender()
	sender.failWith(fmt.Errorf("twilio 500"))
	_, dispatcher := newTestNotificationService(sender)

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:    "evt-4",
		Type:  events.EventJobStatusChanged,
		JobID: "job-1",
		Payload: events.JobStatusChangedPayload{
			JobCode:          "RT-2025-000001",
			CustomerWhatsApp: "+919876543210",
			OldStatus:        domain.JobStatusReceived,
			NewStatus:        domain.JobStatusInProgress,
		},
	})
	require.NoError(t, err, "a failing provider must not surface through the dispatcher")
	require.Eventually(t, func() bool { return sender.attemptCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestUnexpectedPayloadIsIgnored(t *testing.T) {
	sender := newFakeSender()
	_, dispatcher := newTestNotificationService(sender)

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      "evt-5",
		Type:    events.EventJobCreated,
		JobID:   "job-1",
		Payload: "not a payload",
	})
	require.NoError(t, err)
	assert.Never(t, func() bool { return sender.attemptCount() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
