package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sam8709/repair-track-25-08/internal/config"
	"github.com/Sam8709/repair-track-25-08/internal/events"
	"github.com/Sam8709/repair-track-25-08/internal/notify"
	"github.com/Sam8709/repair-track-25-08/internal/observability"
)

// NotificationService turns job events into WhatsApp messages. Delivery
// is detached from the originating operation: each send runs in its own
// goroutine, failures are logged and counted, and nothing propagates
// back to the caller that published the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     notify.Sender
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.WhatsAppConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender notify.Sender, logger *zap.Logger, metrics *observability.Metrics, cfg config.WhatsAppConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to job events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventJobCreated, n.handleJobCreated)
	n.dispatcher.Subscribe(events.EventJobStatusChanged, n.handleJobStatusChanged)
}

func (n *NotificationService) handleJobCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for job_created", zap.String("event_id", event.ID))
		return nil
	}
	to := notify.Normalize(payload.CustomerWhatsApp, n.cfg.DefaultCountryCode)
	body := fmt.Sprintf("Hi %s, we've received your %s. Job: %s.",
		payload.CustomerName, payload.ItemName, payload.JobCode)
	n.deliver(event.JobID, notify.Message{To: to, Body: body})
	return nil
}

func (n *NotificationService) handleJobStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobStatusChangedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for job_status_changed", zap.String("event_id", event.ID))
		return nil
	}
	to := notify.Normalize(payload.CustomerWhatsApp, n.cfg.DefaultCountryCode)
	body := fmt.Sprintf("Update for Job %s: Status changed to %q.",
		payload.JobCode, payload.NewStatus)
	n.deliver(event.JobID, notify.Message{To: to, Body: body})
	return nil
}

// deliver spawns the send without joining it. The goroutine uses a
// fresh context so the originating request finishing or failing cannot
// cancel the delivery attempt.
func (n *NotificationService) deliver(jobID string, msg notify.Message) {
	if n.sender == nil {
		return
	}
	go func() {
		sid, err := n.sender.Send(context.Background(), msg)
		if err != nil {
			n.metrics.RecordNotification("error")
			n.logger.Warn("whatsapp send failed",
				zap.String("job_id", jobID),
				zap.String("to", msg.To),
				zap.Error(err))
			return
		}
		n.metrics.RecordNotification("ok")
		n.logger.Info("whatsapp sent",
			zap.String("job_id", jobID),
			zap.String("sid", sid))
	}()
}
