// Package notify delivers one-shot WhatsApp messages through Twilio.
// Delivery is a courtesy: callers in the job lifecycle treat every
// failure as non-fatal.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Sam8709/repair-track-25-08/internal/config"
)

// ErrNotConfigured indicates Twilio credentials are absent. This is
// surfaced at send time, never at startup.
var ErrNotConfigured = errors.New("twilio credentials not configured")

// ErrMissingContent indicates neither a body nor a template reference
// was supplied.
var ErrMissingContent = errors.New("message requires body or content sid")

// Message is a single outbound WhatsApp message. Either Body or
// ContentSID (plus optional ContentVariables) must be set.
type Message struct {
	To               string
	Body             string
	ContentSID       string
	ContentVariables map[string]string
}

// Sender attempts delivery of one message and returns the provider's
// message identifier.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// TwilioSender sends WhatsApp messages via the Twilio REST API.
type TwilioSender struct {
	cfg    config.WhatsAppConfig
	client *twilio.RestClient
}

// NewTwilioSender builds a sender. A client is only constructed when
// credentials are present; otherwise Send reports ErrNotConfigured.
func NewTwilioSender(cfg config.WhatsAppConfig) *TwilioSender {
	s := &TwilioSender{cfg: cfg}
	if cfg.AccountSID != "" && cfg.AuthToken != "" {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
	}
	return s
}

// Send performs one delivery attempt. No retry, no queue, no delivery
// receipt tracking.
func (s *TwilioSender) Send(_ context.Context, msg Message) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}
	if msg.Body == "" && msg.ContentSID == "" {
		return "", ErrMissingContent
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(whatsAppAddress(s.cfg.FromNumber))
	params.SetTo(whatsAppAddress(msg.To))
	if msg.ContentSID != "" {
		params.SetContentSid(msg.ContentSID)
		if len(msg.ContentVariables) > 0 {
			vars, err := json.Marshal(msg.ContentVariables)
			if err != nil {
				return "", err
			}
			params.SetContentVariables(string(vars))
		}
	} else {
		params.SetBody(msg.Body)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
