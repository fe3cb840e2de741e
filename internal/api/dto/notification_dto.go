package dto

// SendNotificationRequest mirrors the provider-facing send endpoint:
// `to` plus at least one of `body` or `contentSid` is required.
type SendNotificationRequest struct {
	To               string            `json:"to"`
	Body             string            `json:"body"`
	ContentSID       string            `json:"contentSid"`
	ContentVariables map[string]string `json:"contentVariables"`
}

// SendNotificationResponse returns the provider message identifier.
type SendNotificationResponse struct {
	SID string `json:"sid"`
}
