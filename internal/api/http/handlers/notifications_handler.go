package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Sam8709/repair-track-25-08/internal/api/dto"
	"github.com/Sam8709/repair-track-25-08/internal/notify"
)

// NotificationsHandler exposes the direct WhatsApp send endpoint. Its
// response contract is fixed: 400 when `to` or message content is
// missing, 500 with {error} on credential or provider failure, 200
// with {sid} on success.
type NotificationsHandler struct {
	sender             notify.Sender
	defaultCountryCode string
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(sender notify.Sender, defaultCountryCode string) *NotificationsHandler {
	return &NotificationsHandler{sender: sender, defaultCountryCode: defaultCountryCode}
}

// Send handles POST /send-whatsapp.
func (h *NotificationsHandler) Send(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.To == "" || (req.Body == "" && req.ContentSID == "") {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "missing to and message content"})
	}

	sid, err := h.sender.Send(c.UserContext(), notify.Message{
		To:               notify.Normalize(req.To, h.defaultCountryCode),
		Body:             req.Body,
		ContentSID:       req.ContentSID,
		ContentVariables: req.ContentVariables,
	})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(dto.SendNotificationResponse{SID: sid})
}
