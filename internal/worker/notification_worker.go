package worker

import (
	"github.com/Sam8709/repair-track-25-08/internal/service"
)

// StartNotificationWorker registers notification handlers on the event
// dispatcher. Delivery itself happens in detached goroutines.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
