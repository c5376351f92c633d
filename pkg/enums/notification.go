package enums

import "fmt"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationTypeOrderUpdate    NotificationType = "order_update"
	NotificationTypePaymentUpdate  NotificationType = "payment_update"
	NotificationTypeDeliveryUpdate NotificationType = "delivery_update"
	NotificationTypeSystemUpdate   NotificationType = "system_update"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderUpdate,
	NotificationTypePaymentUpdate,
	NotificationTypeDeliveryUpdate,
	NotificationTypeSystemUpdate,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
