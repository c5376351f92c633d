package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// Notification is an in-app notification row materialized by the event
// consumer. Dispatch to push/email/SMS is out of scope.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Title     string                 `gorm:"column:title;not null"`
	Message   string                 `gorm:"column:message;not null"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
