package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaanagas/kaanagas-backend/pkg/enums"
)

// Delivery is the rider-side fulfillment record, one per order. Its
// state machine is subordinate to the order's; order status only moves
// to out_for_delivery/delivered/cancelled through delivery transitions.
type Delivery struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	RiderID uuid.UUID `gorm:"column:rider_id;type:uuid;not null;index"`

	Status enums.DeliveryStatus `gorm:"column:status;type:text;not null;default:'assigned'"`

	AssignedAt  time.Time  `gorm:"column:assigned_at;autoCreateTime"`
	AcceptedAt  *time.Time `gorm:"column:accepted_at"`
	PickedUpAt  *time.Time `gorm:"column:picked_up_at"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`

	PickupLatitude    *float64 `gorm:"column:pickup_latitude"`
	PickupLongitude   *float64 `gorm:"column:pickup_longitude"`
	DeliveryLatitude  *float64 `gorm:"column:delivery_latitude"`
	DeliveryLongitude *float64 `gorm:"column:delivery_longitude"`

	EstimatedDistanceKM *float64 `gorm:"column:estimated_distance_km"`
	ActualDistanceKM    *float64 `gorm:"column:actual_distance_km"`
	EstimatedDuration   *int     `gorm:"column:estimated_duration_minutes"`
	ActualDuration      *int     `gorm:"column:actual_duration_minutes"`

	BaseFee       decimal.Decimal `gorm:"column:base_fee;type:numeric(10,2);not null;default:0"`
	DistanceFee   decimal.Decimal `gorm:"column:distance_fee;type:numeric(10,2);not null;default:0"`
	TotalEarnings decimal.Decimal `gorm:"column:total_earnings;type:numeric(10,2);not null;default:0"`

	Notes         *string `gorm:"column:notes"`
	FailureReason *string `gorm:"column:failure_reason"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
