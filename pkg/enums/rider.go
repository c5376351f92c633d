package enums

import "fmt"

// RiderStatus tracks a rider's standing on the platform. Availability
// for new jobs is a separate flag on the rider profile.
type RiderStatus string

const (
	RiderStatusPending     RiderStatus = "pending"
	RiderStatusActive      RiderStatus = "active"
	RiderStatusOffline     RiderStatus = "offline"
	RiderStatusBusy        RiderStatus = "busy"
	RiderStatusSuspended   RiderStatus = "suspended"
	RiderStatusDeactivated RiderStatus = "deactivated"
)

var validRiderStatuses = []RiderStatus{
	RiderStatusPending,
	RiderStatusActive,
	RiderStatusOffline,
	RiderStatusBusy,
	RiderStatusSuspended,
	RiderStatusDeactivated,
}

// String implements fmt.Stringer.
func (r RiderStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RiderStatus.
func (r RiderStatus) IsValid() bool {
	for _, candidate := range validRiderStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRiderStatus converts raw input into a RiderStatus.
func ParseRiderStatus(value string) (RiderStatus, error) {
	for _, candidate := range validRiderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rider status %q", value)
}

// VehicleType identifies what a rider delivers with.
type VehicleType string

const (
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeBicycle    VehicleType = "bicycle"
	VehicleTypeCar        VehicleType = "car"
	VehicleTypeTruck      VehicleType = "truck"
)

var validVehicleTypes = []VehicleType{
	VehicleTypeMotorcycle,
	VehicleTypeBicycle,
	VehicleTypeCar,
	VehicleTypeTruck,
}

// String implements fmt.Stringer.
func (v VehicleType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleType.
func (v VehicleType) IsValid() bool {
	for _, candidate := range validVehicleTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleType converts raw input into a VehicleType.
func ParseVehicleType(value string) (VehicleType, error) {
	for _, candidate := range validVehicleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle type %q", value)
}

// EarningType classifies a rider earnings credit.
type EarningType string

const (
	EarningTypeDelivery   EarningType = "delivery"
	EarningTypeBonus      EarningType = "bonus"
	EarningTypeIncentive  EarningType = "incentive"
	EarningTypeTip        EarningType = "tip"
	EarningTypeAdjustment EarningType = "adjustment"
)

var validEarningTypes = []EarningType{
	EarningTypeDelivery,
	EarningTypeBonus,
	EarningTypeIncentive,
	EarningTypeTip,
	EarningTypeAdjustment,
}

// String implements fmt.Stringer.
func (e EarningType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EarningType.
func (e EarningType) IsValid() bool {
	for _, candidate := range validEarningTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEarningType converts raw input into an EarningType.
func ParseEarningType(value string) (EarningType, error) {
	for _, candidate := range validEarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid earning type %q", value)
}
