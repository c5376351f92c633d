package enums

import "fmt"

// BusinessType classifies what a vendor sells.
type BusinessType string

const (
	BusinessTypeRetailer      BusinessType = "retailer"
	BusinessTypeRefillStation BusinessType = "refill_station"
	BusinessTypeBoth          BusinessType = "both"
)

var validBusinessTypes = []BusinessType{
	BusinessTypeRetailer,
	BusinessTypeRefillStation,
	BusinessTypeBoth,
}

// String implements fmt.Stringer.
func (b BusinessType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BusinessType.
func (b BusinessType) IsValid() bool {
	for _, candidate := range validBusinessTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// SellsRefills reports whether the vendor can serve refill line items.
func (b BusinessType) SellsRefills() bool {
	return b == BusinessTypeRefillStation || b == BusinessTypeBoth
}

// ParseBusinessType converts raw input into a BusinessType.
func ParseBusinessType(value string) (BusinessType, error) {
	for _, candidate := range validBusinessTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid business type %q", value)
}

// VendorStatus tracks a vendor's standing on the platform.
type VendorStatus string

const (
	VendorStatusPending     VendorStatus = "pending"
	VendorStatusActive      VendorStatus = "active"
	VendorStatusSuspended   VendorStatus = "suspended"
	VendorStatusDeactivated VendorStatus = "deactivated"
)

var validVendorStatuses = []VendorStatus{
	VendorStatusPending,
	VendorStatusActive,
	VendorStatusSuspended,
	VendorStatusDeactivated,
}

// String implements fmt.Stringer.
func (v VendorStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorStatus.
func (v VendorStatus) IsValid() bool {
	for _, candidate := range validVendorStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorStatus converts raw input into a VendorStatus.
func ParseVendorStatus(value string) (VendorStatus, error) {
	for _, candidate := range validVendorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor status %q", value)
}
