package enums

import "fmt"

// GasType classifies the gas carried by a cylinder product.
type GasType string

const (
	GasTypeLPG        GasType = "lpg"
	GasTypeIndustrial GasType = "industrial"
	GasTypeCooking    GasType = "cooking"
)

var validGasTypes = []GasType{
	GasTypeLPG,
	GasTypeIndustrial,
	GasTypeCooking,
}

// String implements fmt.Stringer.
func (g GasType) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GasType.
func (g GasType) IsValid() bool {
	for _, candidate := range validGasTypes {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGasType converts raw input into a GasType.
func ParseGasType(value string) (GasType, error) {
	for _, candidate := range validGasTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gas type %q", value)
}

// CylinderSize is the catalogue size of a gas cylinder.
type CylinderSize string

const (
	CylinderSize3KG  CylinderSize = "3kg"
	CylinderSize6KG  CylinderSize = "6kg"
	CylinderSize13KG CylinderSize = "13kg"
	CylinderSize50KG CylinderSize = "50kg"
)

var validCylinderSizes = []CylinderSize{
	CylinderSize3KG,
	CylinderSize6KG,
	CylinderSize13KG,
	CylinderSize50KG,
}

// String implements fmt.Stringer.
func (c CylinderSize) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CylinderSize.
func (c CylinderSize) IsValid() bool {
	for _, candidate := range validCylinderSizes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCylinderSize converts raw input into a CylinderSize.
func ParseCylinderSize(value string) (CylinderSize, error) {
	for _, candidate := range validCylinderSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cylinder size %q", value)
}
