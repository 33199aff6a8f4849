package ir

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrInvalidFieldValue is returned when a canonical string is outside the
// accepted enumeration for a field.
var ErrInvalidFieldValue = errors.New("invalid field value")

// NumericType says whether schedule values are real-valued or integral.
// The zero value means the numeric type is not specified.
type NumericType int

const (
	NumericUnspecified NumericType = iota
	NumericContinuous
	NumericDiscrete
)

// String returns the canonical spelling used by the persisted schema.
func (n NumericType) String() string {
	switch n {
	case NumericContinuous:
		return "Continuous"
	case NumericDiscrete:
		return "Discrete"
	default:
		return ""
	}
}

// IsContinuous reports whether n is NumericContinuous.
func (n NumericType) IsContinuous() bool {
	return n == NumericContinuous
}

// ParseNumericType converts a canonical string (case-insensitive) to a
// NumericType. The empty string is rejected; use NumericUnspecified directly.
func ParseNumericType(s string) (NumericType, error) {
	switch fold(s) {
	case fold("Continuous"):
		return NumericContinuous, nil
	case fold("Discrete"):
		return NumericDiscrete, nil
	}
	return NumericUnspecified, fmt.Errorf("numeric type %q: %w", s, ErrInvalidFieldValue)
}

// MarshalText implements encoding.TextMarshaler.
func (n NumericType) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text decodes to
// NumericUnspecified.
func (n *NumericType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*n = NumericUnspecified
		return nil
	}
	parsed, err := ParseNumericType(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// UnitType is the unit family a schedule's values are expressed in.
//
// UnitUnspecified is the zero value. Role descriptors use it for roles that
// declare no unit family; it matches like UnitDimensionless but selects a
// different default constraint name.
type UnitType int

const (
	UnitUnspecified UnitType = iota
	UnitDimensionless
	UnitTemperature
	UnitDeltaTemperature
	UnitPrecipitationRate
	UnitAngle
	UnitConvectionCoefficient
	UnitActivityLevel
	UnitVelocity
	UnitCapacity
	UnitPower
	UnitAvailability
	UnitPercent
	UnitControl
	UnitMode
	UnitControlMode
	UnitVolumetricFlowRate
	UnitMassFlowRate
	UnitRotationsPerMinute
	UnitPressure
	UnitClothingInsulation
	UnitLinearPowerDensity
)

var unitNames = [...]string{
	UnitUnspecified:           "",
	UnitDimensionless:         "Dimensionless",
	UnitTemperature:           "Temperature",
	UnitDeltaTemperature:      "DeltaTemperature",
	UnitPrecipitationRate:     "PrecipitationRate",
	UnitAngle:                 "Angle",
	UnitConvectionCoefficient: "ConvectionCoefficient",
	UnitActivityLevel:         "ActivityLevel",
	UnitVelocity:              "Velocity",
	UnitCapacity:              "Capacity",
	UnitPower:                 "Power",
	UnitAvailability:          "Availability",
	UnitPercent:               "Percent",
	UnitControl:               "Control",
	UnitMode:                  "Mode",
	UnitControlMode:           "ControlMode",
	UnitVolumetricFlowRate:    "VolumetricFlowRate",
	UnitMassFlowRate:          "MassFlowRate",
	UnitRotationsPerMinute:    "RotationsPerMinute",
	UnitPressure:              "Pressure",
	UnitClothingInsulation:    "ClothingInsulation",
	UnitLinearPowerDensity:    "LinearPowerDensity",
}

// unitsByFold maps case-folded canonical names to unit types.
var unitsByFold = func() map[string]UnitType {
	m := make(map[string]UnitType, len(unitNames))
	for u, name := range unitNames {
		if name != "" {
			m[fold(name)] = UnitType(u)
		}
	}
	return m
}()

// UnitTypes returns every specified unit type in declaration order.
func UnitTypes() []UnitType {
	out := make([]UnitType, 0, len(unitNames)-1)
	for u := UnitDimensionless; int(u) < len(unitNames); u++ {
		out = append(out, u)
	}
	return out
}

// String returns the canonical spelling. UnitUnspecified renders as "".
func (u UnitType) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return fmt.Sprintf("UnitType(%d)", int(u))
	}
	return unitNames[u]
}

// Valid reports whether u is UnitUnspecified or one of the declared unit types.
func (u UnitType) Valid() bool {
	return u >= 0 && int(u) < len(unitNames)
}

// Effective returns the unit type used for matching: UnitUnspecified is
// treated as UnitDimensionless.
func (u UnitType) Effective() UnitType {
	if u == UnitUnspecified {
		return UnitDimensionless
	}
	return u
}

// ParseUnitType converts a canonical string (case-insensitive, surrounding
// space ignored) to a UnitType. Empty or unknown names are rejected.
func ParseUnitType(s string) (UnitType, error) {
	if u, ok := unitsByFold[fold(s)]; ok {
		return u, nil
	}
	return UnitUnspecified, fmt.Errorf("unit type %q: %w", s, ErrInvalidFieldValue)
}

// MarshalText implements encoding.TextMarshaler.
func (u UnitType) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text decodes to
// UnitUnspecified.
func (u *UnitType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = UnitUnspecified
		return nil
	}
	parsed, err := ParseUnitType(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// fold case-folds s for case-insensitive comparison.
// A Caser is stateful, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
