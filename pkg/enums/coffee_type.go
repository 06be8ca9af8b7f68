package enums

import "fmt"

// CoffeeType is the traded commodity variety quoted on the market board.
type CoffeeType string

const (
	CoffeeTypeArabica CoffeeType = "Arábica"
	CoffeeTypeRobusta CoffeeType = "Robusta"
)

var validCoffeeTypes = []CoffeeType{
	CoffeeTypeArabica,
	CoffeeTypeRobusta,
}

// String implements fmt.Stringer.
func (c CoffeeType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CoffeeType.
func (c CoffeeType) IsValid() bool {
	for _, candidate := range validCoffeeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCoffeeType converts raw input into a CoffeeType.
func ParseCoffeeType(value string) (CoffeeType, error) {
	for _, candidate := range validCoffeeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coffee type %q", value)
}
