package enums

import "fmt"

// InventoryKind is the physical processing state of stored coffee bags.
type InventoryKind string

const (
	InventoryKindCoco        InventoryKind = "Em Coco"
	InventoryKindBeneficiado InventoryKind = "Beneficiado"
	InventoryKindEscolha     InventoryKind = "Escolha"
	InventoryKindRobusta     InventoryKind = "Robusta"
)

var validInventoryKinds = []InventoryKind{
	InventoryKindCoco,
	InventoryKindBeneficiado,
	InventoryKindEscolha,
	InventoryKindRobusta,
}

// CoffeeType maps the physical state onto the market commodity it is valued
// against. Everything except robusta stock trades at the arabica quote.
func (k InventoryKind) CoffeeType() CoffeeType {
	if k == InventoryKindRobusta {
		return CoffeeTypeRobusta
	}
	return CoffeeTypeArabica
}

// String implements fmt.Stringer.
func (k InventoryKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known InventoryKind.
func (k InventoryKind) IsValid() bool {
	for _, candidate := range validInventoryKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseInventoryKind converts raw input into an InventoryKind.
func ParseInventoryKind(value string) (InventoryKind, error) {
	for _, candidate := range validInventoryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory kind %q", value)
}
