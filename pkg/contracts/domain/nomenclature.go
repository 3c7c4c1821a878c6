package domain

import (
	"fmt"
	"strings"
)

// Location represents a country or region of the multi-regional tables
type Location struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name"`
}

// Sector represents a producing activity in one location
type Sector struct {
	Key      string `json:"key"`
	Location string `json:"location" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Code1    string `json:"code_1"`
	Code2    string `json:"code_2"`
}

// Product represents a product supplied in one location
type Product struct {
	Key      string `json:"key"`
	Location string `json:"location" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Code1    string `json:"code_1"`
	Code2    string `json:"code_2"`
	Unit     string `json:"unit"`
}

// ExtensionCategory represents one row of the environmental extension accounts
type ExtensionCategory struct {
	Key         string        `json:"key"`
	Name        string        `json:"name" validate:"required"`
	Unit        string        `json:"unit"`
	Compartment string        `json:"compartment,omitempty"`
	Kind        ExtensionKind `json:"kind" validate:"required"`
}

// SectorKey builds the composite key of a sector
func SectorKey(location, name string) string {
	return location + "-" + name
}

// ProductKey builds the composite key of a product
func ProductKey(location, name string) string {
	return location + "-" + name
}

// ExtensionKey builds the composite key of an extension category. The kind is
// part of the key because publishers reuse the same name on different sheets.
func ExtensionKey(kind ExtensionKind, name, compartment string) string {
	if compartment == "" {
		return string(kind) + "-" + name
	}
	return string(kind) + "-" + name + "-" + compartment
}

// ExtensionKind classifies extension rows by the sheet they come from
type ExtensionKind string

const (
	KindResource                  ExtensionKind = "resource"
	KindLandUse                   ExtensionKind = "land_use"
	KindEmission                  ExtensionKind = "emission"
	KindUnregisteredWasteEmission ExtensionKind = "unregistered_waste_emission"
	KindWasteSupply               ExtensionKind = "waste_supply"
	KindWasteUse                  ExtensionKind = "waste_use"
	KindPackagingSupply           ExtensionKind = "packaging_supply"
	KindPackagingUse              ExtensionKind = "packaging_use"
	KindMachinerySupply           ExtensionKind = "machinery_supply"
	KindMachineryUse              ExtensionKind = "machinery_use"
	KindStockAddition             ExtensionKind = "stock_addition"
	KindOtherSupplyUse            ExtensionKind = "other_supply_use"
)

// ExtensionKinds lists every known kind in publication order
func ExtensionKinds() []ExtensionKind {
	return []ExtensionKind{
		KindResource,
		KindLandUse,
		KindEmission,
		KindUnregisteredWasteEmission,
		KindWasteSupply,
		KindWasteUse,
		KindPackagingSupply,
		KindPackagingUse,
		KindMachinerySupply,
		KindMachineryUse,
		KindStockAddition,
		KindOtherSupplyUse,
	}
}

// kindAliases maps the spellings used in publisher workbooks
var kindAliases = map[string]ExtensionKind{
	"land use":                    KindLandUse,
	"unregistered waste emission": KindUnregisteredWasteEmission,
	"waste supply":                KindWasteSupply,
	"waste use":                   KindWasteUse,
	"packaging supply":            KindPackagingSupply,
	"packaging use":               KindPackagingUse,
	"machinery supply":            KindMachinerySupply,
	"machinery use":               KindMachineryUse,
	"stock addition":              KindStockAddition,
	"other supply":                KindOtherSupplyUse,
	"other supply use":            KindOtherSupplyUse,
}

// ParseExtensionKind parses a kind identifier
func ParseExtensionKind(s string) (ExtensionKind, error) {
	s = strings.TrimSpace(s)
	for _, k := range ExtensionKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	if k, ok := kindAliases[strings.ToLower(s)]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown extension kind %q", s)
}

// IsValid reports whether k is a known kind
func (k ExtensionKind) IsValid() bool {
	_, err := ParseExtensionKind(string(k))
	return err == nil && strings.TrimSpace(string(k)) == string(k) && !strings.Contains(string(k), " ")
}
