package model

import (
	"strings"

	"github.com/google/uuid"
)

// CatalogueItem is a priced library entry used to seed work items.
type CatalogueItem struct {
	ID          string      `json:"id" yaml:"id"`
	Designation string      `json:"designation" yaml:"designation"`
	Lot         string      `json:"lot" yaml:"lot"`
	SubCategory string      `json:"sub_category,omitempty" yaml:"sub_category,omitempty"`
	Unit        string      `json:"unit" yaml:"unit"`
	UnitPrice   float64     `json:"unit_price" yaml:"unit_price"`
	Kind        ElementKind `json:"kind,omitempty" yaml:"kind,omitempty"` // element kind this item is usually attached to
}

// NewCatalogueItem creates a new CatalogueItem with a generated ID.
func NewCatalogueItem(designation, lot, subCategory, unit string, unitPrice float64) CatalogueItem {
	return CatalogueItem{
		ID:          uuid.New().String()[:8],
		Designation: designation,
		Lot:         lot,
		SubCategory: subCategory,
		Unit:        unit,
		UnitPrice:   unitPrice,
	}
}

func newKindItem(kind ElementKind, designation, lot, subCategory, unit string, unitPrice float64) CatalogueItem {
	item := NewCatalogueItem(designation, lot, subCategory, unit, unitPrice)
	item.Kind = kind
	return item
}

// ToWorkItem converts the catalogue entry into a work item of the given quantity.
func (c CatalogueItem) ToWorkItem(qty float64) WorkItem {
	w := NewWorkItem(c.Designation, c.Lot, c.Unit, qty, c.UnitPrice)
	w.SubCategory = c.SubCategory
	return w
}

// Catalogue holds the user's library of priced items.
type Catalogue struct {
	Items []CatalogueItem `json:"items" yaml:"items"`
}

// NewCatalogue creates an empty catalogue.
func NewCatalogue() Catalogue {
	return Catalogue{Items: []CatalogueItem{}}
}

// DefaultCatalogue returns a catalogue populated with common French building trades.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		Items: []CatalogueItem{
			newKindItem(KindDoor, "Porte intérieure isoplane 83x204", "Menuiseries intérieures", "Portes", UnitEach, 185),
			newKindItem(KindDoor, "Bloc-porte palier", "Menuiseries intérieures", "Portes", UnitEach, 620),
			newKindItem(KindWindow, "Fenêtre PVC 2 vantaux 125x115", "Menuiseries extérieures", "Fenêtres", UnitEach, 540),
			newKindItem(KindWindow, "Porte-fenêtre PVC 215x140", "Menuiseries extérieures", "Fenêtres", UnitEach, 890),
			newKindItem(KindWall, "Mur parpaing 20 cm", "Gros œuvre", "Maçonnerie", UnitLinearMeter, 45),
			newKindItem(KindWall, "Cloison placo 72/48", "Plâtrerie", "Cloisons", UnitLinearMeter, 38),
			newKindItem(KindRoom, "Carrelage sol grès cérame", "Revêtements de sols", "Carrelage", UnitSquareMeter, 65),
			newKindItem(KindRoom, "Peinture plafond 2 couches", "Peinture", "Plafonds", UnitSquareMeter, 18),
			NewCatalogueItem("Prise de courant 16A", "Électricité", "Appareillage", UnitEach, 42),
			NewCatalogueItem("Point lumineux", "Électricité", "Éclairage", UnitEach, 55),
		},
	}
}

// Add adds an item to the catalogue.
func (c *Catalogue) Add(item CatalogueItem) {
	c.Items = append(c.Items, item)
}

// Remove removes an item by ID. Returns true if found and removed.
func (c *Catalogue) Remove(id string) bool {
	for i, it := range c.Items {
		if it.ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the item with the given ID, or nil.
func (c *Catalogue) FindByID(id string) *CatalogueItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// FindByDesignation returns a pointer to the first item whose designation
// matches case-insensitively, or nil.
func (c *Catalogue) FindByDesignation(designation string) *CatalogueItem {
	for i := range c.Items {
		if strings.EqualFold(c.Items[i].Designation, designation) {
			return &c.Items[i]
		}
	}
	return nil
}

// ForKind returns the items usually attached to the given element kind.
func (c *Catalogue) ForKind(kind ElementKind) []CatalogueItem {
	var out []CatalogueItem
	for _, it := range c.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// Names returns a list of designations for UI dropdowns.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.Items))
	for i, it := range c.Items {
		names[i] = it.Designation
	}
	return names
}

// Lots returns the distinct lots in insertion order.
func (c *Catalogue) Lots() []string {
	seen := make(map[string]bool)
	var lots []string
	for _, it := range c.Items {
		if !seen[it.Lot] {
			seen[it.Lot] = true
			lots = append(lots, it.Lot)
		}
	}
	return lots
}
