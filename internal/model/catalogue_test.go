package model

import "testing"

func TestDefaultCatalogueCoversEveryKind(t *testing.T) {
	cat := DefaultCatalogue()
	for _, k := range CalibrationSequence {
		if len(cat.ForKind(k)) == 0 {
			t.Errorf("expected at least one catalogue item for %s", k)
		}
	}
}

func TestCatalogueAddRemoveFind(t *testing.T) {
	cat := NewCatalogue()
	item := NewCatalogueItem("Plinthe bois", "Menuiseries intérieures", "Finitions", UnitLinearMeter, 12.5)
	cat.Add(item)

	if found := cat.FindByID(item.ID); found == nil || found.Designation != "Plinthe bois" {
		t.Fatalf("expected to find item by id, got %+v", found)
	}
	if found := cat.FindByDesignation("plinthe BOIS"); found == nil {
		t.Error("designation lookup should be case-insensitive")
	}
	if cat.FindByID("missing") != nil {
		t.Error("expected nil for unknown id")
	}
	if !cat.Remove(item.ID) {
		t.Error("remove should report success")
	}
	if cat.Remove(item.ID) {
		t.Error("second remove should report failure")
	}
	if len(cat.Items) != 0 {
		t.Errorf("expected empty catalogue, got %d items", len(cat.Items))
	}
}

func TestCatalogueItemToWorkItem(t *testing.T) {
	item := NewCatalogueItem("Carrelage", "Revêtements de sols", "Carrelage", UnitSquareMeter, 65)
	w := item.ToWorkItem(12)
	if w.Designation != item.Designation || w.Lot != item.Lot || w.SubCategory != item.SubCategory {
		t.Errorf("catalogue fields not copied: %+v", w)
	}
	if w.Quantity != 12 || w.UnitPrice != 65 || w.Unit != UnitSquareMeter {
		t.Errorf("unexpected quantity/price/unit: %+v", w)
	}
	if w.ID == "" || w.ID == item.ID {
		t.Error("work item should get its own id")
	}
}

func TestCatalogueLotsInsertionOrder(t *testing.T) {
	cat := NewCatalogue()
	cat.Add(NewCatalogueItem("a", "Peinture", "", UnitSquareMeter, 1))
	cat.Add(NewCatalogueItem("b", "Électricité", "", UnitEach, 1))
	cat.Add(NewCatalogueItem("c", "Peinture", "", UnitSquareMeter, 1))

	lots := cat.Lots()
	if len(lots) != 2 || lots[0] != "Peinture" || lots[1] != "Électricité" {
		t.Errorf("unexpected lots %v", lots)
	}
	if names := cat.Names(); len(names) != 3 || names[1] != "b" {
		t.Errorf("unexpected names %v", names)
	}
}
