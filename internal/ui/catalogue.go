package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/project"
)

// noKind labels catalogue items not tied to an element kind.
const noKind = "(aucun)"

var catalogueUnits = []string{model.UnitEach, model.UnitLinearMeter, model.UnitSquareMeter, model.UnitMeter}

// ─── Catalogue Dialog ──────────────────────────────────────

func (a *App) showCatalogueDialog() {
	list := container.NewVBox()
	var refreshList func()

	refreshList = func() {
		list.RemoveAll()
		cat := a.ws.Catalogue()
		if len(cat.Items) == 0 {
			list.Add(widget.NewLabel("Le bordereau est vide."))
			return
		}

		header := container.NewGridWithColumns(6,
			boldLabel("Désignation"),
			boldLabel("Lot"),
			boldLabel("Unité"),
			boldLabel("Prix unitaire"),
			widget.NewLabel(""),
			widget.NewLabel(""),
		)
		list.Add(header)
		list.Add(widget.NewSeparator())

		for _, it := range cat.Items {
			item := it
			row := container.NewGridWithColumns(6,
				widget.NewLabel(item.Designation),
				widget.NewLabel(item.Lot),
				widget.NewLabel(item.Unit),
				widget.NewLabel(a.takeoff.money(item.UnitPrice)),
				widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
					a.showCatalogueItemDialog(&item, refreshList)
				}),
				widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
					cat := *a.ws.Catalogue()
					cat.Items = append([]model.CatalogueItem(nil), cat.Items...)
					cat.Remove(item.ID)
					a.setCatalogue(cat)
					refreshList()
				}),
			)
			list.Add(row)
		}
	}

	refreshList()

	addBtn := widget.NewButtonWithIcon("Ajouter un ouvrage", theme.ContentAddIcon(), func() {
		a.showCatalogueItemDialog(nil, refreshList)
	})
	exportBtn := widget.NewButtonWithIcon("Exporter...", theme.DocumentSaveIcon(), a.exportCatalogue)

	toolbar := container.NewHBox(addBtn, layout.NewSpacer(), exportBtn)
	content := container.NewBorder(toolbar, nil, nil, nil, container.NewVScroll(list))

	d := dialog.NewCustom("Bordereau de prix", "Fermer", content, a.window)
	d.Resize(fyne.NewSize(800, 520))
	d.Show()
}

// showCatalogueItemDialog edits existing, or adds a new item when existing is nil.
func (a *App) showCatalogueItemDialog(existing *model.CatalogueItem, onDone func()) {
	designationEntry := widget.NewEntry()
	lotEntry := widget.NewEntry()
	subEntry := widget.NewEntry()
	priceEntry := widget.NewEntry()
	unitSelect := widget.NewSelect(catalogueUnits, nil)
	kindSelect := widget.NewSelect(kindOptions(), nil)

	title, confirm := "Nouvel ouvrage", "Ajouter"
	if existing != nil {
		title, confirm = "Modifier l'ouvrage", "Enregistrer"
		designationEntry.SetText(existing.Designation)
		lotEntry.SetText(existing.Lot)
		subEntry.SetText(existing.SubCategory)
		priceEntry.SetText(fmt.Sprintf("%.2f", existing.UnitPrice))
		unitSelect.SetSelected(existing.Unit)
		kindSelect.SetSelected(kindOption(existing.Kind))
	} else {
		lotEntry.SetText(a.ws.Settings().DefaultLot)
		priceEntry.SetText("0")
		unitSelect.SetSelected(model.UnitEach)
		kindSelect.SetSelected(noKind)
	}

	form := dialog.NewForm(title, confirm, "Annuler",
		[]*widget.FormItem{
			widget.NewFormItem("Désignation", designationEntry),
			widget.NewFormItem("Lot", lotEntry),
			widget.NewFormItem("Sous-catégorie", subEntry),
			widget.NewFormItem("Unité", unitSelect),
			widget.NewFormItem("Prix unitaire", priceEntry),
			widget.NewFormItem("Élément associé", kindSelect),
		},
		func(ok bool) {
			if !ok {
				return
			}
			item, err := catalogueItemFromForm(designationEntry.Text, lotEntry.Text, subEntry.Text,
				unitSelect.Selected, priceEntry.Text, kindSelect.Selected)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			cat := *a.ws.Catalogue()
			cat.Items = append([]model.CatalogueItem(nil), cat.Items...)
			if existing != nil {
				item.ID = existing.ID
				if target := cat.FindByID(existing.ID); target != nil {
					*target = item
				}
			} else {
				cat.Add(item)
			}
			a.setCatalogue(cat)
			onDone()
		},
		a.window,
	)
	form.Resize(fyne.NewSize(460, 420))
	form.Show()
}

func (a *App) exportCatalogue() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := project.SaveCatalogue(path, *a.ws.Catalogue()); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export terminé", fmt.Sprintf("Bordereau enregistré : %s", path), a.window)
	}, a.window)
	d.SetFileName("bordereau.yaml")
	d.Show()
}

// catalogueItemFromForm validates the item form. The returned item has a fresh id.
func catalogueItemFromForm(designation, lot, sub, unit, price, kind string) (model.CatalogueItem, error) {
	designation = strings.TrimSpace(designation)
	if designation == "" {
		return model.CatalogueItem{}, fmt.Errorf("la désignation est obligatoire")
	}
	if unit == "" {
		return model.CatalogueItem{}, fmt.Errorf("l'unité est obligatoire")
	}
	p, err := parseNumber(price)
	if err != nil || p < 0 {
		return model.CatalogueItem{}, fmt.Errorf("prix unitaire invalide: %q", price)
	}
	item := model.NewCatalogueItem(designation, strings.TrimSpace(lot), strings.TrimSpace(sub), unit, p)
	item.Kind = kindFromOption(kind)
	return item, nil
}

func kindOptions() []string {
	opts := []string{noKind}
	for _, k := range model.CalibrationSequence {
		opts = append(opts, k.Label())
	}
	return opts
}

func kindOption(k model.ElementKind) string {
	if k == "" {
		return noKind
	}
	return k.Label()
}

func kindFromOption(label string) model.ElementKind {
	for _, k := range model.CalibrationSequence {
		if k.Label() == label {
			return k
		}
	}
	return ""
}
