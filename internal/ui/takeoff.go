package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/takeoff"
)

// Takeoff panel views.
const (
	viewItems    = "Ouvrages"
	viewLot      = "Par lot"
	viewLocation = "Par localisation"
	viewSurface  = "Par surface"
)

// takeoffPanel lists the committed work items and the three rollups.
type takeoffPanel struct {
	app     *App
	content fyne.CanvasObject

	view  *widget.RadioGroup
	body  *fyne.Container
	total *widget.Label
}

func newTakeoffPanel(a *App) *takeoffPanel {
	p := &takeoffPanel{app: a}
	p.body = container.NewVBox()
	p.total = widget.NewLabelWithStyle("", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true})

	p.view = widget.NewRadioGroup([]string{viewItems, viewLot, viewLocation, viewSurface}, func(string) {
		p.refresh()
	})
	p.view.Horizontal = true
	p.view.Required = true
	p.view.Selected = viewLot

	addBtn := widget.NewButtonWithIcon("Ajouter", theme.ContentAddIcon(), p.showAddDialog)

	p.content = container.NewBorder(
		container.NewVBox(
			container.NewHBox(
				widget.NewLabelWithStyle("Métré", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
				layout.NewSpacer(),
				addBtn,
			),
			p.view,
			widget.NewSeparator(),
		),
		p.total,
		nil, nil,
		container.NewVScroll(p.body),
	)
	return p
}

func (p *takeoffPanel) money(v float64) string {
	return fmt.Sprintf("%.2f %s", v, p.app.ws.Settings().Currency)
}

func boldLabel(text string) *widget.Label {
	return widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
}

func (p *takeoffPanel) refresh() {
	if p.view == nil {
		return
	}
	p.body.RemoveAll()
	s := p.app.ws.Summary()
	p.total.SetText(fmt.Sprintf("%d ouvrage(s) | Total HT : %s", s.ItemCount, p.money(s.GrandTotal)))

	if s.ItemCount == 0 && p.view.Selected != viewSurface {
		p.body.Add(widget.NewLabel("Aucun ouvrage. Calibrez le plan ou utilisez les outils de mesure."))
		return
	}

	switch p.view.Selected {
	case viewItems:
		p.renderItems()
	case viewLocation:
		p.renderLocations(s.ByLocation)
	case viewSurface:
		p.renderSurfaces(s.BySurface)
	default:
		p.renderLots(s.ByLot)
	}
}

// ─── Views ─────────────────────────────────────────────────

func (p *takeoffPanel) renderItems() {
	for _, w := range p.app.ws.WorkItems() {
		p.body.Add(p.itemRow(w, ""))
	}
}

func (p *takeoffPanel) renderLots(view takeoff.LotView) {
	for _, lot := range view.Lots {
		p.body.Add(container.NewHBox(boldLabel(lot.Name), layout.NewSpacer(), boldLabel(p.money(lot.Subtotal))))
		for _, sub := range lot.SubCategories {
			p.body.Add(container.NewHBox(widget.NewLabel("  "+sub.Name), layout.NewSpacer(), widget.NewLabel(p.money(sub.Subtotal))))
			for _, w := range sub.Items {
				p.body.Add(p.itemRow(w, "    "))
			}
		}
	}
}

func (p *takeoffPanel) renderLocations(view takeoff.LocationView) {
	for _, loc := range view.Locations {
		p.body.Add(container.NewHBox(boldLabel(loc.Key), layout.NewSpacer(), boldLabel(p.money(loc.Subtotal))))
		for _, w := range loc.Items {
			p.body.Add(p.itemRow(w, "  "))
		}
	}
}

func (p *takeoffPanel) renderSurfaces(view takeoff.SurfaceView) {
	if len(view.Surfaces) == 0 {
		p.body.Add(widget.NewLabel("Aucune surface. Sélectionnez des pièces sur le plan."))
		return
	}
	for _, g := range view.Surfaces {
		surface := g.Surface
		area := fmt.Sprintf("%.2f m²", surface.Superficie)
		if surface.Overridden {
			area += " (saisie)"
		}
		edit := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() { p.showSurfaceDialog(surface) })
		p.body.Add(container.NewHBox(boldLabel(surface.Name), widget.NewLabel(area), layout.NewSpacer(),
			boldLabel(p.money(g.Subtotal)), edit))
		for _, w := range g.Items {
			item := w
			unlink := widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
				p.app.ws.UnlinkFromSurface(item.ID, surface.ID)
			})
			p.body.Add(container.NewBorder(nil, nil, nil, unlink, p.itemRow(item, "  ")))
		}
	}
	p.body.Add(widget.NewSeparator())
	p.body.Add(container.NewHBox(widget.NewLabel("Total des ouvrages liés"), layout.NewSpacer(), boldLabel(p.money(view.Total))))
}

// itemRow shows one work item with its edit and delete actions.
func (p *takeoffPanel) itemRow(w model.WorkItem, indent string) fyne.CanvasObject {
	item := w // capture
	text := fmt.Sprintf("%s%s  %.2f %s x %s", indent, item.Designation, item.Quantity, item.Unit, p.money(item.UnitPrice))
	if c := item.EffectiveCoefficient(); c != 1 {
		text += fmt.Sprintf(" x %.2f", c)
	}
	actions := container.NewHBox(
		widget.NewLabel(p.money(takeoff.Cost(item))),
		widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() { p.showEditDialog(item) }),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { p.app.ws.DeleteWorkItem(item.ID) }),
	)
	return container.NewBorder(nil, nil, nil, actions, widget.NewLabel(text))
}

// ─── Dialogs ───────────────────────────────────────────────

// parseNumber accepts a decimal comma.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

func (p *takeoffPanel) showAddDialog() {
	cat := p.app.ws.Catalogue()
	var ids, labels []string
	for _, item := range cat.Items {
		ids = append(ids, item.ID)
		labels = append(labels, fmt.Sprintf("%s [%s]", item.Designation, item.Unit))
	}
	itemSelect := widget.NewSelect(labels, nil)
	qtyEntry := widget.NewEntry()
	qtyEntry.SetText("1")

	form := dialog.NewForm("Ajouter un ouvrage", "Ajouter", "Annuler",
		[]*widget.FormItem{
			widget.NewFormItem("Ouvrage", itemSelect),
			widget.NewFormItem("Quantité", qtyEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			i := itemSelect.SelectedIndex()
			if i < 0 {
				dialog.ShowError(fmt.Errorf("choisissez un ouvrage du bordereau"), p.app.window)
				return
			}
			qty, err := parseNumber(qtyEntry.Text)
			if err != nil {
				dialog.ShowError(fmt.Errorf("quantité invalide: %q", qtyEntry.Text), p.app.window)
				return
			}
			if _, err := p.app.ws.AddFromCatalogue(ids[i], qty); err != nil {
				dialog.ShowError(err, p.app.window)
			}
		}, p.app.window)
	form.Resize(fyne.NewSize(480, 220))
	form.Show()
}

func (p *takeoffPanel) showEditDialog(w model.WorkItem) {
	qtyEntry := widget.NewEntry()
	qtyEntry.SetText(strconv.FormatFloat(w.Quantity, 'f', -1, 64))
	priceEntry := widget.NewEntry()
	priceEntry.SetText(strconv.FormatFloat(w.UnitPrice, 'f', -1, 64))
	coefEntry := widget.NewEntry()
	coefEntry.SetPlaceHolder("1")
	if w.Coefficient != nil {
		coefEntry.SetText(strconv.FormatFloat(*w.Coefficient, 'f', -1, 64))
	}

	surfaces := p.app.ws.Surfaces()
	surfaceNames := []string{"(aucune)"}
	for _, s := range surfaces {
		surfaceNames = append(surfaceNames, s.Name)
	}
	surfaceSelect := widget.NewSelect(surfaceNames, nil)
	surfaceSelect.SetSelectedIndex(0)
	for i, s := range surfaces {
		if s.ID == w.SurfaceID {
			surfaceSelect.SetSelectedIndex(i + 1)
		}
	}

	form := dialog.NewForm(w.Designation, "Enregistrer", "Annuler",
		[]*widget.FormItem{
			widget.NewFormItem("Quantité ("+w.Unit+")", qtyEntry),
			widget.NewFormItem("Prix unitaire", priceEntry),
			widget.NewFormItem("Coefficient", coefEntry),
			widget.NewFormItem("Surface", surfaceSelect),
		},
		func(ok bool) {
			if !ok {
				return
			}
			if err := p.applyEdit(w, qtyEntry.Text, priceEntry.Text, coefEntry.Text, surfaceSelect.SelectedIndex(), surfaces); err != nil {
				dialog.ShowError(err, p.app.window)
			}
		}, p.app.window)
	form.Resize(fyne.NewSize(420, 300))
	form.Show()
}

// applyEdit writes the changed fields of the edit dialog. Each change is
// its own undo step.
func (p *takeoffPanel) applyEdit(w model.WorkItem, qtyText, priceText, coefText string, surfaceIdx int, surfaces []model.Surface) error {
	ws := p.app.ws
	qty, err := parseNumber(qtyText)
	if err != nil {
		return fmt.Errorf("quantité invalide: %q", qtyText)
	}
	price, err := parseNumber(priceText)
	if err != nil {
		return fmt.Errorf("prix invalide: %q", priceText)
	}
	if qty != w.Quantity || price != w.UnitPrice {
		if err := ws.UpdateQuantity(w.ID, qty, price); err != nil {
			return err
		}
	}

	var coef *float64
	if strings.TrimSpace(coefText) != "" {
		c, err := parseNumber(coefText)
		if err != nil || c < 0 {
			return fmt.Errorf("coefficient invalide: %q", coefText)
		}
		coef = &c
	}
	if !sameCoefficient(coef, w.Coefficient) {
		ws.SetCoefficient(w.ID, coef)
	}

	target := ""
	if surfaceIdx > 0 && surfaceIdx <= len(surfaces) {
		target = surfaces[surfaceIdx-1].ID
	}
	if target != w.SurfaceID {
		if w.SurfaceID != "" {
			ws.UnlinkFromSurface(w.ID, w.SurfaceID)
		}
		if target != "" {
			ws.LinkToSurface(w.ID, target)
		}
	}
	return nil
}

func sameCoefficient(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (p *takeoffPanel) showSurfaceDialog(s model.Surface) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(s.Name)
	areaEntry := widget.NewEntry()
	areaEntry.SetText(strconv.FormatFloat(s.Superficie, 'f', 2, 64))

	dialog.ShowForm("Surface", "Enregistrer", "Annuler",
		[]*widget.FormItem{
			widget.NewFormItem("Nom", nameEntry),
			widget.NewFormItem("Superficie (m²)", areaEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			if nameEntry.Text != s.Name {
				p.app.ws.RenameSurface(s.ID, nameEntry.Text)
			}
			m2, err := parseNumber(areaEntry.Text)
			if err != nil || m2 < 0 {
				dialog.ShowError(fmt.Errorf("superficie invalide: %q", areaEntry.Text), p.app.window)
				return
			}
			if strconv.FormatFloat(m2, 'f', 2, 64) != strconv.FormatFloat(s.Superficie, 'f', 2, 64) {
				p.app.ws.SetSuperficie(s.ID, m2)
			}
		}, p.app.window)
}
