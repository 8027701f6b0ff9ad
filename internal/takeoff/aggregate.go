// Package takeoff rolls work items up into cost views. Every view is a pure
// function of the work item list and keeps first-seen order for its groups.
package takeoff

import "github.com/piwi3910/metre/internal/model"

// Unclassified is the bucket for items without a lot or sub-category.
const Unclassified = "unclassified"

// Cost returns quantity × unit price × coefficient (1 when unset).
func Cost(w model.WorkItem) float64 {
	return w.Cost()
}

// Total returns the cost of every item.
func Total(items []model.WorkItem) float64 {
	var sum float64
	for _, w := range items {
		sum += Cost(w)
	}
	return sum
}

// SubCategoryGroup is one sub-category of a lot.
type SubCategoryGroup struct {
	Name     string           `json:"name"`
	Items    []model.WorkItem `json:"items"`
	Subtotal float64          `json:"subtotal"`
}

// LotGroup is one trade lot with its sub-categories.
type LotGroup struct {
	Name          string             `json:"name"`
	SubCategories []SubCategoryGroup `json:"sub_categories"`
	Subtotal      float64            `json:"subtotal"`
}

// LotView is the by-lot rollup.
type LotView struct {
	Lots  []LotGroup `json:"lots"`
	Total float64    `json:"total"`
}

// LocationGroup gathers the items of one "{level} - {room}" location.
type LocationGroup struct {
	Key      string           `json:"key"`
	Items    []model.WorkItem `json:"items"`
	Subtotal float64          `json:"subtotal"`
}

// LocationView is the by-location rollup.
type LocationView struct {
	Locations []LocationGroup `json:"locations"`
	Total     float64         `json:"total"`
}

// SurfaceGroup gathers the items linked to one surface.
type SurfaceGroup struct {
	Surface  model.Surface    `json:"surface"`
	Items    []model.WorkItem `json:"items"`
	Subtotal float64          `json:"subtotal"`
}

// SurfaceView is the by-surface rollup. Its total only covers linked items.
type SurfaceView struct {
	Surfaces []SurfaceGroup `json:"surfaces"`
	Total    float64        `json:"total"`
}

// Summary bundles the three views over the same item list.
type Summary struct {
	ByLot      LotView      `json:"by_lot"`
	ByLocation LocationView `json:"by_location"`
	BySurface  SurfaceView  `json:"by_surface"`
	GrandTotal float64      `json:"grand_total"`
	ItemCount  int          `json:"item_count"`
}

func orUnclassified(s string) string {
	if s == "" {
		return Unclassified
	}
	return s
}

// ByLot groups items by lot, then by sub-category.
func ByLot(items []model.WorkItem) LotView {
	var view LotView
	lotIdx := make(map[string]int)
	subIdx := make(map[string]map[string]int)

	for _, w := range items {
		lot := orUnclassified(w.Lot)
		sub := orUnclassified(w.SubCategory)

		li, ok := lotIdx[lot]
		if !ok {
			li = len(view.Lots)
			lotIdx[lot] = li
			subIdx[lot] = make(map[string]int)
			view.Lots = append(view.Lots, LotGroup{Name: lot})
		}
		g := &view.Lots[li]

		si, ok := subIdx[lot][sub]
		if !ok {
			si = len(g.SubCategories)
			subIdx[lot][sub] = si
			g.SubCategories = append(g.SubCategories, SubCategoryGroup{Name: sub})
		}
		sg := &g.SubCategories[si]
		sg.Items = append(sg.Items, w)
		sg.Subtotal += Cost(w)
	}

	for i := range view.Lots {
		g := &view.Lots[i]
		for _, sg := range g.SubCategories {
			g.Subtotal += sg.Subtotal
		}
		view.Total += g.Subtotal
	}
	return view
}

// ByLocation groups items by their location key.
func ByLocation(items []model.WorkItem) LocationView {
	var view LocationView
	idx := make(map[string]int)
	for _, w := range items {
		key := w.Location.Key()
		i, ok := idx[key]
		if !ok {
			i = len(view.Locations)
			idx[key] = i
			view.Locations = append(view.Locations, LocationGroup{Key: key})
		}
		g := &view.Locations[i]
		g.Items = append(g.Items, w)
		g.Subtotal += Cost(w)
	}
	for _, g := range view.Locations {
		view.Total += g.Subtotal
	}
	return view
}

// BySurface lists, for each surface, the items whose id it links. Unknown
// ids are skipped and unlinked items appear nowhere.
func BySurface(surfaces []model.Surface, items []model.WorkItem) SurfaceView {
	byID := make(map[string]model.WorkItem, len(items))
	for _, w := range items {
		byID[w.ID] = w
	}
	var view SurfaceView
	for _, s := range surfaces {
		g := SurfaceGroup{Surface: s}
		for _, id := range s.OuvragesIDs {
			w, ok := byID[id]
			if !ok {
				continue
			}
			g.Items = append(g.Items, w)
			g.Subtotal += Cost(w)
		}
		view.Total += g.Subtotal
		view.Surfaces = append(view.Surfaces, g)
	}
	return view
}

// Summarize computes all three views.
func Summarize(items []model.WorkItem, surfaces []model.Surface) Summary {
	return Summary{
		ByLot:      ByLot(items),
		ByLocation: ByLocation(items),
		BySurface:  BySurface(surfaces, items),
		GrandTotal: Total(items),
		ItemCount:  len(items),
	}
}

// Row is a flattened work item for spreadsheet export.
type Row struct {
	Designation string  `json:"designation"`
	Lot         string  `json:"lot"`
	SubCategory string  `json:"sub_category"`
	Location    string  `json:"location"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Coefficient float64 `json:"coefficient"`
	Total       float64 `json:"total"`
}

// Rows flattens the items in list order.
func Rows(items []model.WorkItem) []Row {
	rows := make([]Row, 0, len(items))
	for _, w := range items {
		rows = append(rows, Row{
			Designation: w.Designation,
			Lot:         orUnclassified(w.Lot),
			SubCategory: orUnclassified(w.SubCategory),
			Location:    w.Location.Key(),
			Quantity:    w.Quantity,
			Unit:        w.Unit,
			UnitPrice:   w.UnitPrice,
			Coefficient: w.EffectiveCoefficient(),
			Total:       Cost(w),
		})
	}
	return rows
}
