// Package workspace wires the plan, calibration, measurement and takeoff
// components into one single-user session. It converts calibration steps
// and tool validations into work items and keeps their undo history.
package workspace

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/piwi3910/metre/internal/calibration"
	"github.com/piwi3910/metre/internal/measure"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/plan"
	"github.com/piwi3910/metre/internal/takeoff"
)

// Observer is told about committed work items. The HTTP service uses it
// to feed its metrics.
type Observer interface {
	WorkItemsCommitted(source string, n int)
}

// Workspace is one takeoff session. It is not safe for concurrent use.
type Workspace struct {
	projectID   string
	projectName string
	planName    string
	settings    model.Settings
	catalogue   model.Catalogue
	location    model.Location

	store *plan.Store
	sel   *plan.Selection
	cal   *calibration.Machine
	tools *measure.Engine

	items    []model.WorkItem
	surfaces []model.Surface
	history  *History
	picks    map[model.ElementKind]string

	log       *slog.Logger
	observers []Observer
	onChange  []func()
}

// New creates an empty workspace.
func New(settings model.Settings, catalogue model.Catalogue, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	store := plan.NewStore()
	sel := plan.NewSelection(store)
	ws := &Workspace{
		projectID:   uuid.New().String()[:8],
		projectName: "Sans titre",
		settings:    settings,
		catalogue:   catalogue,
		location:    model.Location{Level: settings.DefaultLevel, Room: "Général"},
		store:       store,
		sel:         sel,
		cal:         calibration.NewMachine(sel, logger.With(slog.String("component", "calibration"))),
		tools:       measure.NewEngine(sel, settings.MarkerRadius, logger.With(slog.String("component", "measure"))),
		items:       []model.WorkItem{},
		surfaces:    []model.Surface{},
		history:     NewHistory(),
		picks:       make(map[model.ElementKind]string),
		log:         logger.With(slog.String("component", "workspace")),
	}
	ws.cal.OnAdvance(ws.commitCalibration)
	return ws
}

// AddObserver registers a commit observer.
func (ws *Workspace) AddObserver(o Observer) {
	ws.observers = append(ws.observers, o)
}

// OnChange registers a callback run after every state change.
func (ws *Workspace) OnChange(fn func()) {
	ws.onChange = append(ws.onChange, fn)
}

func (ws *Workspace) changed() {
	for _, fn := range ws.onChange {
		fn()
	}
}

func (ws *Workspace) notify(source string, n int) {
	for _, o := range ws.observers {
		o.WorkItemsCommitted(source, n)
	}
}

// Settings returns the session settings.
func (ws *Workspace) Settings() model.Settings { return ws.settings }

// Catalogue returns the catalogue in use.
func (ws *Workspace) Catalogue() *model.Catalogue { return &ws.catalogue }

// Store returns the element arena.
func (ws *Workspace) Store() *plan.Store { return ws.store }

// Selection returns the selection engine.
func (ws *Workspace) Selection() *plan.Selection { return ws.sel }

// Tools returns the measurement tool engine.
func (ws *Workspace) Tools() *measure.Engine { return ws.tools }

// Calibration returns the current wizard snapshot.
func (ws *Workspace) Calibration() calibration.Session { return ws.cal.Session() }

// PlanName returns the name of the loaded plan.
func (ws *Workspace) PlanName() string { return ws.planName }

// Name returns the project name.
func (ws *Workspace) Name() string { return ws.projectName }

// SetName renames the project.
func (ws *Workspace) SetName(name string) {
	ws.projectName = name
	ws.changed()
}

// Location returns the location applied to new work items.
func (ws *Workspace) Location() model.Location { return ws.location }

// SetLocation changes the location applied to new work items.
func (ws *Workspace) SetLocation(loc model.Location) {
	ws.location = loc
	ws.changed()
}

// LoadPlan replaces the plan elements. Selection, exclusions, the
// calibration wizard and the active tool are reset; committed work items
// and surfaces are kept.
func (ws *Workspace) LoadPlan(name string, elements []model.Element) error {
	if err := ws.store.Load(elements); err != nil {
		return fmt.Errorf("failed to load plan %q: %w", name, err)
	}
	ws.planName = name
	ws.sel.Reset()
	ws.cal.Reset()
	ws.tools = measure.NewEngine(ws.sel, ws.settings.MarkerRadius, ws.log.With(slog.String("component", "measure")))
	ws.log.Info("plan loaded", slog.String("plan", name), slog.Int("elements", ws.store.Len()))
	ws.changed()
	return nil
}

// ---------------------------------------------------------------------------
// Pointer input
// ---------------------------------------------------------------------------

// Click routes a primary click at p (plan units).
func (ws *Workspace) Click(p model.Point2D) bool {
	hit, _ := ws.store.HitTest(p, ws.settings.HitTolerance)

	var ok bool
	switch {
	case ws.tools.Tool() == measure.ToolCounter:
		ok = ws.tools.Click(p, hit)
	case ws.tools.Tool() != measure.ToolSelect:
		return false
	case ws.cal.Session().Active():
		ok = ws.calibrationClick(p, hit)
	case hit != "":
		ok = ws.sel.Toggle(hit)
		if ok {
			ws.ensureSurfaces()
		}
	}
	if ok {
		ws.changed()
	}
	return ok
}

func (ws *Workspace) calibrationClick(p model.Point2D, hit string) bool {
	kind := ws.cal.Session().CurrentType
	if hit != "" {
		if e, _ := ws.store.Get(hit); e.Kind == kind {
			return ws.sel.Toggle(hit)
		}
	}
	return ws.cal.AddPoint(p.X, p.Y)
}

// RightClick deletes a counter marker near p.
func (ws *Workspace) RightClick(p model.Point2D) bool {
	ok := ws.tools.RightClick(p)
	if ok {
		ws.changed()
	}
	return ok
}

// BeginDrag starts a surface or length drag.
func (ws *Workspace) BeginDrag(p model.Point2D) bool {
	return ws.tools.BeginDrag(p)
}

// DragTo follows the pointer during a drag.
func (ws *Workspace) DragTo(p model.Point2D) bool {
	ok := ws.tools.DragTo(p)
	if ok {
		ws.changed()
	}
	return ok
}

// Release finalizes a drag at the release position.
func (ws *Workspace) Release(p model.Point2D) (measure.Measurement, bool) {
	m, ok := ws.tools.Release(p)
	ws.changed()
	return m, ok
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// ExtendToSimilar highlights the elements similar to the last clicked one.
func (ws *Workspace) ExtendToSimilar() int {
	n := ws.sel.ExtendToSimilar()
	if n > 0 {
		ws.ensureSurfaces()
		ws.changed()
	}
	return n
}

// ExcludeSimilar removes the elements similar to the last clicked one.
func (ws *Workspace) ExcludeSimilar() int {
	n := ws.sel.ExcludeSimilar()
	if n > 0 {
		ws.changed()
	}
	return n
}

// SetIsolation toggles isolation display.
func (ws *Workspace) SetIsolation(on bool) {
	ws.sel.SetIsolation(on)
	ws.changed()
}

// ensureSurfaces creates a surface for every highlighted room that has none yet.
func (ws *Workspace) ensureSurfaces() {
	for _, room := range ws.sel.HighlightedOfKind(model.KindRoom) {
		if ws.surfaceForRoom(room.ID) != nil {
			continue
		}
		s := model.NewSurfaceFromRoom(fmt.Sprintf("Pièce %d", len(ws.surfaces)+1), room)
		ws.surfaces = append(ws.surfaces, s)
		ws.log.Debug("surface created", slog.String("surface", s.ID), slog.String("room", room.ID), slog.Float64("m2", s.Superficie))
	}
}

func (ws *Workspace) surfaceForRoom(roomID string) *model.Surface {
	for i := range ws.surfaces {
		if ws.surfaces[i].RoomID == roomID {
			return &ws.surfaces[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Calibration
// ---------------------------------------------------------------------------

func (ws *Workspace) calibrationOp(ok bool) bool {
	if ok {
		ws.changed()
	}
	return ok
}

// StartCalibration begins the wizard. The active tool returns to select
// and the current selection is cleared.
func (ws *Workspace) StartCalibration() bool {
	if ws.cal.Session().Step != calibration.StepIdle {
		return false
	}
	if ws.tools.Tool() != measure.ToolSelect {
		if ws.tools.SelectTool(measure.ToolSelect) != measure.Applied {
			return false
		}
	}
	ws.sel.Clear()
	return ws.calibrationOp(ws.cal.Start())
}

// BeginStep is the wizard's primary button.
func (ws *Workspace) BeginStep() bool { return ws.calibrationOp(ws.cal.BeginStep()) }

// CompleteStep validates the current kind.
func (ws *Workspace) CompleteStep() bool { return ws.calibrationOp(ws.cal.CompleteStep()) }

// SkipStep skips the current kind.
func (ws *Workspace) SkipStep() bool { return ws.calibrationOp(ws.cal.SkipStep()) }

// CancelStep returns to the current kind's instructions.
func (ws *Workspace) CancelStep() bool { return ws.calibrationOp(ws.cal.CancelStep()) }

// ReviewStep shows the captured elements before advancing.
func (ws *Workspace) ReviewStep() bool { return ws.calibrationOp(ws.cal.Review()) }

// SetDimension attaches a real-world size to a captured point.
func (ws *Workspace) SetDimension(i int, d model.Dimensions) bool {
	return ws.calibrationOp(ws.cal.SetDimension(i, d))
}

// ResetCalibration abandons the wizard and clears the selection.
func (ws *Workspace) ResetCalibration() {
	ws.cal.Reset()
	ws.sel.Clear()
	ws.changed()
}

// SetCataloguePick chooses the catalogue item used when a calibration step
// of kind is committed. An empty id clears the pick.
func (ws *Workspace) SetCataloguePick(kind model.ElementKind, itemID string) bool {
	if itemID == "" {
		delete(ws.picks, kind)
		return true
	}
	if ws.catalogue.FindByID(itemID) == nil {
		return false
	}
	ws.picks[kind] = itemID
	return true
}

func (ws *Workspace) commitCalibration(kind model.ElementKind, skipped bool) {
	defer ws.sel.Clear()
	if skipped {
		return
	}
	elements := ws.sel.HighlightedOfKind(kind)
	if len(elements) == 0 {
		return
	}
	if kind == model.KindRoom {
		ws.ensureSurfaces()
	}

	var qty float64
	unit := model.UnitEach
	switch kind {
	case model.KindWall:
		unit = model.UnitLinearMeter
		for _, e := range elements {
			qty += e.Geometry.LengthMeters()
		}
	case model.KindRoom:
		unit = model.UnitSquareMeter
		for _, e := range elements {
			qty += e.Geometry.AreaSquareMeters()
		}
	default:
		qty = float64(len(elements))
	}

	w := model.NewWorkItem(kind.Label(), ws.settings.DefaultLot, unit, qty, 0)
	if id, ok := ws.picks[kind]; ok {
		if item := ws.catalogue.FindByID(id); item != nil {
			w = item.ToWorkItem(qty)
		}
	}
	w.Location = ws.location

	ws.history.Push(ws.snapshot("Calibration " + kind.Label()))
	ws.items = append(ws.items, w)
	ws.log.Info("work item committed",
		slog.String("source", "calibration"),
		slog.String("kind", string(kind)),
		slog.String("designation", w.Designation),
		slog.Float64("quantity", w.Quantity),
		slog.String("unit", w.Unit),
	)
	ws.notify("calibration", 1)
}

// ---------------------------------------------------------------------------
// Tools
// ---------------------------------------------------------------------------

func (ws *Workspace) decision(d measure.Decision) measure.Decision {
	if d != measure.Ignored {
		ws.changed()
	}
	return d
}

// SelectTool activates a tool with tool bar toggle semantics.
func (ws *Workspace) SelectTool(t measure.Tool) measure.Decision {
	if t == measure.ToolCounter && ws.cal.Session().Active() {
		return measure.Ignored
	}
	return ws.decision(ws.tools.SelectTool(t))
}

// ConfirmTool confirms a pending discard.
func (ws *Workspace) ConfirmTool() measure.Decision { return ws.decision(ws.tools.Confirm()) }

// DeclineTool keeps the counter state.
func (ws *Workspace) DeclineTool() measure.Decision { return ws.decision(ws.tools.Decline()) }

// CancelTool leaves the active calculation tool.
func (ws *Workspace) CancelTool() measure.Decision { return ws.decision(ws.tools.Cancel()) }

// Escape routes the Escape key to the tool engine, then to the wizard.
func (ws *Workspace) Escape() measure.Decision {
	if d := ws.tools.Escape(); d != measure.Ignored {
		return ws.decision(d)
	}
	if ws.CancelStep() {
		return measure.Applied
	}
	return measure.Ignored
}

// SetCounterMode switches the counter sub-mode.
func (ws *Workspace) SetCounterMode(m measure.CounterMode) bool {
	ok := ws.tools.SetCounterMode(m)
	if ok {
		ws.changed()
	}
	return ok
}

// SetShape chooses the surface figure.
func (ws *Workspace) SetShape(s measure.Shape) bool {
	return ws.tools.SetShape(s)
}

// ValidateTool commits the active tool's data. catalogueID optionally
// seeds designation, lot and price from the catalogue.
func (ws *Workspace) ValidateTool(catalogueID string) []model.WorkItem {
	if !ws.tools.CanValidate() {
		return nil
	}
	c := measure.Commit{Lot: ws.settings.DefaultLot, Location: ws.location}
	if item := ws.catalogue.FindByID(catalogueID); item != nil {
		c.Designation = item.Designation
		c.Lot = item.Lot
		c.SubCategory = item.SubCategory
		c.UnitPrice = item.UnitPrice
	}
	tool := ws.tools.Tool()
	snap := ws.snapshot("Valider " + tool.Label())
	items := ws.tools.Validate(c)
	if len(items) == 0 {
		return nil
	}
	ws.history.Push(snap)
	ws.items = append(ws.items, items...)
	for _, w := range items {
		ws.log.Info("work item committed",
			slog.String("source", string(tool)),
			slog.String("designation", w.Designation),
			slog.Float64("quantity", w.Quantity),
			slog.String("unit", w.Unit),
		)
	}
	ws.notify(string(tool), len(items))
	ws.changed()
	return items
}

// ---------------------------------------------------------------------------
// Work items and surfaces
// ---------------------------------------------------------------------------

// WorkItems returns a copy of the committed work items.
func (ws *Workspace) WorkItems() []model.WorkItem {
	return copyItems(ws.items)
}

// Surfaces returns a copy of the surfaces.
func (ws *Workspace) Surfaces() []model.Surface {
	return copySurfaces(ws.surfaces)
}

func (ws *Workspace) itemIndex(id string) int {
	for i, w := range ws.items {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (ws *Workspace) surfaceIndex(id string) int {
	for i, s := range ws.surfaces {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// AddWorkItem appends a manually entered work item.
func (ws *Workspace) AddWorkItem(w model.WorkItem) (model.WorkItem, error) {
	if err := w.Validate(); err != nil {
		return model.WorkItem{}, err
	}
	if w.ID == "" || ws.itemIndex(w.ID) >= 0 {
		w.ID = uuid.New().String()[:8]
	}
	if w.Location == (model.Location{}) {
		w.Location = ws.location
	}
	ws.history.Push(ws.snapshot("Ajouter " + w.Designation))
	ws.items = append(ws.items, w)
	ws.notify("manual", 1)
	ws.changed()
	return w, nil
}

// AddFromCatalogue appends a work item seeded from a catalogue entry.
func (ws *Workspace) AddFromCatalogue(itemID string, qty float64) (model.WorkItem, error) {
	item := ws.catalogue.FindByID(itemID)
	if item == nil {
		return model.WorkItem{}, fmt.Errorf("catalogue item %q not found", itemID)
	}
	return ws.AddWorkItem(item.ToWorkItem(qty))
}

// DeleteWorkItem removes a work item and its surface links.
func (ws *Workspace) DeleteWorkItem(id string) bool {
	i := ws.itemIndex(id)
	if i < 0 {
		return false
	}
	ws.history.Push(ws.snapshot("Supprimer " + ws.items[i].Designation))
	ws.items = append(ws.items[:i], ws.items[i+1:]...)
	for j := range ws.surfaces {
		ws.surfaces[j].Unlink(id)
	}
	ws.changed()
	return true
}

// SetCoefficient sets or clears (nil) the multiplier of a work item.
func (ws *Workspace) SetCoefficient(id string, c *float64) bool {
	i := ws.itemIndex(id)
	if i < 0 || (c != nil && *c < 0) {
		return false
	}
	ws.history.Push(ws.snapshot("Coefficient " + ws.items[i].Designation))
	if c == nil {
		ws.items[i].Coefficient = nil
	} else {
		v := *c
		ws.items[i].Coefficient = &v
	}
	ws.changed()
	return true
}

// UpdateQuantity changes quantity and unit price of a work item.
func (ws *Workspace) UpdateQuantity(id string, qty, unitPrice float64) error {
	i := ws.itemIndex(id)
	if i < 0 {
		return fmt.Errorf("work item %q not found", id)
	}
	next := ws.items[i]
	next.Quantity = qty
	next.UnitPrice = unitPrice
	if err := next.Validate(); err != nil {
		return err
	}
	ws.history.Push(ws.snapshot("Modifier " + next.Designation))
	ws.items[i] = next
	ws.changed()
	return nil
}

// LinkToSurface attaches a work item to a surface.
func (ws *Workspace) LinkToSurface(itemID, surfaceID string) bool {
	i, j := ws.itemIndex(itemID), ws.surfaceIndex(surfaceID)
	if i < 0 || j < 0 || ws.surfaces[j].Has(itemID) {
		return false
	}
	ws.history.Push(ws.snapshot("Lier " + ws.items[i].Designation))
	ws.surfaces[j].Link(itemID)
	ws.items[i].SurfaceID = surfaceID
	ws.changed()
	return true
}

// UnlinkFromSurface detaches a work item from a surface.
func (ws *Workspace) UnlinkFromSurface(itemID, surfaceID string) bool {
	j := ws.surfaceIndex(surfaceID)
	if j < 0 || !ws.surfaces[j].Has(itemID) {
		return false
	}
	ws.history.Push(ws.snapshot("Délier"))
	ws.surfaces[j].Unlink(itemID)
	if i := ws.itemIndex(itemID); i >= 0 && ws.items[i].SurfaceID == surfaceID {
		ws.items[i].SurfaceID = ""
	}
	ws.changed()
	return true
}

// SetSuperficie overrides the area of a surface.
func (ws *Workspace) SetSuperficie(surfaceID string, m2 float64) bool {
	j := ws.surfaceIndex(surfaceID)
	if j < 0 || m2 < 0 {
		return false
	}
	ws.history.Push(ws.snapshot("Superficie " + ws.surfaces[j].Name))
	ws.surfaces[j].SetSuperficie(m2)
	ws.changed()
	return true
}

// RenameSurface renames a surface.
func (ws *Workspace) RenameSurface(surfaceID, name string) bool {
	j := ws.surfaceIndex(surfaceID)
	if j < 0 || name == "" {
		return false
	}
	ws.history.Push(ws.snapshot("Renommer " + ws.surfaces[j].Name))
	ws.surfaces[j].Name = name
	ws.changed()
	return true
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func (ws *Workspace) snapshot(label string) Snapshot {
	return MakeSnapshot(ws.items, ws.surfaces, label)
}

func (ws *Workspace) restore(s Snapshot) {
	ws.items = copyItems(s.WorkItems)
	if ws.items == nil {
		ws.items = []model.WorkItem{}
	}
	ws.surfaces = copySurfaces(s.Surfaces)
	if ws.surfaces == nil {
		ws.surfaces = []model.Surface{}
	}
}

// restoreHistory swaps in an undo/redo snapshot. Room surfaces are created
// outside the history and never removed, so one missing from the snapshot is
// kept with its id and its links are rebuilt from the restored items.
func (ws *Workspace) restoreHistory(s Snapshot) {
	current := ws.surfaces
	ws.restore(s)
	for _, cur := range current {
		if cur.RoomID == "" || ws.surfaceIndex(cur.ID) >= 0 || ws.surfaceForRoom(cur.RoomID) != nil {
			continue
		}
		cur.OuvragesIDs = []string{}
		for _, w := range ws.items {
			if w.SurfaceID == cur.ID {
				cur.OuvragesIDs = append(cur.OuvragesIDs, w.ID)
			}
		}
		ws.surfaces = append(ws.surfaces, cur)
	}
}

// Undo restores the takeoff before the last change.
func (ws *Workspace) Undo() bool {
	prev, ok := ws.history.Undo(ws.snapshot("current"))
	if !ok {
		return false
	}
	ws.restoreHistory(prev)
	ws.changed()
	return true
}

// Redo re-applies the last undone change.
func (ws *Workspace) Redo() bool {
	next, ok := ws.history.Redo(ws.snapshot("current"))
	if !ok {
		return false
	}
	ws.restoreHistory(next)
	ws.changed()
	return true
}

// CanUndo reports whether Undo would do anything.
func (ws *Workspace) CanUndo() bool { return ws.history.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (ws *Workspace) CanRedo() bool { return ws.history.CanRedo() }

// ---------------------------------------------------------------------------
// Views and persistence
// ---------------------------------------------------------------------------

// Summary computes the three cost views.
func (ws *Workspace) Summary() takeoff.Summary {
	return takeoff.Summarize(ws.items, ws.surfaces)
}

// Rows returns the flat export rows.
func (ws *Workspace) Rows() []takeoff.Row {
	return takeoff.Rows(ws.items)
}

// Project captures the session for saving. Element flags are saved as they are.
func (ws *Workspace) Project() model.Project {
	return model.Project{
		ID:        ws.projectID,
		Name:      ws.projectName,
		PlanName:  ws.planName,
		Elements:  ws.store.All(),
		WorkItems: ws.WorkItems(),
		Surfaces:  ws.Surfaces(),
		Settings:  ws.settings,
	}
}

// Restore replaces the session with a saved project. History is cleared.
func (ws *Workspace) Restore(p model.Project) error {
	for _, w := range p.WorkItems {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("failed to restore project %q: %w", p.Name, err)
		}
	}
	if err := ws.store.Load(p.Elements); err != nil {
		return fmt.Errorf("failed to restore project %q: %w", p.Name, err)
	}
	if p.ID != "" {
		ws.projectID = p.ID
	}
	ws.projectName = p.Name
	ws.planName = p.PlanName
	ws.settings = p.Settings
	ws.location = model.Location{Level: p.Settings.DefaultLevel, Room: "Général"}
	ws.restore(Snapshot{WorkItems: p.WorkItems, Surfaces: p.Surfaces})
	ws.sel.Forget()
	ws.cal.Reset()
	ws.tools = measure.NewEngine(ws.sel, ws.settings.MarkerRadius, ws.log.With(slog.String("component", "measure")))
	ws.history.Clear()
	ws.log.Info("project restored", slog.String("project", p.Name), slog.Int("work_items", len(p.WorkItems)))
	ws.changed()
	return nil
}
