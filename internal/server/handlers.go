package server

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/piwi3910/metre/internal/importer"
	"github.com/piwi3910/metre/internal/measure"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/render"
)

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p pointRequest) point() model.Point2D { return model.Point2D{X: p.X, Y: p.Y} }

func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return fmt.Errorf("request body required")
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// respond writes the outcome of an action together with the session state.
func (s *Server) respond(c fiber.Ctx, extra fiber.Map) error {
	body := fiber.Map{"state": snapshot(s.ws)}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

// ============================================================
// Plan
// ============================================================

// loadPlan imports an uploaded DXF, SVG or JSON plan (multipart field "file").
func (s *Server) loadPlan(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "file required in multipart/form-data")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	format := strings.TrimPrefix(ext, ".")

	src, err := fh.Open()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to open upload")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "metre-plan-*"+ext)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to buffer upload")
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to buffer upload")
	}

	result := importer.ImportPlan(tmp.Name())
	s.metrics.recordImport(format, result.OK())
	if !result.OK() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":    "plan import failed",
			"errors":   result.Errors,
			"warnings": result.Warnings,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ws.LoadPlan(fh.Filename, result.Elements); err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	counts := map[string]int{}
	for k, n := range result.CountByKind() {
		counts[string(k)] = n
	}
	return s.respond(c, fiber.Map{"counts": counts, "warnings": result.Warnings})
}

func (s *Server) getPlan(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(fiber.Map{
		"name":     s.ws.PlanName(),
		"elements": s.ws.Store().All(),
	})
}

type sceneItem struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind"`
	Fill    string         `json:"fill"`
	Stroke  string         `json:"stroke"`
	Width   float32        `json:"stroke_width"`
	Opacity float64        `json:"opacity"`
	Box     model.Geometry `json:"geometry"`
}

// getScene returns the draw styles of every element, in draw order.
func (s *Server) getScene(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.ws.Settings()
	opts := render.Options{Isolation: s.ws.Selection().Isolation(), IsolationOpacity: settings.IsolationOpacity}
	var preview *measure.Measurement
	if m, ok := s.ws.Tools().Preview(); ok {
		preview = &m
	}
	scene := render.Build(s.ws.Store().All(), s.ws.Tools().Markers(), preview, opts)

	items := make([]sceneItem, 0, len(scene.Items))
	for _, it := range scene.Items {
		items = append(items, sceneItem{
			ID:      it.Element.ID,
			Kind:    string(it.Element.Kind),
			Fill:    render.Hex(it.Style.Fill),
			Stroke:  render.Hex(it.Style.Stroke),
			Width:   it.Style.StrokeWidth,
			Opacity: it.Style.Opacity,
			Box:     it.Element.Geometry,
		})
	}
	markers := scene.Markers
	if markers == nil {
		markers = []model.Point2D{}
	}
	return c.JSON(fiber.Map{
		"bounds":  scene.Bounds,
		"items":   items,
		"markers": markers,
		"preview": scene.Preview,
	})
}

func (s *Server) getState(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(snapshot(s.ws))
}

// ============================================================
// Selection
// ============================================================

func (s *Server) click(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"ok": s.ws.Click(req.point())})
}

func (s *Server) rightClick(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"ok": s.ws.RightClick(req.point())})
}

func (s *Server) extendSimilar(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"changed": s.ws.ExtendToSimilar()})
}

func (s *Server) excludeSimilar(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"changed": s.ws.ExcludeSimilar()})
}

func (s *Server) setIsolation(c fiber.Ctx) error {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.SetIsolation(req.Enabled)
	return s.respond(c, nil)
}

func (s *Server) setLocation(c fiber.Ctx) error {
	var loc model.Location
	if err := decode(c, &loc); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(loc.Level) == "" || strings.TrimSpace(loc.Room) == "" {
		return fail(c, fiber.StatusBadRequest, "level and room are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.SetLocation(loc)
	return s.respond(c, nil)
}

// ============================================================
// Calibration
// ============================================================

func (s *Server) getCalibration(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(calibrationOf(s.ws))
}

// calibrationAction runs one wizard transition. Invalid transitions are not
// errors: they answer ok=false with the unchanged state.
func (s *Server) calibrationAction(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ok bool
	switch c.Params("action") {
	case "start":
		ok = s.ws.StartCalibration()
	case "begin":
		ok = s.ws.BeginStep()
	case "complete":
		ok = s.ws.CompleteStep()
	case "skip":
		ok = s.ws.SkipStep()
	case "cancel":
		ok = s.ws.CancelStep()
	case "review":
		ok = s.ws.ReviewStep()
	case "reset":
		s.ws.ResetCalibration()
		ok = true
	default:
		return fail(c, fiber.StatusNotFound, fmt.Sprintf("unknown calibration action %q", c.Params("action")))
	}
	return s.respond(c, fiber.Map{"ok": ok})
}

func (s *Server) setDimension(c fiber.Ctx) error {
	i, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "index must be an integer")
	}
	var d model.Dimensions
	if err := decode(c, &d); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"ok": s.ws.SetDimension(i, d)})
}

func (s *Server) setPick(c fiber.Ctx) error {
	kind := model.ElementKind(c.Params("kind"))
	if !kind.Valid() {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("unknown kind %q", kind))
	}
	var req struct {
		CatalogueID string `json:"catalogue_id"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ws.SetCataloguePick(kind, req.CatalogueID) {
		return fail(c, fiber.StatusNotFound, fmt.Sprintf("catalogue item %q not found", req.CatalogueID))
	}
	return c.JSON(fiber.Map{"ok": true})
}

// ============================================================
// Tools
// ============================================================

func (s *Server) selectTool(c fiber.Ctx) error {
	var req struct {
		Tool measure.Tool `json:"tool"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if !req.Tool.Valid() {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("unknown tool %q", req.Tool))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.ws.SelectTool(req.Tool)
	return s.respond(c, fiber.Map{"decision": d.String()})
}

// toolDecision handles confirm, decline, cancel and escape, told apart by
// the last path segment.
func (s *Server) toolDecision(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d measure.Decision
	switch filepath.Base(c.Path()) {
	case "confirm":
		d = s.ws.ConfirmTool()
	case "decline":
		d = s.ws.DeclineTool()
	case "cancel":
		d = s.ws.CancelTool()
	case "escape":
		d = s.ws.Escape()
	}
	return s.respond(c, fiber.Map{"decision": d.String()})
}

func (s *Server) setCounterMode(c fiber.Ctx) error {
	var req struct {
		Mode measure.CounterMode `json:"mode"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if req.Mode != measure.CounterAutomatic && req.Mode != measure.CounterManual {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("unknown counter mode %q", req.Mode))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"ok": s.ws.SetCounterMode(req.Mode)})
}

func (s *Server) setShape(c fiber.Ctx) error {
	var req struct {
		Shape measure.Shape `json:"shape"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if req.Shape != measure.ShapeRectangle && req.Shape != measure.ShapeCircle {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("unknown shape %q", req.Shape))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"ok": s.ws.SetShape(req.Shape)})
}

// drag drives a surface or length measurement: begin, move, release.
func (s *Server) drag(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c.Params("phase") {
	case "begin":
		return s.respond(c, fiber.Map{"ok": s.ws.BeginDrag(req.point())})
	case "move":
		ok := s.ws.DragTo(req.point())
		body := fiber.Map{"ok": ok}
		if m, has := s.ws.Tools().Preview(); has {
			body["preview"] = m
		}
		return s.respond(c, body)
	case "release":
		m, ok := s.ws.Release(req.point())
		body := fiber.Map{"ok": ok}
		if ok {
			body["measurement"] = m
		}
		return s.respond(c, body)
	}
	return fail(c, fiber.StatusNotFound, fmt.Sprintf("unknown drag phase %q", c.Params("phase")))
}

func (s *Server) validateTool(c fiber.Ctx) error {
	var req struct {
		CatalogueID string `json:"catalogue_id"`
	}
	if len(c.Body()) > 0 {
		if err := decode(c, &req); err != nil {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.ws.ValidateTool(req.CatalogueID)
	if items == nil {
		items = []model.WorkItem{}
	}
	return s.respond(c, fiber.Map{"work_items": items})
}
