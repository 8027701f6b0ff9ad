package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/piwi3910/metre/internal/export"
	"github.com/piwi3910/metre/internal/model"
	"github.com/piwi3910/metre/internal/project"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ============================================================
// Work items
// ============================================================

func (s *Server) getCatalogue(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.ws.Catalogue())
}

func (s *Server) listWorkItems(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(fiber.Map{
		"work_items": s.ws.WorkItems(),
		"total":      s.ws.Project().TotalCost(),
	})
}

type addWorkItemRequest struct {
	CatalogueID string          `json:"catalogue_id,omitempty"`
	Quantity    float64         `json:"quantity"`
	Item        *model.WorkItem `json:"item,omitempty"`
}

// addWorkItem adds either a catalogue pick with a quantity or a fully
// described item.
func (s *Server) addWorkItem(c fiber.Ctx) error {
	var req addWorkItemRequest
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		w   model.WorkItem
		err error
	)
	switch {
	case req.CatalogueID != "":
		w, err = s.ws.AddFromCatalogue(req.CatalogueID, req.Quantity)
	case req.Item != nil:
		w, err = s.ws.AddWorkItem(*req.Item)
	default:
		return fail(c, fiber.StatusBadRequest, "catalogue_id or item required")
	}
	if err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

func (s *Server) deleteWorkItem(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ws.DeleteWorkItem(c.Params("id")) {
		return fail(c, fiber.StatusNotFound, "work item not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) updateWorkItem(c fiber.Ctx) error {
	var req struct {
		Quantity  float64 `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ws.UpdateQuantity(c.Params("id"), req.Quantity, req.UnitPrice); err != nil {
		status := fiber.StatusNotFound
		if errors.Is(err, model.ErrInvalidWorkItem) {
			status = fiber.StatusUnprocessableEntity
		}
		return fail(c, status, err.Error())
	}
	return c.JSON(fiber.Map{"work_items": s.ws.WorkItems()})
}

// setCoefficient sets the multiplier; a null coefficient resets it to 1.
func (s *Server) setCoefficient(c fiber.Ctx) error {
	var req struct {
		Coefficient *float64 `json:"coefficient"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ws.SetCoefficient(c.Params("id"), req.Coefficient) {
		return fail(c, fiber.StatusUnprocessableEntity, "unknown work item or negative coefficient")
	}
	return c.JSON(fiber.Map{"work_items": s.ws.WorkItems()})
}

func (s *Server) linkSurface(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ws.LinkToSurface(c.Params("id"), c.Params("surface")) {
		return fail(c, fiber.StatusConflict, "cannot link work item to surface")
	}
	return c.JSON(fiber.Map{"surfaces": s.ws.Surfaces()})
}

func (s *Server) unlinkSurface(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ws.UnlinkFromSurface(c.Params("id"), c.Params("surface")) {
		return fail(c, fiber.StatusNotFound, "work item is not linked to surface")
	}
	return c.JSON(fiber.Map{"surfaces": s.ws.Surfaces()})
}

// ============================================================
// Surfaces and history
// ============================================================

func (s *Server) listSurfaces(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(fiber.Map{"surfaces": s.ws.Surfaces()})
}

func (s *Server) updateSurface(c fiber.Ctx) error {
	var req struct {
		Name       string   `json:"name,omitempty"`
		Superficie *float64 `json:"superficie,omitempty"`
	}
	if err := decode(c, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	id := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Name != "" && !s.ws.RenameSurface(id, req.Name) {
		return fail(c, fiber.StatusNotFound, "surface not found")
	}
	if req.Superficie != nil && !s.ws.SetSuperficie(id, *req.Superficie) {
		return fail(c, fiber.StatusUnprocessableEntity, "unknown surface or negative area")
	}
	return c.JSON(fiber.Map{"surfaces": s.ws.Surfaces()})
}

func (s *Server) undo(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"ok": s.ws.Undo(), "work_items": s.ws.WorkItems()})
}

func (s *Server) redo(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respond(c, fiber.Map{"ok": s.ws.Redo(), "work_items": s.ws.WorkItems()})
}

// ============================================================
// Views and export
// ============================================================

func (s *Server) getView(c fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.ws.Summary()
	switch c.Params("view") {
	case "lot":
		return c.JSON(summary.ByLot)
	case "location":
		return c.JSON(summary.ByLocation)
	case "surface":
		return c.JSON(summary.BySurface)
	case "summary":
		return c.JSON(summary)
	case "rows":
		return c.JSON(s.ws.Rows())
	}
	return fail(c, fiber.StatusNotFound, fmt.Sprintf("unknown view %q", c.Params("view")))
}

func (s *Server) exportExcel(c fiber.Ctx) error {
	s.mu.Lock()
	items, surfaces := s.ws.WorkItems(), s.ws.Surfaces()
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := export.WriteExcel(&buf, items, surfaces); err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	s.metrics.recordExport("xlsx")
	c.Set("Content-Type", xlsxContentType)
	c.Set("Content-Disposition", `attachment; filename="metre.xlsx"`)
	return c.Send(buf.Bytes())
}

// ============================================================
// Projects
// ============================================================

func (s *Server) requireStore(c fiber.Ctx) bool {
	if s.store == nil {
		_ = fail(c, fiber.StatusServiceUnavailable, "no project store configured")
		return false
	}
	return true
}

func (s *Server) listProjects(c fiber.Ctx) error {
	if !s.requireStore(c) {
		return nil
	}
	ids, err := project.ProjectIDs(c.Context(), s.store)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"projects": ids})
}

func (s *Server) saveProject(c fiber.Ctx) error {
	if !s.requireStore(c) {
		return nil
	}
	var req struct {
		Name string `json:"name"`
	}
	if len(c.Body()) > 0 {
		if err := decode(c, &req); err != nil {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
	}

	s.mu.Lock()
	if req.Name != "" {
		s.ws.SetName(req.Name)
	}
	p := s.ws.Project()
	s.mu.Unlock()

	if err := project.PutProject(c.Context(), s.store, p); err != nil {
		s.log.Error("project save failed", slog.String("project", p.ID), slog.Any("error", err))
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": p.ID, "name": p.Name})
}

func (s *Server) openProject(c fiber.Ctx) error {
	if !s.requireStore(c) {
		return nil
	}
	p, err := project.GetProject(c.Context(), s.store, c.Params("id"))
	if errors.Is(err, project.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "project not found")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ws.Restore(p); err != nil {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return s.respond(c, fiber.Map{"id": p.ID, "name": p.Name})
}

func (s *Server) deleteProject(c fiber.Ctx) error {
	if !s.requireStore(c) {
		return nil
	}
	err := project.DeleteProject(c.Context(), s.store, c.Params("id"))
	if errors.Is(err, project.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "project not found")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
