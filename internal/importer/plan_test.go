package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/metre/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		name string
		want model.ElementKind
		ok   bool
	}{
		{"PORTES", model.KindDoor, true},
		{"A-DOOR", model.KindDoor, true},
		{"PORTES_EXT", model.KindDoor, true},
		{"Fenêtres", model.KindWindow, true},
		{"A-GLAZ-WINDOW", model.KindWindow, true},
		{"PORTE-FENETRE", model.KindWindow, true},
		{"MURS_PORTEURS", model.KindWall, true},
		{"A-WALL", model.KindWall, true},
		{"Cloisons", model.KindWall, true},
		{"PIECES", model.KindRoom, true},
		{"Room_1", model.KindRoom, true},
		{"wall", model.KindWall, true},
		{"COTATIONS", "", false},
		{"0", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := InferKind(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestImportPlan_UnsupportedExtension(t *testing.T) {
	r := ImportPlan("plan.pdf")
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], ".pdf")
	assert.False(t, r.OK())
}

// ─── SVG ───────────────────────────────────────────────────

const sampleSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="1000" height="600">
  <rect id="Room_1" x="0" y="0" width="500" height="400"/>
  <rect id="Hall_room" x="500" y="0" width="300" height="400"/>
  <line id="Wall_1" x1="0" y1="0" x2="800" y2="0" data-layer="MURS_EXT"/>
  <line id="Wall_2" x1="0" y1="400" x2="800" y2="400" data-layer="MURS_EXT"/>
  <g id="PORTES">
    <rect id="d1" x="100" y="390" width="90" height="20"/>
    <rect id="d2" x="600" y="390" width="90" height="20"/>
  </g>
  <polygon id="Window_1" class="FEN_PVC" points="200,-5 320,-5 320,5 200,5"/>
  <path id="Room_3" d="M 0 400 h 300 v 200 h -300 Z"/>
  <rect id="legend" x="900" y="500" width="50" height="50"/>
</svg>`

func TestParseSVG(t *testing.T) {
	r := ParseSVG(strings.NewReader(sampleSVG))
	require.Empty(t, r.Errors)
	assert.True(t, r.OK())

	counts := r.CountByKind()
	assert.Equal(t, 3, counts[model.KindRoom])
	assert.Equal(t, 2, counts[model.KindWall])
	assert.Equal(t, 2, counts[model.KindDoor])
	assert.Equal(t, 1, counts[model.KindWindow])
	assert.Len(t, r.Elements, 8, "unclassified legend is skipped")

	byLayer := map[string][]model.Element{}
	for _, e := range r.Elements {
		byLayer[e.Layer] = append(byLayer[e.Layer], e)
	}
	assert.Len(t, byLayer["MURS_EXT"], 2)
	assert.Len(t, byLayer["PORTES"], 2)
	assert.Len(t, byLayer["FEN_PVC"], 1)
	assert.Len(t, byLayer["room"], 3, "rooms without layer fall back to the kind")

	for _, e := range byLayer["MURS_EXT"] {
		assert.InDelta(t, 800, e.Geometry.Length, 1e-9)
		assert.InDelta(t, 8, e.Geometry.LengthMeters(), 1e-9)
	}
}

func TestParseSVG_PathRoomGeometry(t *testing.T) {
	r := ParseSVG(strings.NewReader(sampleSVG))
	var path *model.Element
	for i, e := range r.Elements {
		if e.Kind == model.KindRoom && e.Geometry.Y == 400 {
			path = &r.Elements[i]
		}
	}
	require.NotNil(t, path)
	assert.Equal(t, model.RectGeometry(0, 400, 300, 200), path.Geometry)
	assert.InDelta(t, 6, path.Geometry.AreaSquareMeters(), 1e-9)
}

func TestParseSVG_CurvesSkipped(t *testing.T) {
	doc := `<svg><path id="Room_1" d="M0 0 C 10 10 20 20 30 0"/><rect id="Door_1" x="0" y="0" width="90" height="10"/></svg>`
	r := ParseSVG(strings.NewReader(doc))
	require.Len(t, r.Elements, 1)
	assert.Equal(t, model.KindDoor, r.Elements[0].Kind)
	require.NotEmpty(t, r.Warnings)
	assert.Contains(t, r.Warnings[0], "unsupported path command")
}

func TestParseSVG_Invalid(t *testing.T) {
	r := ParseSVG(strings.NewReader("<svg><rect"))
	assert.NotEmpty(t, r.Errors)

	r = ParseSVG(strings.NewReader(`<svg><rect id="logo" width="5" height="5"/></svg>`))
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "No door")
}

func TestParseSVG_DegenerateSkipped(t *testing.T) {
	doc := `<svg><rect id="Door_1" x="0" y="0" width="0" height="10"/><line id="Wall_1" x1="5" y1="5" x2="5" y2="5"/></svg>`
	r := ParseSVG(strings.NewReader(doc))
	assert.Empty(t, r.Elements)
	assert.Len(t, r.Warnings, 2)
}

func TestParsePathPoints(t *testing.T) {
	pts, err := parsePathPoints("m10,10 l 20,0 0,20 -20,0 z")
	require.NoError(t, err)
	require.Len(t, pts, 5)
	assert.Equal(t, model.Point2D{X: 30, Y: 30}, pts[2])
	assert.Equal(t, model.Point2D{X: 10, Y: 10}, pts[4])

	_, err = parsePathPoints("10 10")
	assert.Error(t, err)

	pts, err = parsePathPoints("M1e1-5L20-5")
	require.NoError(t, err)
	assert.Equal(t, model.Outline{{X: 10, Y: -5}, {X: 20, Y: -5}}, pts)
}

func TestImportSVG_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rdc.svg")
	require.NoError(t, os.WriteFile(path, []byte(sampleSVG), 0644))

	r := ImportPlan(path)
	assert.True(t, r.OK())
	assert.Len(t, r.Elements, 8)
}

// ─── JSON ──────────────────────────────────────────────────

func TestParsePlanJSON(t *testing.T) {
	doc := `{
	  "name": "RDC",
	  "elements": [
	    {"id": "room1", "kind": "room", "layer": "PIECES", "geometry": {"x": 0, "y": 0, "width": 500, "height": 400}},
	    {"kind": "wall", "geometry": {"x": 0, "y": 0, "width": 800, "height": 0}},
	    {"id": "door1", "kind": "door", "layer": "PORTES", "geometry": {"x": 100, "y": 390, "width": 90, "height": 20}, "highlighted": true}
	  ]
	}`
	r := ParsePlanJSON([]byte(doc))
	require.Empty(t, r.Errors)
	require.Len(t, r.Elements, 3)

	assert.Equal(t, "room1", r.Elements[0].ID)
	assert.NotEmpty(t, r.Elements[1].ID)
	assert.Equal(t, "wall", r.Elements[1].Layer)
	assert.InDelta(t, 800, r.Elements[1].Geometry.Length, 1e-9)
	assert.False(t, r.Elements[2].Highlighted, "selection state is not imported")
}

func TestParsePlanJSON_SchemaErrors(t *testing.T) {
	doc := `{"elements": [{"kind": "balcony", "geometry": {"x": 0, "y": 0, "width": 1, "height": 1}}]}`
	r := ParsePlanJSON([]byte(doc))
	assert.Empty(t, r.Elements)
	require.NotEmpty(t, r.Errors)
	assert.True(t, strings.HasPrefix(r.Errors[0], "Schema:"))

	r = ParsePlanJSON([]byte(`{"elements": [{"kind": "door"}]}`))
	assert.NotEmpty(t, r.Errors)

	r = ParsePlanJSON([]byte(`not json`))
	assert.NotEmpty(t, r.Errors)
}

func TestParsePlanJSON_DuplicateIDs(t *testing.T) {
	doc := `{"elements": [
	  {"id": "a", "kind": "door", "geometry": {"x": 0, "y": 0, "width": 90, "height": 20}},
	  {"id": "a", "kind": "door", "geometry": {"x": 200, "y": 0, "width": 90, "height": 20}}
	]}`
	r := ParsePlanJSON([]byte(doc))
	assert.Len(t, r.Elements, 1)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "duplicate id")
}

func TestPlanSchemaEmbedded(t *testing.T) {
	assert.Contains(t, string(PlanSchema()), `"elements"`)
}

// ─── DXF helpers ───────────────────────────────────────────

func TestImportDXF_FileNotFound(t *testing.T) {
	r := ImportDXF("/nonexistent/plan.dxf")
	assert.NotEmpty(t, r.Errors)
}

func TestLayerOf_Default(t *testing.T) {
	assert.Equal(t, "0", layerOf(struct{}{}))
}

func TestChainSegments_ClosedRoom(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 500, Y: 0}},
		{start: model.Point2D{X: 500, Y: 400}, end: model.Point2D{X: 500, Y: 0}},
		{start: model.Point2D{X: 500, Y: 400}, end: model.Point2D{X: 0, Y: 400}},
		{start: model.Point2D{X: 0, Y: 400}, end: model.Point2D{X: 0, Y: 0}},
		// a separate small square
		{start: model.Point2D{X: 1000, Y: 0}, end: model.Point2D{X: 1010, Y: 0}},
		{start: model.Point2D{X: 1010, Y: 0}, end: model.Point2D{X: 1010, Y: 10}},
		{start: model.Point2D{X: 1010, Y: 10}, end: model.Point2D{X: 1000, Y: 10}},
		{start: model.Point2D{X: 1000, Y: 10}, end: model.Point2D{X: 1000, Y: 0}},
	}
	outlines := chainSegments(segs, 0.01)
	require.Len(t, outlines, 2)
	assert.Len(t, outlines[0], 4, "closing point is dropped")
	assert.InDelta(t, 200000, outlineArea(outlines[0]), 1e-6)
	assert.Equal(t, model.RectGeometry(0, 0, 500, 400), model.OutlineGeometry(outlines[0]))
	assert.InDelta(t, 100, outlineArea(outlines[1]), 1e-6)
}

func TestChainSegments_SingleLineDropped(t *testing.T) {
	segs := []segment{{start: model.Point2D{}, end: model.Point2D{X: 10}}}
	assert.Empty(t, chainSegments(segs, 0.01))
}

func TestBulgeArcPoints(t *testing.T) {
	// bulge 1 is a half circle of radius 50 between the two points
	pts := bulgeArcPoints(model.Point2D{X: 0, Y: 0}, model.Point2D{X: 100, Y: 0}, 1, 16)
	require.Len(t, pts, 17)
	assert.InDelta(t, 0, pts[0].X, 1e-9)
	assert.InDelta(t, 100, pts[16].X, 1e-9)
	for _, p := range pts {
		assert.InDelta(t, 50, p.Distance(model.Point2D{X: 50, Y: 0}), 1e-6)
	}
}

func TestPlanResult_AppendElement(t *testing.T) {
	var r PlanResult
	r.appendElement(model.KindWall, "MURS", model.SegmentGeometry(model.Point2D{}, model.Point2D{X: 300}))
	r.appendElement(model.KindRoom, "PIECES", model.RectGeometry(0, 0, 0, 100))
	require.Len(t, r.Elements, 1)
	assert.Equal(t, "MURS", r.Elements[0].Layer)
	assert.Len(t, r.Warnings, 1)
}
