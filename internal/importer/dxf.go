package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/metre/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"github.com/yofu/dxf/table"
)

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE and ARC entities into outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// layered is implemented by every yofu/dxf entity.
type layered interface {
	Layer() *table.Layer
}

// layerOf returns the DXF layer name of an entity, "0" when unset.
func layerOf(ent any) string {
	if l, ok := ent.(layered); ok {
		if layer := l.Layer(); layer != nil && layer.Name() != "" {
			return layer.Name()
		}
	}
	return "0"
}

// ImportDXF ingests a DXF floor plan. The entity layer becomes the element
// layer and the element kind is inferred from the layer name. On wall layers
// every LINE and polyline edge is a wall; on other layers each closed shape
// (LWPOLYLINE, CIRCLE, or chain of LINEs/ARCs) becomes one element.
func ImportDXF(path string) PlanResult {
	result := PlanResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	kinds := make(map[string]model.ElementKind)
	skipped := make(map[string]bool)
	resolve := func(layer string) (model.ElementKind, bool) {
		if k, ok := kinds[layer]; ok {
			return k, true
		}
		if skipped[layer] {
			return "", false
		}
		k, ok := InferKind(layer)
		if !ok {
			skipped[layer] = true
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Layer %q is not a door, window, wall or room layer, skipped", layer))
			return "", false
		}
		kinds[layer] = k
		return k, true
	}

	var layerOrder []string
	loose := make(map[string][]segment)
	addLoose := func(layer string, segs ...segment) {
		if _, seen := loose[layer]; !seen {
			layerOrder = append(layerOrder, layer)
		}
		loose[layer] = append(loose[layer], segs...)
	}

	for _, ent := range entities {
		layer := layerOf(ent)
		kind, ok := resolve(layer)
		if !ok {
			continue
		}

		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if kind.Linear() {
				for i := 0; i+1 < len(outline); i++ {
					result.appendElement(kind, layer, model.SegmentGeometry(outline[i], outline[i+1]))
				}
				continue
			}
			if len(outline) < 3 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Skipped LWPOLYLINE with fewer than 3 vertices on layer %q", layer))
				continue
			}
			result.appendElement(kind, layer, model.OutlineGeometry(outline))

		case *entity.Circle:
			if kind.Linear() {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Skipped CIRCLE on wall layer %q", layer))
				continue
			}
			result.appendElement(kind, layer, model.OutlineGeometry(circleToOutline(e, 64)))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if kind.Linear() {
				result.appendElement(kind, layer, model.SegmentGeometry(pts[0], pts[len(pts)-1]))
				continue
			}
			addLoose(layer, pointsToSegments(pts)...)

		case *entity.Line:
			seg := segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			}
			if kind.Linear() {
				result.appendElement(kind, layer, model.SegmentGeometry(seg.start, seg.end))
				continue
			}
			addLoose(layer, seg)

		default:
			// Text, hatches, dimensions and blocks carry no takeoff geometry
		}
	}

	// Chain loose segments (LINEs and ARCs) per layer, so a door swing and
	// a room outline drawn with separate lines never merge.
	for _, layer := range layerOrder {
		for _, o := range chainSegments(loose[layer], 0.01) {
			result.appendElement(kinds[layer], layer, model.OutlineGeometry(o))
		}
	}

	if len(result.Elements) == 0 {
		result.Errors = append(result.Errors, "No door, window, wall or room found in DXF file")
	}
	return result
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to a point sequence.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var outline model.Outline

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 && i+1 < len(lw.Vertices) {
			next := model.Point2D{X: lw.Vertices[i+1][0], Y: lw.Vertices[i+1][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 16)
			outline = append(outline, arcPts[:len(arcPts)-1]...)
		} else {
			outline = append(outline, current)
		}
	}

	return outline
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor (tangent of a quarter of the included angle).
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) model.Outline {
	chord := p1.Distance(p2)
	if chord < 1e-9 {
		return model.Outline{p1, p2}
	}
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	perpX := -(p2.Y - p1.Y) / chord
	perpY := (p2.X - p1.X) / chord
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*(radius-sagitta)
	cy := my + perpY*(radius-sagitta)

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 && endAngle > startAngle {
		endAngle -= 2 * math.Pi
	}
	if bulge > 0 && endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make(model.Outline, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		angle := startAngle + float64(i)/float64(numSegments)*(endAngle-startAngle)
		pts = append(pts, model.Point2D{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, numSegments int) model.Outline {
	outline := make(model.Outline, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		outline[i] = model.Point2D{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return outline
}

// arcToPoints converts a DXF ARC entity to a series of points.
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		angle := startRad + float64(i)/float64(numSegments)*(endRad-startRad)
		pts[i] = model.Point2D{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return pts
}

func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects segments whose endpoints lie within tolerance.
// Open chains of at least 3 points are kept: a door swing drawn as an arc
// plus a leaf line still yields its footprint.
func chainSegments(segs []segment, tolerance float64) []model.Outline {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines []model.Outline

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		chain := []model.Point2D{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if tail.Distance(seg.start) <= tolerance {
					chain = append(chain, seg.end)
				} else if tail.Distance(seg.end) <= tolerance {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 3 && chain[0].Distance(chain[len(chain)-1]) <= tolerance {
			chain = chain[:len(chain)-1]
		}
		if len(chain) >= 3 {
			outlines = append(outlines, model.Outline(chain))
		}
	}

	// Largest first for a stable element order
	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines
}

// outlineArea computes the absolute polygon area using the shoelace formula.
func outlineArea(o model.Outline) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}
