package importer

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/piwi3910/metre/internal/model"
)

// svgDoc mirrors the subset of SVG used by exported floor plans.
type svgDoc struct {
	XMLName xml.Name `xml:"svg"`
	svgGroup
}

type svgGroup struct {
	ID       string     `xml:"id,attr"`
	Class    string     `xml:"class,attr"`
	Layer    string     `xml:"data-layer,attr"`
	Label    string     `xml:"label,attr"` // inkscape:label
	Groups   []svgGroup `xml:"g"`
	Rects    []svgShape `xml:"rect"`
	Lines    []svgShape `xml:"line"`
	Polygons []svgShape `xml:"polygon"`
	Polys    []svgShape `xml:"polyline"`
	Paths    []svgShape `xml:"path"`
	Circles  []svgShape `xml:"circle"`
}

type svgShape struct {
	XMLName   xml.Name
	ID        string  `xml:"id,attr"`
	Class     string  `xml:"class,attr"`
	Layer     string  `xml:"data-layer,attr"`
	Transform string  `xml:"transform,attr"`
	X         float64 `xml:"x,attr"`
	Y         float64 `xml:"y,attr"`
	Width     float64 `xml:"width,attr"`
	Height    float64 `xml:"height,attr"`
	X1        float64 `xml:"x1,attr"`
	Y1        float64 `xml:"y1,attr"`
	X2        float64 `xml:"x2,attr"`
	Y2        float64 `xml:"y2,attr"`
	CX        float64 `xml:"cx,attr"`
	CY        float64 `xml:"cy,attr"`
	R         float64 `xml:"r,attr"`
	Points    string  `xml:"points,attr"`
	D         string  `xml:"d,attr"`
}

// svgContext carries the kind and layer inherited from enclosing groups.
type svgContext struct {
	kind  model.ElementKind
	layer string
}

// ImportSVG ingests an SVG floor plan from a file.
func ImportSVG(path string) PlanResult {
	f, err := os.Open(path)
	if err != nil {
		return PlanResult{Errors: []string{fmt.Sprintf("Cannot open SVG file: %v", err)}}
	}
	defer f.Close()
	return ParseSVG(f)
}

// ParseSVG ingests an SVG floor plan. The kind comes from the element id
// prefix (Wall_, Door_, Window_, Room_ and their French forms), else from its
// class, else from the enclosing group. The layer is the data-layer
// attribute, else the class, else the enclosing group's layer, else the kind.
func ParseSVG(r io.Reader) PlanResult {
	result := PlanResult{}

	var doc svgDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse SVG: %v", err))
		return result
	}

	walkSVGGroup(&result, doc.svgGroup, svgContext{})

	if len(result.Elements) == 0 {
		result.Errors = append(result.Errors, "No door, window, wall or room found in SVG file")
	}
	return result
}

func walkSVGGroup(result *PlanResult, g svgGroup, parent svgContext) {
	ctx := parent
	for _, name := range []string{g.Layer, g.Label, g.ID, g.Class} {
		if k, ok := InferKind(name); ok {
			ctx.kind = k
			ctx.layer = name
			break
		}
	}
	if g.Layer != "" {
		ctx.layer = g.Layer
	}

	for _, list := range [][]svgShape{g.Rects, g.Lines, g.Polygons, g.Polys, g.Paths, g.Circles} {
		for _, s := range list {
			addSVGShape(result, s, ctx)
		}
	}
	for _, child := range g.Groups {
		walkSVGGroup(result, child, ctx)
	}
}

func addSVGShape(result *PlanResult, s svgShape, ctx svgContext) {
	kind, ok := classifySVG(s, ctx)
	if !ok {
		return
	}
	layer := firstNonEmpty(s.Layer, s.Class, ctx.layer, string(kind))
	if s.Transform != "" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Ignored transform on %s %q", s.XMLName.Local, s.ID))
	}

	var pts model.Outline
	switch s.XMLName.Local {
	case "rect":
		if kind.Linear() {
			// Walls drawn as thin rectangles: centre line along the long side
			g := model.RectGeometry(s.X, s.Y, s.Width, s.Height)
			g.Length = max(s.Width, s.Height)
			result.appendElement(kind, layer, g)
			return
		}
		result.appendElement(kind, layer, model.RectGeometry(s.X, s.Y, s.Width, s.Height))
		return
	case "line":
		pts = model.Outline{{X: s.X1, Y: s.Y1}, {X: s.X2, Y: s.Y2}}
	case "circle":
		result.appendElement(kind, layer, model.RectGeometry(s.CX-s.R, s.CY-s.R, 2*s.R, 2*s.R))
		return
	case "polygon", "polyline":
		pts = parsePoints(s.Points)
	case "path":
		var err error
		pts, err = parsePathPoints(s.D)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped path %q: %v", s.ID, err))
			return
		}
	}

	if len(pts) < 2 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %s %q with fewer than 2 points", s.XMLName.Local, s.ID))
		return
	}
	if kind.Linear() {
		for i := 0; i+1 < len(pts); i++ {
			result.appendElement(kind, layer, model.SegmentGeometry(pts[i], pts[i+1]))
		}
		return
	}
	result.appendElement(kind, layer, model.OutlineGeometry(pts))
}

// classifySVG resolves the kind of a shape from its id prefix, then its
// class, then the enclosing group.
func classifySVG(s svgShape, ctx svgContext) (model.ElementKind, bool) {
	if s.ID != "" {
		prefix := s.ID
		if i := strings.IndexAny(s.ID, "_-"); i > 0 {
			prefix = s.ID[:i]
		}
		if k, ok := InferKind(prefix); ok {
			return k, true
		}
		if strings.HasSuffix(strings.ToLower(s.ID), "_room") {
			return model.KindRoom, true
		}
	}
	if k, ok := InferKind(s.Layer); ok {
		return k, true
	}
	if k, ok := InferKind(s.Class); ok {
		return k, true
	}
	if ctx.kind != "" {
		return ctx.kind, true
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parsePoints reads an SVG points list ("x1,y1 x2,y2 ...").
func parsePoints(s string) model.Outline {
	nums := parseNumbers(s)
	var pts model.Outline
	for i := 0; i+1 < len(nums); i += 2 {
		pts = append(pts, model.Point2D{X: nums[i], Y: nums[i+1]})
	}
	return pts
}

func parseNumbers(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	nums := make([]float64, 0, len(fields))
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			nums = append(nums, v)
		}
	}
	return nums
}

// parsePathPoints collects the vertices of a path made of straight segments
// (M, L, H, V, Z in absolute or relative form). Curves are rejected.
func parsePathPoints(d string) (model.Outline, error) {
	var (
		pts       model.Outline
		cur       model.Point2D
		cmd       rune
		start     model.Point2D
		tokens    = tokenizePath(d)
		readFloat = func(i *int) (float64, error) {
			if *i >= len(tokens) {
				return 0, fmt.Errorf("truncated path data")
			}
			v, err := strconv.ParseFloat(tokens[*i], 64)
			if err != nil {
				return 0, fmt.Errorf("invalid number %q", tokens[*i])
			}
			*i++
			return v, nil
		}
	)

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if r := rune(tok[0]); unicode.IsLetter(r) {
			cmd = r
			i++
			if cmd == 'Z' || cmd == 'z' {
				cur = start
				pts = append(pts, cur)
				continue
			}
		}
		switch cmd {
		case 'M', 'L', 'm', 'l':
			x, err := readFloat(&i)
			if err != nil {
				return nil, err
			}
			y, err := readFloat(&i)
			if err != nil {
				return nil, err
			}
			if unicode.IsLower(cmd) {
				x, y = cur.X+x, cur.Y+y
			}
			cur = model.Point2D{X: x, Y: y}
			if cmd == 'M' || cmd == 'm' {
				start = cur
				// Implicit lineto after the first pair
				if cmd == 'M' {
					cmd = 'L'
				} else {
					cmd = 'l'
				}
			}
		case 'H', 'h':
			x, err := readFloat(&i)
			if err != nil {
				return nil, err
			}
			if cmd == 'h' {
				x += cur.X
			}
			cur.X = x
		case 'V', 'v':
			y, err := readFloat(&i)
			if err != nil {
				return nil, err
			}
			if cmd == 'v' {
				y += cur.Y
			}
			cur.Y = y
		case 0:
			return nil, fmt.Errorf("path data must start with a command")
		default:
			return nil, fmt.Errorf("unsupported path command %q", cmd)
		}
		pts = append(pts, cur)
	}
	return pts, nil
}

func tokenizePath(d string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range d {
		switch {
		case unicode.IsLetter(r) && r != 'e' && r != 'E':
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r) || r == ',':
			flush()
		case r == '-' && b.Len() > 0 && !strings.HasSuffix(b.String(), "e"):
			flush()
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return tokens
}
