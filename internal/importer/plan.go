package importer

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/piwi3910/metre/internal/model"
)

// PlanResult holds the elements ingested from a plan file.
type PlanResult struct {
	Elements []model.Element
	Errors   []string
	Warnings []string
}

// OK reports whether the plan produced elements without fatal errors.
func (r PlanResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Elements) > 0
}

// kindAliases maps element kinds to the layer/id words that designate them
// (lowercase, accents stripped). Windows are matched first so that
// "porte-fenetre" is a window, not a door.
var kindAliases = []struct {
	kind    model.ElementKind
	aliases []string
}{
	{model.KindWindow, []string{"fenetre", "window", "baie", "chassis"}},
	{model.KindDoor, []string{"porte", "door", "pte"}},
	{model.KindWall, []string{"mur", "wall", "cloison", "partition"}},
	{model.KindRoom, []string{"piece", "room", "local", "espace", "space", "zone"}},
}

var accentFolder = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a", "î", "i", "ï", "i",
	"ô", "o", "û", "u", "ù", "u", "ç", "c", "œ", "oe",
)

func foldName(s string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// InferKind guesses the element kind from a layer name, an element id or a
// free-form label such as "A-WALL", "PORTES_EXT" or "Window_12".
// The first word that starts with a known alias wins.
func InferKind(name string) (model.ElementKind, bool) {
	folded := foldName(name)
	if folded == "" {
		return "", false
	}
	if k := model.ElementKind(folded); k.Valid() {
		return k, true
	}
	compact := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, folded)
	if strings.Contains(compact, "portefenetre") {
		return model.KindWindow, true
	}

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		for _, ka := range kindAliases {
			for _, alias := range ka.aliases {
				if strings.HasPrefix(w, alias) {
					return ka.kind, true
				}
			}
		}
	}
	return "", false
}

// ImportPlan dispatches on the file extension.
func ImportPlan(path string) PlanResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dxf":
		return ImportDXF(path)
	case ".svg":
		return ImportSVG(path)
	case ".json":
		return ImportPlanJSON(path)
	default:
		return PlanResult{Errors: []string{fmt.Sprintf("Unsupported plan format %q", filepath.Ext(path))}}
	}
}

// minExtent is the smallest footprint, in plan units, kept as an element.
const minExtent = 0.01

// appendElement adds an element unless its geometry is degenerate.
func (r *PlanResult) appendElement(kind model.ElementKind, layer string, geom model.Geometry) {
	if kind.Linear() {
		if geom.Length < minExtent {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Skipped zero-length %s on layer %q", kind, layer))
			return
		}
	} else if geom.Width < minExtent || geom.Height < minExtent {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("Skipped degenerate %s on layer %q (%.2f x %.2f)", kind, layer, geom.Width, geom.Height))
		return
	}
	r.Elements = append(r.Elements, model.NewElement(kind, layer, geom))
}

// CountByKind tallies the ingested elements per kind.
func (r PlanResult) CountByKind() map[model.ElementKind]int {
	counts := make(map[model.ElementKind]int)
	for _, e := range r.Elements {
		counts[e.Kind]++
	}
	return counts
}
