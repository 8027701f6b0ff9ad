package importer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/piwi3910/metre/internal/model"
)

//go:embed schema/plan.schema.json
var planSchema []byte

// jsonPlan is the on-disk shape of a plan exported by the browser front-end.
type jsonPlan struct {
	Name     string          `json:"name"`
	Elements []model.Element `json:"elements"`
}

// PlanSchema returns the JSON schema JSON plans are validated against.
func PlanSchema() []byte {
	return planSchema
}

// ImportPlanJSON ingests a JSON plan file.
func ImportPlanJSON(path string) PlanResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return ParsePlanJSON(data)
}

// ParsePlanJSON validates data against the plan schema and converts it into
// elements. Ids are kept when present; duplicated ids are reported and the
// later element is skipped. Highlight and removal flags are cleared.
func ParsePlanJSON(data []byte) PlanResult {
	result := PlanResult{}

	validation, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(planSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read JSON plan: %v", err))
		return result
	}
	if !validation.Valid() {
		for _, e := range validation.Errors() {
			result.Errors = append(result.Errors, fmt.Sprintf("Schema: %s", e))
		}
		return result
	}

	var plan jsonPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot decode JSON plan: %v", err))
		return result
	}

	seen := make(map[string]bool, len(plan.Elements))
	for i, e := range plan.Elements {
		if e.ID == "" {
			e.ID = uuid.New().String()[:8]
		}
		if seen[e.ID] {
			result.Errors = append(result.Errors, fmt.Sprintf("Element %d: duplicate id %q", i+1, e.ID))
			continue
		}
		seen[e.ID] = true
		if e.Layer == "" {
			e.Layer = string(e.Kind)
		}
		if e.Kind.Linear() && e.Geometry.Length == 0 {
			e.Geometry.Length = max(e.Geometry.Width, e.Geometry.Height)
		}
		e.Highlighted = false
		e.Removed = false
		result.Elements = append(result.Elements, e)
	}

	if len(plan.Elements) == 0 {
		result.Warnings = append(result.Warnings, "Plan contains no elements")
	}
	return result
}
