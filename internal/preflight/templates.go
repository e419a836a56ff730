package preflight

import (
	"fmt"
)

// DefaultRequiredTemplates are the base templates every plan with a toy
// board and online monitoring resolves.
var DefaultRequiredTemplates = []string{"ToySimulator.fcl", "WFViewer.fcl"}

// CheckTemplates reports where each required base template resolves.
func (c *Checker) CheckTemplates() []CheckResult {
	results := make([]CheckResult, 0, len(c.required))
	for _, name := range c.required {
		result := CheckResult{
			Name:     "template " + name,
			Required: true,
		}
		entry, _, err := c.templates.Resolve(name)
		if err != nil {
			result.Status = StatusFail
			result.Message = "not found"
			result.Details = err.Error()
		} else {
			result.Status = StatusPass
			result.Message = fmt.Sprintf("from %s", entry.Source)
		}
		results = append(results, result)
	}
	return results
}
