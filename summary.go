package managed

import (
	"github.com/goliatone/go-managed/pkg/report"
	"github.com/goliatone/go-managed/pkg/schema"
)

// Summary aliases report.Summary.
type Summary = report.Summary

// PropertySummary aliases report.PropertySummary.
type PropertySummary = report.PropertySummary

// Summarize renders s as a Summary.
func Summarize(s *schema.StructSchema) Summary {
	return report.Summarize(s)
}
