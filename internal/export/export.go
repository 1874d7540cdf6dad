package export

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

const untitled = "Untitled"

type frontMatterEnvelope struct {
	Title string `yaml:"title"`
}

// Title extracts the document title: front matter first, then the first ATX
// heading, then a placeholder. It never fails; malformed front matter simply
// falls through to the heading scan.
func Title(source string) string {
	var meta frontMatterEnvelope
	if _, err := frontmatter.Parse(bytes.NewReader([]byte(source)), &meta); err == nil {
		if title := strings.TrimSpace(meta.Title); title != "" {
			return title
		}
	}

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			if title := strings.TrimSpace(strings.TrimPrefix(trimmed, "# ")); title != "" {
				return title
			}
		}
	}
	return untitled
}

// Build assembles the machine-readable projection of a processed document.
func Build(source string, refs []interfaces.Reference, report *interfaces.ValidationReport) *interfaces.ExportRecord {
	record := &interfaces.ExportRecord{
		Title:      Title(source),
		References: refs,
		Kinds:      distinctKinds(refs),
	}
	if report != nil {
		record.Summary = interfaces.ValidationSummary{
			Total:   report.TotalCount,
			Valid:   report.ValidCount,
			Invalid: report.InvalidCount,
		}
	} else {
		record.Summary = interfaces.ValidationSummary{Total: len(refs)}
	}
	return record
}

// JSON serialises the record. JSON is the one mandatory export format.
func JSON(record *interfaces.ExportRecord) ([]byte, error) {
	return json.MarshalIndent(record, "", "  ")
}

// BuildErrorReport groups invalid references for diagnostics tooling.
func BuildErrorReport(refs []interfaces.Reference) *interfaces.ErrorReport {
	report := &interfaces.ErrorReport{
		ByKind: make(map[interfaces.Kind]int),
	}
	for _, ref := range refs {
		if ref.IsValid() {
			continue
		}
		report.TotalErrors++
		report.ByKind[ref.Kind]++
		report.Entries = append(report.Entries, ref)
	}
	return report
}

// distinctKinds lists the kinds present in the references, in the closed
// set's stable order, with unknown trailing.
func distinctKinds(refs []interfaces.Reference) []interfaces.Kind {
	present := make(map[interfaces.Kind]struct{}, len(refs))
	for _, ref := range refs {
		present[ref.Kind] = struct{}{}
	}

	var kinds []interfaces.Kind
	for _, kind := range interfaces.Kinds() {
		if _, ok := present[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	if _, ok := present[interfaces.KindUnknown]; ok {
		kinds = append(kinds, interfaces.KindUnknown)
	}
	return kinds
}
