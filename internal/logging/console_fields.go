package logging

import "strings"

type infoField struct {
	label string
	value string
}

// selectInfoFields renders every attribute as a displayable field. The
// attribute set here is small and meaningful, so nothing is dropped.
func selectInfoFields(attrs []kv) ([]infoField, int) {
	fields := make([]infoField, 0, len(attrs))
	for _, a := range attrs {
		if a.key == "" {
			continue
		}
		fields = append(fields, infoField{label: a.key, value: attrString(a.value)})
	}
	return fields, 0
}

// infoSummaryKey groups repeated INFO lines for the same component/mid/stage
// so the filterRepeatedInfo cache can suppress duplicate field values across
// consecutive log lines for the same subject.
func infoSummaryKey(component, mid, stage string, _ []kv) string {
	parts := make([]string, 0, 3)
	if component != "" {
		parts = append(parts, component)
	}
	if mid != "" {
		parts = append(parts, mid)
	}
	if stage != "" {
		parts = append(parts, stage)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "|")
}
