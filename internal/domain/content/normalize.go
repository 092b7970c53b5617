package content

import (
	"fmt"
	"strings"
)

// NormalizeTags accepts a tag list or a comma separated string and returns
// trimmed, non-empty tags in first-seen order. Duplicates are detected
// case-sensitively; nil list items are dropped. Any other input yields an
// empty list.
func NormalizeTags(v any) []string {
	switch t := v.(type) {
	case []string:
		return normalizeStrings(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
		return normalizeStrings(items)
	case string:
		return normalizeStrings(strings.Split(t, ","))
	default:
		return []string{}
	}
}

func normalizeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// NormalizeTimeline converts the raw `timeline` front matter value. Entries
// without a year or a place are dropped.
func NormalizeTimeline(v any) []TimelineEntry {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]TimelineEntry, 0, len(list))
	for _, item := range list {
		fields := toStringMap(item)
		if fields == nil {
			continue
		}
		e := TimelineEntry{
			Year:     scalar(fields["year"]),
			Place:    scalar(fields["place"]),
			Role:     scalar(fields["role"]),
			Category: scalar(fields["category"]),
			Detail:   scalar(fields["detail"]),
		}
		if e.Year == "" || e.Place == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func toStringMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}

func scalar(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case int, int64, float64, bool:
		return fmt.Sprint(s)
	default:
		return ""
	}
}
