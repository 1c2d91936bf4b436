package enricher

import (
	"strings"

	"github.com/firmint/firmint/domain/enrichment"
)

// placeholderValues are the answers models give for a field they could not
// determine. They resolve to an empty field; placeholder text is never
// echoed into a record.
var placeholderValues = map[string]struct{}{
	"unknown":   {},
	"not found": {},
	"n/a":       {},
	"none":      {},
	"-":         {},
}

// ParseFields extracts the four enrichment attributes from raw model output.
// It never fails: input with no recognizable field yields empty Fields.
//
// The parser tolerates reordered lines, key casing and separator variants
// ("Company Size", "company-size"), markdown wrapping around the lines, and
// stray prose before or after them. For each key the first occurrence wins.
// A field resolves to empty when its line is absent, when its value is
// empty, or when its value is a placeholder such as "unknown".
func ParseFields(text string) enrichment.Fields {
	found := make(map[string]string, len(promptFields))

	for _, line := range strings.Split(text, "\n") {
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, seen := found[key]; seen {
			continue
		}
		found[key] = value
	}

	return enrichment.NewFields(
		found[keyWebsite],
		found[keyIndustry],
		found[keyCompanySize],
		found[keyHQLocation],
	)
}

// parseLine splits one "key: value" line. ok is false when the line has no
// colon or its key is not one of the four response keys. A placeholder or
// empty value comes back as value == "" with ok still true, so the key is
// claimed and a later duplicate cannot overwrite it.
func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}

	rawKey, rawValue, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}

	key = normalizeKey(rawKey)
	switch key {
	case keyWebsite, keyIndustry, keyCompanySize, keyHQLocation:
	default:
		return "", "", false
	}

	value = cleanValue(rawValue)
	if isPlaceholder(value) {
		value = ""
	}
	return key, value, true
}

// normalizeKey lowercases a raw key, strips markdown wrapping, and collapses
// separator variants so "Company Size" and "company-size" both match
// "company_size".
func normalizeKey(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), "-*#>`_ ")
	raw = strings.ToLower(raw)
	raw = strings.ReplaceAll(raw, "-", " ")
	raw = strings.ReplaceAll(raw, "_", " ")
	return strings.Join(strings.Fields(raw), "_")
}

// cleanValue strips whitespace, markdown emphasis, and surrounding quotes
// from a raw value.
func cleanValue(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.Trim(v, "*`")
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	return strings.TrimSpace(v)
}

// isPlaceholder reports whether a cleaned value is an "unknown"-family
// answer. The comparison ignores case and trailing punctuation; the stored
// value is never modified by this check.
func isPlaceholder(value string) bool {
	v := strings.ToLower(value)
	v = strings.TrimSpace(strings.TrimRight(v, ".,!;:"))
	if v == "" {
		return true
	}
	_, ok := placeholderValues[v]
	return ok
}
