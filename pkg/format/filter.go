package format

import "strings"

// NameFilter is the message-type allow-set spec.md §4.3 calls name_filter:
// absent (nil) means "all types pass."
type NameFilter map[string]bool

// Allows reports whether a message type name passes the filter. A nil
// filter allows everything.
func (f NameFilter) Allows(name string) bool {
	if f == nil {
		return true
	}
	return f[name]
}

// ParseNameFilter parses a CLI/config filter spec into a NameFilter,
// adapted from the teacher's peer.ACL string-rule grammar: the literal
// "ALL" (case-insensitive) means no filtering (nil), anything else is a
// comma-separated list of message type names. Blank entries and
// surrounding whitespace are ignored, mirroring ACL's tolerant parsing.
func ParseNameFilter(spec string) NameFilter {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "ALL") {
		return nil
	}

	filter := make(NameFilter)
	for _, part := range strings.Split(spec, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		filter[name] = true
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}
