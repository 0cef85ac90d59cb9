// services/normalizer.go
package services

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// PaidEventTypes is the allow-list of canonical event types that trigger
// attribution. Everything else is acknowledged and ignored.
var PaidEventTypes = map[string]bool{
	"invoice.paid":      true,
	"payment.succeeded": true,
}

// refCodePattern matches the shape of a generated referral code:
// long digit id, dash, short alphanumeric suffix.
var refCodePattern = regexp.MustCompile(`(?i)\b\d{10,}-[a-z0-9]{4,}\b`)

// Walk ceilings for adversarial payloads.
const (
	maxWalkDepth = 64
	maxWalkNodes = 100000
)

// NormalizeEventType collapses provider variants (invoice_paid, invoice.paid)
// into one canonical lower-case dotted form.
func NormalizeEventType(raw string) string {
	return strings.ReplaceAll(strings.ToLower(raw), "_", ".")
}

// eventIDPaths is the priority order for the dedup key.
var eventIDPaths = [][]string{
	{"id"},
	{"data", "id"},
	{"data", "invoice_id"},
	{"data", "payment_id"},
	{"invoice_id"},
	{"payment_id"},
}

// ExtractEventID returns the first non-empty string across the known id
// locations, or "" when the payload carries none.
func ExtractEventID(event map[string]interface{}) string {
	for _, path := range eventIDPaths {
		if s, ok := lookupString(event, path); ok && s != "" {
			return s
		}
	}
	return ""
}

// refCodePaths is the priority order for the direct (phase one) lookup.
var refCodePaths = [][]string{
	{"data", "metadata", "ref"},
	{"data", "metadata", "ref_code"},
	{"data", "ref"},
	{"data", "ref_code"},
	{"metadata", "ref"},
	{"metadata", "ref_code"},
	{"ref"},
	{"ref_code"},
}

// ExtractRefCode locates an embedded referral code. Phase one checks the
// known metadata paths; phase two falls back to a bounded, cycle-safe scan of
// the whole payload tree.
func ExtractRefCode(event map[string]interface{}) string {
	for _, path := range refCodePaths {
		if s, ok := lookupString(event, path); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}

	w := &refWalker{seen: map[uintptr]bool{}}
	return w.walk(event, 0)
}

func lookupString(node map[string]interface{}, path []string) (string, bool) {
	current := interface{}(node)
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		current, ok = m[key]
		if !ok {
			return "", false
		}
	}
	s, ok := current.(string)
	return s, ok
}

// refWalker is the phase-two depth-first scan. Containers are tracked by
// identity so cyclic structures terminate; node and depth ceilings bound the
// cost on hostile payloads. Keys are visited in sorted order so the same
// payload always yields the same candidate.
type refWalker struct {
	seen  map[uintptr]bool
	nodes int
}

func (w *refWalker) walk(node interface{}, depth int) string {
	if node == nil || depth > maxWalkDepth {
		return ""
	}
	w.nodes++
	if w.nodes > maxWalkNodes {
		return ""
	}

	switch v := node.(type) {
	case string:
		return refCodePattern.FindString(v)

	case map[string]interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if w.seen[ptr] {
			return ""
		}
		w.seen[ptr] = true

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			val := v[k]
			if s, ok := val.(string); ok && strings.Contains(strings.ToLower(k), "ref") {
				if m := refCodePattern.FindString(s); m != "" {
					return m
				}
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
			if found := w.walk(val, depth+1); found != "" {
				return found
			}
		}
		return ""

	case []interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if w.seen[ptr] {
			return ""
		}
		w.seen[ptr] = true

		for _, item := range v {
			if found := w.walk(item, depth+1); found != "" {
				return found
			}
		}
		return ""

	default:
		// numbers, bools: nothing to extract
		return ""
	}
}
