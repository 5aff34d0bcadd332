// Package version implements version ordering and version requirement
// matching for dependency resolution.
//
// Ordering follows the build tool's comparator rather than semver:
//
//   - A version is split into parts at ".", "-", "_", "+" and at every
//     digit/letter boundary.
//   - Numeric parts compare numerically and rank higher than any
//     non-numeric part.
//   - Non-numeric parts have a special ranking: "dev" is lowest, then all
//     other qualifiers in alphabetical order, then "rc", "snapshot",
//     "final", "ga", "release" and "sp".
//   - When one version runs out of parts, an extra numeric part ranks the
//     longer version higher ("1.0.1" > "1.0") while an extra qualifier
//     ranks it lower ("1.0-rc" < "1.0").
//
// Requirements may be concrete versions, bracket ranges ("[1.0,2.0)"),
// prefix selectors ("1.+", "+") or latest-status markers
// ("latest.release", "latest.integration").
package version

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// part is one segment of a split version string.
type part struct {
	numeric bool
	number  uint64
	text    string
}

// Qualifier ranks, in ascending order. Unknown qualifiers sit between
// "dev" and "rc" and compare alphabetically among themselves.
const (
	rankDev = iota
	rankOther
	rankRC
	rankSnapshot
	rankFinal
	rankGA
	rankRelease
	rankSP
)

func qualifierRank(s string) int {
	switch strings.ToLower(s) {
	case "dev":
		return rankDev
	case "rc", "cr":
		return rankRC
	case "snapshot":
		return rankSnapshot
	case "final":
		return rankFinal
	case "ga":
		return rankGA
	case "release":
		return rankRelease
	case "sp":
		return rankSP
	default:
		return rankOther
	}
}

// split breaks a version string into parts at separators and digit/letter
// boundaries.
func split(s string) []part {
	var parts []part
	var cur strings.Builder
	var curDigit bool

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		text := cur.String()
		cur.Reset()
		if curDigit {
			n, err := strconv.ParseUint(text, 10, 64)
			if err == nil {
				parts = append(parts, part{numeric: true, number: n, text: text})
				return
			}
		}
		parts = append(parts, part{text: text})
	}

	for _, r := range s {
		switch {
		case r == '.' || r == '-' || r == '_' || r == '+':
			flush()
		case unicode.IsDigit(r):
			if cur.Len() > 0 && !curDigit {
				flush()
			}
			curDigit = true
			cur.WriteRune(r)
		default:
			if cur.Len() > 0 && curDigit {
				flush()
			}
			curDigit = false
			cur.WriteRune(r)
		}
	}
	flush()
	return parts
}

// comparePart compares two present parts.
func comparePart(a, b part) int {
	if a.numeric && b.numeric {
		switch {
		case a.number < b.number:
			return -1
		case a.number > b.number:
			return 1
		default:
			return 0
		}
	}
	// Numeric ranks above any qualifier.
	if a.numeric != b.numeric {
		if a.numeric {
			return 1
		}
		return -1
	}
	ra, rb := qualifierRank(a.text), qualifierRank(b.text)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return strings.Compare(strings.ToLower(a.text), strings.ToLower(b.text))
}

// Compare compares two version strings.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	pa, pb := split(a), split(b)
	n := max(len(pa), len(pb))
	for i := 0; i < n; i++ {
		switch {
		case i < len(pa) && i < len(pb):
			if c := comparePart(pa[i], pb[i]); c != 0 {
				return c
			}
		case i < len(pa):
			// a has an extra part: numeric means higher, qualifier lower.
			if pa[i].numeric {
				if pa[i].number == 0 {
					continue // "1.0" == "1.0.0"
				}
				return 1
			}
			return -1
		default:
			if pb[i].numeric {
				if pb[i].number == 0 {
					continue
				}
				return -1
			}
			return 1
		}
	}
	return 0
}

// Max returns the higher of two versions.
func Max(a, b string) string {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}

// Sort sorts versions in ascending order.
func Sort(versions []string) {
	slices.SortFunc(versions, Compare)
}

// IsRelease reports whether a version has release status: no qualifier
// parts below "final" rank. Used by the "latest.release" marker.
func IsRelease(v string) bool {
	for _, p := range split(v) {
		if !p.numeric && qualifierRank(p.text) < rankFinal {
			return false
		}
	}
	return true
}

// selectorKind classifies a version requirement.
type selectorKind int

const (
	kindExact selectorKind = iota
	kindRange
	kindPrefix
	kindLatest
	kindAny
)

// Selector is a parsed version requirement.
type Selector struct {
	// Raw is the requirement as declared.
	Raw string

	kind selectorKind

	// Range bounds (kindRange).
	lower, upper         string
	lowerIncl, upperIncl bool

	// Prefix parts (kindPrefix), e.g. "1.2" for "1.2.+".
	prefix string

	// releaseOnly restricts kindLatest to release-status versions.
	releaseOnly bool
}

// ParseSelector parses a version requirement string.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	sel := Selector{Raw: s}

	switch {
	case s == "+":
		sel.kind = kindAny
		return sel, nil
	case s == "latest.release":
		sel.kind = kindLatest
		sel.releaseOnly = true
		return sel, nil
	case s == "latest.integration":
		sel.kind = kindLatest
		return sel, nil
	case strings.HasSuffix(s, ".+"):
		sel.kind = kindPrefix
		sel.prefix = strings.TrimSuffix(s, ".+")
		if sel.prefix == "" {
			return sel, fmt.Errorf("bad version requirement %q", s)
		}
		return sel, nil
	case strings.HasPrefix(s, "[") || strings.HasPrefix(s, "("):
		return parseRange(s)
	case s == "":
		return sel, fmt.Errorf("empty version requirement")
	default:
		sel.kind = kindExact
		return sel, nil
	}
}

func parseRange(s string) (Selector, error) {
	sel := Selector{Raw: s, kind: kindRange}
	if len(s) < 3 {
		return sel, fmt.Errorf("bad version range %q", s)
	}
	lo, hi := s[0], s[len(s)-1]
	if (lo != '[' && lo != '(') || (hi != ']' && hi != ')') {
		return sel, fmt.Errorf("bad version range %q", s)
	}
	sel.lowerIncl = lo == '['
	sel.upperIncl = hi == ']'

	inner := s[1 : len(s)-1]
	bounds := strings.Split(inner, ",")
	switch len(bounds) {
	case 1:
		// "[1.0]" pins exactly one version.
		v := strings.TrimSpace(bounds[0])
		if v == "" || !sel.lowerIncl || !sel.upperIncl {
			return sel, fmt.Errorf("bad version range %q", s)
		}
		sel.lower, sel.upper = v, v
	case 2:
		sel.lower = strings.TrimSpace(bounds[0])
		sel.upper = strings.TrimSpace(bounds[1])
		if sel.lower == "" && sel.upper == "" {
			return sel, fmt.Errorf("bad version range %q", s)
		}
	default:
		return sel, fmt.Errorf("bad version range %q", s)
	}
	return sel, nil
}

// IsDynamic reports whether the requirement needs an available-versions
// listing to resolve (anything other than a concrete version).
func (s Selector) IsDynamic() bool {
	return s.kind != kindExact
}

// Exact returns the concrete version for a non-dynamic selector, or for a
// single-version range like "[1.0]".
func (s Selector) Exact() (string, bool) {
	switch {
	case s.kind == kindExact:
		return s.Raw, true
	case s.kind == kindRange && s.lower == s.upper && s.lower != "":
		return s.lower, true
	}
	return "", false
}

// Matches reports whether a concrete version satisfies the requirement.
func (s Selector) Matches(v string) bool {
	switch s.kind {
	case kindExact:
		return Compare(s.Raw, v) == 0
	case kindAny:
		return true
	case kindLatest:
		return !s.releaseOnly || IsRelease(v)
	case kindPrefix:
		return matchesPrefix(s.prefix, v)
	case kindRange:
		if s.lower != "" {
			c := Compare(v, s.lower)
			if c < 0 || (c == 0 && !s.lowerIncl) {
				return false
			}
		}
		if s.upper != "" {
			c := Compare(v, s.upper)
			if c > 0 || (c == 0 && !s.upperIncl) {
				return false
			}
		}
		return true
	}
	return false
}

// matchesPrefix reports whether v starts with the prefix's parts, aligned
// on part boundaries ("1.2" matches "1.2.3" but not "1.20").
func matchesPrefix(prefix, v string) bool {
	pp, pv := split(prefix), split(v)
	if len(pv) < len(pp) {
		return false
	}
	for i := range pp {
		if comparePart(pp[i], pv[i]) != 0 {
			return false
		}
	}
	return true
}

// Best returns the highest version among available that satisfies the
// requirement. The second result is false when none match.
func (s Selector) Best(available []string) (string, bool) {
	best := ""
	found := false
	for _, v := range available {
		if !s.Matches(v) {
			continue
		}
		if !found || Compare(v, best) > 0 {
			best = v
			found = true
		}
	}
	return best, found
}

// Preferred returns a version to assume when no listing is available:
// the concrete version itself, or a bounded inclusive upper bound.
func (s Selector) Preferred() (string, bool) {
	if v, ok := s.Exact(); ok {
		return v, true
	}
	if s.kind == kindRange && s.upper != "" && s.upperIncl {
		return s.upper, true
	}
	return "", false
}
