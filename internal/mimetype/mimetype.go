// Package mimetype parses launcher conditions into mimetype rule sets and merges them
// with the rules carried by step configuration.
package mimetype

import (
	"strings"

	"github.com/codebypatrickleung/wfmigrate/internal/common"
)

// DefaultInclude applies when neither a step nor any launcher restricts mimetypes.
const DefaultInclude = "image/.*"

// mimetypeKey is the property suffix that marks a condition as a mimetype rule.
const mimetypeKey = "jcr:mimeType"

// Operator is a launcher condition comparison.
type Operator string

// Condition operators. Equals and Assign are synonyms.
const (
	Equals    Operator = "=="
	Assign    Operator = "="
	NotEquals Operator = "!="
)

// Condition is one parsed launcher condition.
type Condition struct {
	Key    string
	Op     Operator
	Values []string
}

// Include reports whether the condition adds to the include set.
func (c Condition) Include() bool {
	return c.Op != NotEquals
}

// RuleSet holds mimetype include and exclude patterns in first-seen order.
type RuleSet struct {
	Includes []string
	Excludes []string
}

// ParseCondition parses key<op>value, where value is a single pattern or a bracketed list.
// It returns false when raw carries no operator or no key.
func ParseCondition(raw string) (Condition, bool) {
	i := strings.Index(raw, "=")
	if i < 0 {
		return Condition{}, false
	}
	var c Condition
	key, value := raw[:i], raw[i+1:]
	switch {
	case i > 0 && raw[i-1] == '!':
		c.Op, key = NotEquals, raw[:i-1]
	case strings.HasPrefix(value, "="):
		c.Op, value = Equals, value[1:]
	default:
		c.Op = Assign
	}
	c.Key = strings.TrimSpace(key)
	if c.Key == "" {
		return Condition{}, false
	}
	for _, v := range common.ParseList(value) {
		c.Values = append(c.Values, normalize(v))
	}
	return c, true
}

// RuleSetFromConditions collects the mimetype rules among raw launcher conditions.
// Conditions on other properties and unparseable strings are ignored.
func RuleSetFromConditions(conditions []string) RuleSet {
	var rs RuleSet
	for _, raw := range conditions {
		c, ok := ParseCondition(raw)
		if !ok || !strings.HasSuffix(c.Key, mimetypeKey) {
			continue
		}
		if c.Include() {
			rs.Includes = common.AppendUnique(rs.Includes, c.Values...)
		} else {
			rs.Excludes = common.AppendUnique(rs.Excludes, c.Values...)
		}
	}
	return rs
}

// Merge combines step-level rules with the rules of every condition source.
//
// Includes are replaced: when any source supplies an include, the union of all source
// includes is the result and base includes are dropped. Otherwise base includes are kept,
// or DefaultInclude when base has none. Excludes accumulate across base and all sources.
// A pattern may end up in both sets.
func Merge(base RuleSet, sources ...RuleSet) RuleSet {
	var merged RuleSet
	for _, src := range sources {
		merged.Includes = common.AppendUnique(merged.Includes, src.Includes...)
	}
	if len(merged.Includes) == 0 {
		merged.Includes = common.AppendUnique(nil, base.Includes...)
	}
	if len(merged.Includes) == 0 {
		merged.Includes = []string{DefaultInclude}
	}

	merged.Excludes = common.AppendUnique(nil, base.Excludes...)
	for _, src := range sources {
		merged.Excludes = common.AppendUnique(merged.Excludes, src.Excludes...)
	}
	return merged
}

// normalize rewrites glob-style wildcards into the regular expressions profiles expect.
func normalize(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "(.*)", ".*")
	if strings.HasSuffix(pattern, "/*") {
		pattern = strings.TrimSuffix(pattern, "*") + ".*"
	}
	return pattern
}
