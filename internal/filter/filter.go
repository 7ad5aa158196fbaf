// Package filter parses the compact filter strings accepted by sshcld.
package filter

import (
	"strings"

	"github.com/sshcld/sshcld/pkg/instance"
)

// InstanceIDKey is the reserved condition key that switches a filter
// string into instance-ID lookup mode.
const InstanceIDKey = "FILTER_INSTANCE_ID"

// Clause is a single tag-equality condition.
type Clause struct {
	Key   string
	Value string
}

// Query is a parsed filter string. Exactly one of TagClauses or
// InstanceIDs is set; both empty means no filtering.
type Query struct {
	TagClauses  []Clause
	InstanceIDs []string
}

// Parse turns a filter string such as "environment=prod,application=nginx"
// into a Query. Any condition that is not exactly key=value makes the
// whole string invalid and an empty Query is returned.
func Parse(s string) Query {
	s = strings.TrimSpace(s)
	if s == "" {
		return Query{}
	}

	var q Query
	for _, condition := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(condition), "=")
		if len(parts) != 2 {
			return Query{}
		}

		key, value := parts[0], parts[1]
		if key == InstanceIDKey {
			return Query{InstanceIDs: []string{value}}
		}
		q.TagClauses = append(q.TagClauses, Clause{Key: key, Value: value})
	}

	return q
}

// ByName builds the filter string for the name shorthand.
func ByName(name string) string {
	return "Name=" + name
}

// ByID builds the filter string for the instance ID shorthand.
func ByID(id string) string {
	return InstanceIDKey + "=" + id
}

// IsEmpty returns true if the query applies no filtering.
func (q Query) IsEmpty() bool {
	return len(q.TagClauses) == 0 && len(q.InstanceIDs) == 0
}

// IsIDLookup returns true if the query selects instances by ID.
func (q Query) IsIDLookup() bool {
	return len(q.InstanceIDs) > 0
}

// Matches reports whether inst satisfies the query. Tag clauses use AND
// semantics, the same way the provider evaluates them.
func (q Query) Matches(inst instance.Instance) bool {
	if q.IsIDLookup() {
		for _, id := range q.InstanceIDs {
			if inst.ID == id {
				return true
			}
		}
		return false
	}

	for _, c := range q.TagClauses {
		v, ok := inst.Tags[c.Key]
		if !ok || v != c.Value {
			return false
		}
	}
	return true
}
