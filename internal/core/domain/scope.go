package domain

import "strings"

// AccessScope holds the three allow-lists configured at startup. An empty
// list leaves that dimension unrestricted. The scope is built once before
// the server accepts requests and never mutated, so concurrent reads need
// no locking.
type AccessScope struct {
	databases map[string]struct{}
	schemas   map[string]struct{}
	tables    map[string]struct{}
	uppercase bool
}

// NewAccessScope builds an immutable scope from the configured allow-lists.
// When uppercase is true, both the lists and every checked name are
// uppercased before comparison, matching Snowflake's casing convention for
// unquoted identifiers.
func NewAccessScope(databases, schemas, tables []string, uppercase bool) AccessScope {
	return AccessScope{
		databases: toSet(databases, uppercase),
		schemas:   toSet(schemas, uppercase),
		tables:    toSet(tables, uppercase),
		uppercase: uppercase,
	}
}

// Allows reports whether every segment present in name passes its
// dimension's allow-list. Dimensions with an empty allow-list, and segments
// absent from name, impose no restriction.
func (s AccessScope) Allows(name QualifiedName) bool {
	if s.uppercase {
		name = name.Uppercased()
	}
	return member(s.databases, name.Database) &&
		member(s.schemas, name.Schema) &&
		member(s.tables, name.Table)
}

func member(set map[string]struct{}, val string) bool {
	if len(set) == 0 || val == "" {
		return true
	}
	_, ok := set[val]
	return ok
}

func toSet(vals []string, uppercase bool) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if uppercase {
			v = strings.ToUpper(v)
		}
		set[v] = struct{}{}
	}
	return set
}
