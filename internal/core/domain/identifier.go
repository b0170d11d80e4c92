package domain

import "strings"

// QualifiedName is a parsed object reference of up to three dot-separated
// segments. Table is always set; Schema and Database are optional.
type QualifiedName struct {
	Database string
	Schema   string
	Table    string
}

func (q QualifiedName) String() string {
	parts := make([]string, 0, 3)
	if q.Database != "" {
		parts = append(parts, q.Database)
	}
	if q.Schema != "" {
		parts = append(parts, q.Schema)
	}
	parts = append(parts, q.Table)
	return strings.Join(parts, ".")
}

// Uppercased returns a copy with every segment uppercased, matching how
// Snowflake stores unquoted identifiers.
func (q QualifiedName) Uppercased() QualifiedName {
	return QualifiedName{
		Database: strings.ToUpper(q.Database),
		Schema:   strings.ToUpper(q.Schema),
		Table:    strings.ToUpper(q.Table),
	}
}

// ParseQualifiedName validates a dotted object reference and splits it into
// segments. Every segment must consist solely of ASCII letters, digits, and
// underscores; the only other permitted character is the dot separator.
//
// Object names cannot be bind variables, so this strict character allow-list
// is the sole injection defense for identifiers that end up interpolated
// into statements. It must stay an allow-list, never a deny-list.
func ParseQualifiedName(raw string) (QualifiedName, error) {
	if raw == "" {
		return QualifiedName{}, &Rejection{Kind: RejectInvalidIdentifier, Detail: raw}
	}

	segments := strings.Split(raw, ".")
	if len(segments) > 3 {
		return QualifiedName{}, &Rejection{Kind: RejectInvalidIdentifier, Detail: raw}
	}
	for _, seg := range segments {
		if !validSegment(seg) {
			return QualifiedName{}, &Rejection{Kind: RejectInvalidIdentifier, Detail: raw}
		}
	}

	switch len(segments) {
	case 1:
		return QualifiedName{Table: segments[0]}, nil
	case 2:
		return QualifiedName{Schema: segments[0], Table: segments[1]}, nil
	default:
		return QualifiedName{Database: segments[0], Schema: segments[1], Table: segments[2]}, nil
	}
}

// validSegment reports whether seg is non-empty and contains only
// [A-Za-z0-9_]. An empty segment also covers leading, trailing, and
// consecutive dots, which Split turns into "".
func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
