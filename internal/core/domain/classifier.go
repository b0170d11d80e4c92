package domain

import "strings"

// forbiddenKeywords are the mutating/DDL/DCL/TCL keywords that disqualify a
// statement from the read-only path. Matched against whole word tokens only,
// so INSERTED_AT never trips on INSERT, and comments/literals are separate
// token kinds that are never scanned.
var forbiddenKeywords = map[string]struct{}{
	"INSERT":   {},
	"UPDATE":   {},
	"DELETE":   {},
	"DROP":     {},
	"TRUNCATE": {},
	"ALTER":    {},
	"CREATE":   {},
	"GRANT":    {},
	"REVOKE":   {},
	"COMMIT":   {},
	"ROLLBACK": {},
}

// Classify scans the token stream and rejects statements that contain a
// forbidden keyword or form a multi-statement batch. A single trailing
// semicolon (followed only by comments) is tolerated.
func Classify(tokens []Token) error {
	terminated := false
	for _, tok := range tokens {
		if tok.Kind == TokenComment {
			continue
		}
		if tok.Kind == TokenSymbol && tok.Text == ";" {
			terminated = true
			continue
		}
		if tok.Kind == TokenWord {
			upper := strings.ToUpper(tok.Text)
			if _, bad := forbiddenKeywords[upper]; bad {
				return &Rejection{Kind: RejectForbiddenKeyword, Detail: upper}
			}
		}
		if terminated {
			return &Rejection{Kind: RejectMalformedStatement, Detail: "multiple statements in one request"}
		}
	}
	return nil
}

// Sanitize rebuilds the statement from its tokens with comments and the
// trailing semicolon removed. Comments are stripped, not merely ignored:
// the statement handed onward contains none, which eliminates comment-based
// obfuscation against downstream executors. Original spacing collapses to a
// single space wherever tokens were separated.
func Sanitize(tokens []Token) string {
	var b strings.Builder
	prevEnd := -1
	for _, tok := range tokens {
		if tok.Kind == TokenComment {
			continue
		}
		if tok.Kind == TokenSymbol && tok.Text == ";" {
			// Only a trailing semicolon survives Classify.
			continue
		}
		if prevEnd >= 0 && tok.Start > prevEnd {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		prevEnd = tok.End
	}
	return b.String()
}
