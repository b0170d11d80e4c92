package domain

import "strings"

// formatKeywords are uppercased by the formatter. Anything else keeps the
// caller's casing.
var formatKeywords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "AND": {}, "OR": {}, "NOT": {},
	"AS": {}, "ON": {}, "JOIN": {}, "LEFT": {}, "RIGHT": {}, "INNER": {},
	"OUTER": {}, "FULL": {}, "CROSS": {}, "NATURAL": {}, "USING": {},
	"GROUP": {}, "BY": {}, "ORDER": {}, "HAVING": {}, "LIMIT": {},
	"OFFSET": {}, "DISTINCT": {}, "ALL": {}, "UNION": {}, "INTERSECT": {},
	"EXCEPT": {}, "CASE": {}, "WHEN": {}, "THEN": {}, "ELSE": {}, "END": {},
	"NULL": {}, "IS": {}, "IN": {}, "LIKE": {}, "ILIKE": {}, "BETWEEN": {},
	"EXISTS": {}, "ASC": {}, "DESC": {}, "WITH": {}, "OVER": {},
	"PARTITION": {}, "QUALIFY": {}, "CAST": {}, "TOP": {}, "SAMPLE": {},
	"EXPLAIN": {}, "SHOW": {}, "DESCRIBE": {},
}

// clauseStarters begin a new line at parenthesis depth zero.
var clauseStarters = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "GROUP": {}, "ORDER": {},
	"HAVING": {}, "LIMIT": {}, "OFFSET": {}, "QUALIFY": {}, "UNION": {},
	"INTERSECT": {}, "EXCEPT": {}, "JOIN": {}, "LEFT": {}, "RIGHT": {},
	"INNER": {}, "FULL": {}, "CROSS": {}, "NATURAL": {},
}

// joinModifiers precede JOIN/OUTER on the same line.
var joinModifiers = map[string]struct{}{
	"LEFT": {}, "RIGHT": {}, "INNER": {}, "FULL": {}, "CROSS": {},
	"NATURAL": {}, "OUTER": {},
}

// Format cosmetically reformats an accepted statement for logs and
// diagnostics: known keywords are uppercased, whitespace is normalized, and
// top-level clauses each start a new line. It never changes statement
// semantics, and it is idempotent: the output is a fixed point. Errors are
// for the caller to log; formatting failure must never reject a request.
func Format(sql string) (string, error) {
	tokens, err := Lex(sql)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	depth := 0
	prevWord := ""
	var prev *Token

	for i := range tokens {
		tok := tokens[i]
		if tok.Kind == TokenComment {
			continue
		}

		text := tok.Text
		upper := ""
		if tok.Kind == TokenWord {
			upper = strings.ToUpper(text)
			if _, kw := formatKeywords[upper]; kw {
				text = upper
			}
		}

		if prev != nil {
			b.WriteString(separator(*prev, tok, upper, depth, prevWord))
		}
		b.WriteString(text)

		if tok.Kind == TokenSymbol {
			switch tok.Text {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			}
		}
		if tok.Kind == TokenWord {
			prevWord = upper
		}
		prev = &tokens[i]
	}
	return b.String(), nil
}

// separator decides what goes between two emitted tokens.
func separator(prev, cur Token, curUpper string, depth int, prevWord string) string {
	if cur.Kind == TokenWord && depth == 0 {
		if _, starts := clauseStarters[curUpper]; starts && !sameClauseWord(curUpper, prevWord) {
			return "\n"
		}
	}

	if cur.Kind == TokenSymbol {
		switch cur.Text {
		case ",", ")", ".", ";", "::":
			return ""
		case "(":
			// Function calls hug their paren; clause parens get a space.
			if prev.Kind == TokenWord {
				if _, kw := formatKeywords[strings.ToUpper(prev.Text)]; !kw {
					return ""
				}
			}
		}
	}
	if prev.Kind == TokenSymbol {
		switch prev.Text {
		case "(", ".", "::":
			return ""
		}
	}
	return " "
}

// sameClauseWord keeps JOIN and OUTER on the line their modifier started
// (LEFT OUTER JOIN stays together).
func sameClauseWord(cur, prevWord string) bool {
	if cur == "JOIN" || cur == "OUTER" {
		_, mod := joinModifiers[prevWord]
		return mod
	}
	return false
}
