package domain

import "strings"

// objectIntroducers are the clause keywords after which a table reference
// may appear.
var objectIntroducers = map[string]struct{}{
	"FROM": {},
	"JOIN": {},
	"INTO": {},
}

// nonObjectWords can directly follow an introducer without naming a table.
var nonObjectWords = map[string]struct{}{
	"LATERAL": {},
	"SELECT":  {},
	"VALUES":  {},
	"TABLE":   {},
	"UNNEST":  {},
}

// reservedAfterRef are words that terminate a FROM list; they can never be
// a table alias.
var reservedAfterRef = map[string]struct{}{
	"WHERE": {}, "GROUP": {}, "ORDER": {}, "HAVING": {}, "LIMIT": {},
	"OFFSET": {}, "QUALIFY": {}, "SAMPLE": {}, "JOIN": {}, "LEFT": {},
	"RIGHT": {}, "INNER": {}, "OUTER": {}, "FULL": {}, "CROSS": {},
	"NATURAL": {}, "ON": {}, "USING": {}, "UNION": {}, "INTERSECT": {},
	"EXCEPT": {}, "FROM": {}, "INTO": {}, "SELECT": {},
}

// ExtractObjectRefs scans the token stream for object references following
// FROM/JOIN/INTO clauses and returns the raw dotted names, deduplicated in
// order of appearance. This is a best-effort surface scan, not a parser:
// subqueries contribute nothing and aliases are skipped, but every chunk
// that sits where a table name belongs is captured whole. Token adjacency
// keeps a reference like my-table intact for the validator to refuse, and
// a dot joins name segments even when whitespace or comments surround it,
// so OTHERDB . PUBLIC . T1 is checked as the full three-part name.
func ExtractObjectRefs(tokens []Token) []string {
	toks := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != TokenComment {
			toks = append(toks, t)
		}
	}

	var refs []string
	seen := make(map[string]struct{})

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != TokenWord {
			continue
		}
		if _, ok := objectIntroducers[strings.ToUpper(t.Text)]; !ok {
			continue
		}

		// Walk the comma-separated reference list that follows.
		j := i + 1
		for j < len(toks) {
			first := toks[j]
			if first.Kind == TokenSymbol || first.Kind == TokenString || first.Kind == TokenNumber {
				break // subquery, punctuation, or nothing referenceable
			}
			if first.Kind == TokenWord {
				upper := strings.ToUpper(first.Text)
				if _, skip := nonObjectWords[upper]; skip {
					break
				}
				if _, stop := reservedAfterRef[upper]; stop {
					break
				}
			}

			ref, next := contiguousRun(toks, j)
			if _, dup := seen[ref]; !dup {
				seen[ref] = struct{}{}
				refs = append(refs, ref)
			}

			// Skip an optional alias (with or without AS), then continue
			// only if a comma introduces another reference.
			next = skipAlias(toks, next)
			if next < len(toks) && toks[next].Kind == TokenSymbol && toks[next].Text == "," {
				j = next + 1
				continue
			}
			j = next
			break
		}
		if j > i {
			i = j - 1
		}
	}
	return refs
}

// contiguousRun concatenates tokens starting at j into one reference chunk.
// Byte-adjacent tokens join unconditionally, and a dot symbol joins across
// gaps in both directions, so spaced or comment-split qualifiers cannot
// smuggle a name past the scope check as its first segment alone. Returns
// the joined text and the index of the first token past the run.
func contiguousRun(toks []Token, j int) (string, int) {
	var b strings.Builder
	b.WriteString(toks[j].Text)
	end := toks[j].End
	k := j + 1
	for k < len(toks) {
		t := toks[k]
		switch {
		case t.Start == end && !isRefDelimiter(t):
		case t.Kind == TokenSymbol && t.Text == ".":
		case strings.HasSuffix(b.String(), ".") && isSegmentToken(t):
		default:
			return b.String(), k
		}
		b.WriteString(t.Text)
		end = t.End
		k++
	}
	return b.String(), k
}

func isSegmentToken(t Token) bool {
	switch t.Kind {
	case TokenWord, TokenNumber, TokenQuotedIdent:
		return true
	}
	return false
}

func isRefDelimiter(t Token) bool {
	if t.Kind != TokenSymbol {
		return false
	}
	switch t.Text {
	case ",", "(", ")", ";":
		return true
	}
	return false
}

// skipAlias advances past `AS alias` or a bare alias word following a
// reference, stopping at reserved words.
func skipAlias(toks []Token, k int) int {
	if k < len(toks) && toks[k].Kind == TokenWord && strings.ToUpper(toks[k].Text) == "AS" {
		k++
	}
	if k < len(toks) && toks[k].Kind == TokenWord {
		if _, stop := reservedAfterRef[strings.ToUpper(toks[k].Text)]; !stop {
			k++
		}
	}
	return k
}
