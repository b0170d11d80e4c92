package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrUnterminatedQuoted  = errors.New("unterminated quoted identifier")
)

// TokenKind classifies a lexical span of a SQL statement.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenNumber
	TokenString      // '...' with '' escapes
	TokenQuotedIdent // "..." with "" escapes
	TokenComment     // -- ... , // ... , /* ... */
	TokenSymbol      // punctuation or operator
)

// compoundOps are multi-character operators lexed as one symbol token, so
// downstream rendering can never split them apart.
var compoundOps = map[string]struct{}{
	">=": {}, "<=": {}, "<>": {}, "!=": {}, "::": {}, "||": {}, "=>": {},
}

// Token is one lexical span. Text is the raw slice of the input, quotes and
// comment markers included. Start/End are byte offsets into the input, so
// adjacent tokens (End == next.Start) had no whitespace between them.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// Lex splits sql into comment, string-literal, quoted-identifier, word,
// number, and symbol spans using Snowflake's lexical rules: line comments
// start with -- or //, block comments are /* */ (non-nesting), string
// literals escape a quote by doubling it, and so do quoted identifiers.
// Whitespace is dropped; the offsets preserve adjacency information.
//
// Keyword scanning and identifier extraction both work on this token
// stream, so a keyword inside a comment or a literal can never be confused
// with live SQL, and vice versa.
func Lex(sql string) ([]Token, error) {
	var toks []Token
	n := len(sql)
	i := 0
	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '-' && i+1 < n && sql[i+1] == '-',
			c == '/' && i+1 < n && sql[i+1] == '/':
			end := n
			if j := strings.IndexByte(sql[i:], '\n'); j >= 0 {
				end = i + j
			}
			toks = append(toks, Token{TokenComment, sql[i:end], i, end})
			i = end

		case c == '/' && i+1 < n && sql[i+1] == '*':
			j := strings.Index(sql[i+2:], "*/")
			if j < 0 {
				return nil, ErrUnterminatedComment
			}
			end := i + 2 + j + 2
			toks = append(toks, Token{TokenComment, sql[i:end], i, end})
			i = end

		case c == '\'':
			end, ok := scanQuoted(sql, i, '\'')
			if !ok {
				return nil, ErrUnterminatedString
			}
			toks = append(toks, Token{TokenString, sql[i:end], i, end})
			i = end

		case c == '"':
			end, ok := scanQuoted(sql, i, '"')
			if !ok {
				return nil, ErrUnterminatedQuoted
			}
			toks = append(toks, Token{TokenQuotedIdent, sql[i:end], i, end})
			i = end

		case isWordStart(c):
			j := i + 1
			for j < n && isWordByte(sql[j]) {
				j++
			}
			toks = append(toks, Token{TokenWord, sql[i:j], i, j})
			i = j

		case c >= '0' && c <= '9':
			j := scanNumber(sql, i)
			toks = append(toks, Token{TokenNumber, sql[i:j], i, j})
			i = j

		default:
			if i+1 < n {
				if _, ok := compoundOps[sql[i:i+2]]; ok {
					toks = append(toks, Token{TokenSymbol, sql[i : i+2], i, i + 2})
					i += 2
					continue
				}
			}
			toks = append(toks, Token{TokenSymbol, sql[i : i+1], i, i + 1})
			i++
		}
	}
	return toks, nil
}

// scanQuoted scans a span opened by quote q at start, honoring doubled-quote
// escapes. Returns the offset one past the closing quote.
func scanQuoted(s string, start int, q byte) (end int, ok bool) {
	i := start + 1
	for i < len(s) {
		if s[i] != q {
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			i += 2
			continue
		}
		return i + 1, true
	}
	return 0, false
}

// scanNumber scans a numeric literal starting at a digit: integer part,
// optional fraction, optional exponent. The dot is consumed only when a
// digit follows, so db.2021.t keeps its dots as separate tokens, and the
// e is consumed only when a complete exponent follows, so 1e-5 is one
// token while a bare trailing e is left for the word scanner.
func scanNumber(s string, start int) int {
	n := len(s)
	j := start + 1
	for j < n && isDigit(s[j]) {
		j++
	}
	if j+1 < n && s[j] == '.' && isDigit(s[j+1]) {
		j += 2
		for j < n && isDigit(s[j]) {
			j++
		}
	}
	if j < n && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < n && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < n && isDigit(s[k]) {
			for k < n && isDigit(s[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$'
}

func isWordByte(c byte) bool {
	return isWordStart(c) || c >= '0' && c <= '9'
}
