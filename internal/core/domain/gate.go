package domain

import "log/slog"

// Gate is the admission pipeline deciding whether a statement may reach the
// warehouse: lex, classify, sanitize, check every referenced object against
// the access scope, then cosmetically format. It holds no per-request
// state, so one Gate serves all requests concurrently.
type Gate struct {
	scope  AccessScope
	logger *slog.Logger
}

func NewGate(scope AccessScope, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{scope: scope, logger: logger}
}

// Decision is the accepted outcome of an evaluation: the sanitized
// statement safe to hand to the executor, plus the object references it was
// checked against.
type Decision struct {
	Statement string
	Objects   []QualifiedName
}

// Evaluate runs the full admission pipeline over a raw SQL string. It
// returns either a Decision or a *Rejection; it never panics on caller
// input, and a rejected caller may resubmit a corrected query.
func (g *Gate) Evaluate(raw string) (*Decision, error) {
	tokens, err := Lex(raw)
	if err != nil {
		return nil, &Rejection{Kind: RejectMalformedStatement, Detail: err.Error()}
	}

	if err := Classify(tokens); err != nil {
		return nil, err
	}

	stmt := Sanitize(tokens)
	if stmt == "" {
		return nil, &Rejection{Kind: RejectMalformedStatement, Detail: "empty statement"}
	}

	refs := ExtractObjectRefs(tokens)
	objects := make([]QualifiedName, 0, len(refs))
	for _, ref := range refs {
		name, err := ParseQualifiedName(ref)
		if err != nil {
			return nil, err
		}
		if !g.scope.Allows(name) {
			return nil, &Rejection{Kind: RejectObjectNotAllowed, Detail: name.String()}
		}
		objects = append(objects, name)
	}

	formatted, err := Format(stmt)
	if err != nil {
		// Cosmetic only: fall back to the sanitized statement.
		g.logger.Debug("statement formatting failed",
			slog.String("error", err.Error()),
		)
		formatted = stmt
	}

	return &Decision{Statement: formatted, Objects: objects}, nil
}

// Scope returns the gate's access scope, the same value used to filter
// catalog listings.
func (g *Gate) Scope() AccessScope {
	return g.scope
}
