package domain

import (
	"errors"
	"fmt"
)

// RejectionKind enumerates why the gate refused a statement.
type RejectionKind string

const (
	RejectForbiddenKeyword   RejectionKind = "forbidden_keyword"
	RejectMalformedStatement RejectionKind = "malformed_statement"
	RejectInvalidIdentifier  RejectionKind = "invalid_identifier"
	RejectObjectNotAllowed   RejectionKind = "object_not_allowed"
)

// Rejection is a caller-facing refusal to admit a statement. It is always
// recoverable: the caller may correct the query and resubmit. Detail names
// the offending keyword, identifier, or object.
type Rejection struct {
	Kind   RejectionKind
	Detail string
}

func (r *Rejection) Error() string {
	switch r.Kind {
	case RejectForbiddenKeyword:
		return fmt.Sprintf("statement contains forbidden keyword %s", r.Detail)
	case RejectMalformedStatement:
		return fmt.Sprintf("malformed statement: %s", r.Detail)
	case RejectInvalidIdentifier:
		return fmt.Sprintf("invalid identifier %q", r.Detail)
	case RejectObjectNotAllowed:
		return fmt.Sprintf("object %s is outside the configured access scope", r.Detail)
	default:
		return string(r.Kind)
	}
}

// AsRejection unwraps err into a *Rejection if one is in the chain.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
