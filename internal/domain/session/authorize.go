package session

// Decision is the outcome of an ownership check. Handlers map
// DecisionUnauthenticated to 401 and DecisionForbidden to 403; the two are
// never conflated.
type Decision int

const (
	DecisionAuthorized Decision = iota
	DecisionUnauthenticated
	DecisionForbidden
)

// Authorize is the single ownership check used by every mutating handler:
// the caller must hold a session and that session must belong to the
// resource owner.
func Authorize(sess *Session, resourceOwnerID string) Decision {
	if sess == nil {
		return DecisionUnauthenticated
	}
	if sess.UserID != resourceOwnerID {
		return DecisionForbidden
	}
	return DecisionAuthorized
}
