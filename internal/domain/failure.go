package domain

// ErrorKind is the closed set of UI-actionable failure kinds.
type ErrorKind string

const (
	ErrorKindRateLimit       ErrorKind = "rate_limit"
	ErrorKindAuthRequired    ErrorKind = "auth_required"
	ErrorKindPremiumRequired ErrorKind = "premium_required"
	ErrorKindGeneric         ErrorKind = "generic"
)

// OfferSignIn reports whether the UI should show a sign-in affordance for the kind.
func (k ErrorKind) OfferSignIn() bool {
	return k == ErrorKindRateLimit || k == ErrorKindAuthRequired
}

// Failure is a classified error ready for display.
type Failure struct {
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	OfferSignIn bool      `json:"offerSignIn"`
}

// NewFailure builds a Failure whose sign-in flag follows the kind.
func NewFailure(kind ErrorKind, message string) Failure {
	return Failure{Kind: kind, Message: message, OfferSignIn: kind.OfferSignIn()}
}

func (f Failure) Error() string {
	return f.Message
}
