package service

// TokenService defines the interface for minting and digesting opaque
// session tokens. Tokens are bearer credentials: high-entropy random
// strings with no structure and no derivation from account data.
type TokenService interface {
	// NewToken returns a fresh unguessable token carrying at least 256
	// bits of randomness. Values are never reused.
	NewToken() (string, error)

	// HashToken returns the digest under which a token is stored and
	// looked up, so the raw token never touches the database.
	HashToken(token string) string
}
