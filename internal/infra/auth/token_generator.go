package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"warden/internal/domain/service"

	"github.com/pkg/errors"
)

// tokenEntropyBytes is the raw randomness per session token. 32 bytes
// keeps tokens comfortably above the 128-bit unguessability floor.
const tokenEntropyBytes = 32

// opaqueTokenService is a concrete implementation of the TokenService
// interface. Tokens carry no structure and cannot be derived from account
// data; the store only ever sees their SHA-256 digest.
type opaqueTokenService struct{}

// NewTokenService is the constructor for opaqueTokenService.
func NewTokenService() service.TokenService {
	return &opaqueTokenService{}
}

// NewToken mints a fresh 256-bit random token, base64url-encoded without
// padding so it travels safely in cookies and headers.
func (s *opaqueTokenService) NewToken() (string, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read session token entropy")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex-encoded SHA-256 digest under which the token
// is stored and looked up.
func (s *opaqueTokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
