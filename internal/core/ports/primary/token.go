package primary

import "context"

// TokenVerifier validates bearer tokens issued by the platform
type TokenVerifier interface {
	// VerifyToken returns the subject (user ID) of a valid token
	VerifyToken(ctx context.Context, token string) (string, error)
}
