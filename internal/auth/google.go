package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

var ErrGoogleToken = errors.New("invalid google id token")

// GoogleIdentity is the profile carried by a verified Google ID token
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
}

// GoogleVerifier checks Google ID tokens against the configured client id
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	if err := ctx.Err(); err != nil {
		return GoogleIdentity{}, err
	}
	if g.clientID == "" {
		return GoogleIdentity{}, fmt.Errorf("%w: google sign-in is not configured", ErrGoogleToken)
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return GoogleIdentity{}, fmt.Errorf("%w: %v", ErrGoogleToken, err)
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("%w: %v", ErrGoogleToken, err)
	}

	identity := GoogleIdentity{
		Subject:       claimSet.Sub,
		Email:         strings.ToLower(strings.TrimSpace(claimSet.Email)),
		EmailVerified: claimSet.EmailVerified,
		FirstName:     claimSet.GivenName,
		LastName:      claimSet.FamilyName,
	}
	if identity.FirstName == "" && identity.LastName == "" {
		identity.FirstName, identity.LastName = splitName(claimSet.Name)
	}
	if identity.Email == "" {
		return GoogleIdentity{}, fmt.Errorf("%w: email claim missing", ErrGoogleToken)
	}
	return identity, nil
}

func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}
