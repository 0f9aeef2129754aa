package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// TokenVerifier checks Firebase ID tokens and yields the user's uid.
type TokenVerifier struct {
	client *auth.Client
}

func NewTokenVerifier(client *auth.Client) *TokenVerifier {
	return &TokenVerifier{client: client}
}

func (v *TokenVerifier) VerifyUserToken(ctx context.Context, token string) (string, error) {
	verified, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("error verifying token: %w", err)
	}
	return verified.UID, nil
}
