package auth

import (
	"context"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseIdentity is what a verified Firebase ID token tells us.
type FirebaseIdentity struct {
	UID         string
	PhoneNumber string
}

type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*FirebaseIdentity, error)
}

type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*FirebaseIdentity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	id := &FirebaseIdentity{UID: token.UID}
	if phone, ok := token.Claims["phone_number"].(string); ok {
		id.PhoneNumber = phone
	}
	return id, nil
}
