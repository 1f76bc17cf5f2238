package usecase

import (
	"context"

	"medialib/internal/domain/entity"
)

type FirebaseAuthClient interface {
	SignInWithEmailPassword(ctx context.Context, email, password string) (*entity.Session, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	RevokeSessions(ctx context.Context, uid string) error
	TestConnection(ctx context.Context) error
}
