package usecase

import (
	"context"
	"strings"
	"sync"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
)

// SessionObserver is told about sign in (session set) and sign out
// (session nil) for uid.
type SessionObserver func(uid string, session *entity.Session)

type AuthUseCase struct {
	firebaseAuth FirebaseAuthClient

	mu        sync.RWMutex
	observers map[int]SessionObserver
	nextID    int
}

func NewAuthUseCase(firebaseAuth FirebaseAuthClient) *AuthUseCase {
	return &AuthUseCase{
		firebaseAuth: firebaseAuth,
		observers:    make(map[int]SessionObserver),
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.BadRequest("Email and password are required", nil)
	}

	session, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		logger.Warn("Login failed for %s: %v", email, err)
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	uid, err := uc.firebaseAuth.VerifyToken(ctx, session.IDToken)
	if err != nil {
		return nil, errors.Internal("Failed to verify token", err)
	}
	session.UID = uid

	uc.notify(uid, session)
	return session, nil
}

// Logout revokes every refresh token of uid.
func (uc *AuthUseCase) Logout(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	if err := uc.firebaseAuth.RevokeSessions(ctx, uid); err != nil {
		return errors.Internal("Failed to sign out", err)
	}

	uc.notify(uid, nil)
	return nil
}

func (uc *AuthUseCase) VerifyToken(ctx context.Context, token string) (string, error) {
	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}
	return uid, nil
}

func (uc *AuthUseCase) CheckConnection(ctx context.Context) error {
	return uc.firebaseAuth.TestConnection(ctx)
}

// OnSessionChange registers fn until the returned Unsubscribe is called.
func (uc *AuthUseCase) OnSessionChange(fn SessionObserver) repository.Unsubscribe {
	uc.mu.Lock()
	id := uc.nextID
	uc.nextID++
	uc.observers[id] = fn
	uc.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			uc.mu.Lock()
			delete(uc.observers, id)
			uc.mu.Unlock()
		})
	}
}

func (uc *AuthUseCase) notify(uid string, session *entity.Session) {
	uc.mu.RLock()
	observers := make([]SessionObserver, 0, len(uc.observers))
	for _, fn := range uc.observers {
		observers = append(observers, fn)
	}
	uc.mu.RUnlock()

	for _, fn := range observers {
		fn(uid, session)
	}
}
