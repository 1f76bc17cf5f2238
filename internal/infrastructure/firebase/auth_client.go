package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"

	"medialib/internal/domain/entity"
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// The Admin SDK reads the same variable, so tokens minted by the emulator
// also verify against it.
const (
	authEmulatorHostEnv = "FIREBASE_AUTH_EMULATOR_HOST"
	emulatorAPIKey      = "fake-api-key"
)

// connectionCheckEmail is looked up by TestConnection. A user-not-found answer still
// proves the Admin SDK can reach Firebase.
const connectionCheckEmail = "connection-check@medialib.invalid"

type FirebaseAuthClient struct {
	client     *auth.Client
	apiKey     string
	signInURL  string
	httpClient *http.Client
}

func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	signInURL := signInEndpoint
	if host := os.Getenv(authEmulatorHostEnv); host != "" {
		signInURL = "http://" + host + "/" + strings.TrimPrefix(signInEndpoint, "https://")
		if apiKey == "" {
			apiKey = emulatorAPIKey
		}
	}

	return &FirebaseAuthClient{
		client:     client,
		apiKey:     apiKey,
		signInURL:  signInURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type signInError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithEmailPassword exchanges credentials for an ID token through the
// Identity Toolkit REST API. The Admin SDK has no password sign-in.
func (f *FirebaseAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (*entity.Session, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("firebase api key is not configured")
	}

	payload, err := json.Marshal(signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.signInURL+"?key="+f.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign in request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr signInError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("sign in rejected: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("sign in rejected with status %d", resp.StatusCode)
	}

	var result signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode sign in response: %w", err)
	}

	expiresIn, _ := strconv.ParseInt(result.ExpiresIn, 10, 64)

	return &entity.Session{
		UID:          result.LocalID,
		Email:        result.Email,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

func (f *FirebaseAuthClient) RevokeSessions(ctx context.Context, uid string) error {
	return f.client.RevokeRefreshTokens(ctx, uid)
}

func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	_, err := f.client.GetUserByEmail(ctx, connectionCheckEmail)
	if err != nil && !auth.IsUserNotFound(err) {
		return err
	}
	return nil
}
