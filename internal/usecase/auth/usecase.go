package auth

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/credentials"
	"github.com/rsmnext/assistant-backend/internal/session"
)

// AuthUsecase validates credentials against the YAML credential store and
// manages session lifecycles.
type AuthUsecase struct {
	credentials *credentials.Store
	sessions    *session.Store
	logger      *zap.Logger
}

func NewUsecase(creds *credentials.Store, sessions *session.Store, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		credentials: creds,
		sessions:    sessions,
		logger:      logger,
	}
}

// Login verifies the credentials and opens a session. The failure reason
// is never distinguished in the error; only the logs say whether the user
// was unknown or the password wrong.
func (uc *AuthUsecase) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, entity.ErrInvalidCredential
	}

	user, ok := uc.credentials.Verify(username, req.Password)
	if !ok {
		ctxzap.Warn(ctx, "login rejected", zap.String("username", username))
		return nil, entity.ErrInvalidCredential
	}

	sess := uc.sessions.Create(user)

	ctxzap.Info(ctx, "login accepted",
		zap.String("username", user.Username),
		zap.String("session_id", sess.ID),
	)

	return &entity.LoginResponse{
		Token:    sess.ID,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// Logout drops the session. Unknown tokens are ignored.
func (uc *AuthUsecase) Logout(ctx context.Context, token string) {
	uc.sessions.Delete(token)
	ctxzap.Info(ctx, "session closed")
}

// Resolve maps a bearer token to its live session.
func (uc *AuthUsecase) Resolve(token string) (*session.Session, error) {
	if token == "" {
		return nil, entity.ErrSessionNotFound
	}
	return uc.sessions.Get(token)
}
