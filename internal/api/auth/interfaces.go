package auth

import (
	"context"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
)

type AuthUsecase interface {
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
	Logout(ctx context.Context, token string)
	Resolve(token string) (*session.Session, error)
}
