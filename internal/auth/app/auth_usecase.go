package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"viewtube/internal/auth/domain"
	"viewtube/internal/auth/repository"
	"viewtube/pkg/encrypt"
	errprocess "viewtube/pkg/err"
	"viewtube/pkg/token"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// storeTimeout 單次資料庫操作的上限
const storeTimeout = 5 * time.Second

// AuthUseCase definition auth use case
type AuthUseCase interface {
	Register(ctx context.Context, req domain.RegisterReq) (*domain.AuthResult, error)
	Login(ctx context.Context, req domain.LoginReq) (*domain.AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type authUseCase struct {
	userRepo repository.UserRepository
	tokens   *token.Service
}

// NewAuthUseCase create auth use case
func NewAuthUseCase(userRepo repository.UserRepository, tokens *token.Service) AuthUseCase {
	return &authUseCase{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register 建立帳號並直接簽發 token pair，註冊即登入
func (a *authUseCase) Register(ctx context.Context, req domain.RegisterReq) (*domain.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, errprocess.Validation("username, email and password are required")
	}

	if _, err := a.userRepo.FindByUser(ctx, &domain.UserQuery{Email: &email}); err == nil {
		return nil, errprocess.Conflict("user already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errprocess.Dependency("failed to check existing user", err)
	}

	if err := encrypt.ValidatePasswordStrength(req.Password); err != nil {
		return nil, errprocess.Validation(err.Error())
	}
	hashed, err := encrypt.HashPassword(req.Password)
	if err != nil {
		return nil, errprocess.Dependency("failed to hash password", err)
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		Password: hashed,
	}
	id, err := a.userRepo.CreateUser(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errprocess.Conflict("user already exists")
		}
		return nil, errprocess.Dependency("failed to create user", err)
	}
	user.ID = id

	return a.issueTokens(user)
}

// Login 驗證密碼並簽發 token pair
// 帳號不存在與密碼錯誤回不同的錯，前端可分別提示
func (a *authUseCase) Login(ctx context.Context, req domain.LoginReq) (*domain.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, errprocess.Validation("email and password are required")
	}

	user, err := a.userRepo.FindByUser(ctx, &domain.UserQuery{Email: &email})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("user not found")
		}
		return nil, errprocess.Dependency("failed to query user", err)
	}

	if err := user.IsPasswordMatch(req.Password); err != nil {
		return nil, errprocess.Auth("incorrect password")
	}

	return a.issueTokens(user)
}

// Me load the authenticated user's profile
func (a *authUseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errprocess.Validation("invalid user id")
	}

	user, err := a.userRepo.FindByUser(ctx, &domain.UserQuery{ID: &id})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("user not found")
		}
		return nil, errprocess.Dependency("failed to query user", err)
	}
	return user, nil
}

func (a *authUseCase) issueTokens(user *domain.User) (*domain.AuthResult, error) {
	access, err := a.tokens.IssueAccessToken(user.ID.Hex())
	if err != nil {
		return nil, errprocess.Dependency("failed to issue access token", err)
	}
	refresh, err := a.tokens.IssueRefreshToken(user.ID.Hex())
	if err != nil {
		return nil, errprocess.Dependency("failed to issue refresh token", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
