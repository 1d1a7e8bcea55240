package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novafit/gymdesk-backend/internal/data/repos/roster"
	userrepo "github.com/novafit/gymdesk-backend/internal/data/repos/user"
	types "github.com/novafit/gymdesk-backend/internal/domain"
	apperrors "github.com/novafit/gymdesk-backend/internal/pkg/errors"
	"github.com/novafit/gymdesk-backend/internal/pkg/logger"
	"github.com/novafit/gymdesk-backend/internal/requestdata"
	"github.com/novafit/gymdesk-backend/internal/utils"
)

// JWTClaims carries the principal inside access tokens. TrainerID is set
// only for TRAINER users so downstream code can scope queries without a
// lookup.
type JWTClaims struct {
	UserID    uuid.UUID  `json:"user_id"`
	Role      string     `json:"role"`
	TrainerID *uuid.UUID `json:"trainer_id,omitempty"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, string, error)
	Refresh(ctx context.Context) (string, string, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      userrepo.UserRepo
	userTokenRepo userrepo.UserTokenRepo
	trainerRepo   roster.TrainerRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo userrepo.UserRepo,
	userTokenRepo userrepo.UserTokenRepo,
	trainerRepo roster.TrainerRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		trainerRepo:   trainerRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

// Register creates a TRAINER user and its trainer profile row in one
// transaction.
func (as *authService) Register(ctx context.Context, input RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", apperrors.ErrInvalidArgument)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name required", apperrors.ErrInvalidArgument)
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      types.RoleTrainer,
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		trainer := &types.Trainer{
			UserID:    user.ID,
			Specialty: strings.TrimSpace(input.Specialty),
			Bio:       strings.TrimSpace(input.Bio),
		}
		if _, err := as.trainerRepo.Create(ctx, tx, []*types.Trainer{trainer}); err != nil {
			return fmt.Errorf("create trainer profile: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return "", "", apperrors.ErrUnauthorized
	}
	user := users[0]

	if err := utils.CheckPassword(user.Password, password); err != nil {
		return "", "", apperrors.ErrUnauthorized
	}

	var accessToken, refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One active token row per user: stale rows are dropped on login.
		found, err := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
		if err != nil {
			return fmt.Errorf("check user tokens: %w", err)
		}
		if len(found) > 0 {
			ids := make([]uuid.UUID, 0, len(found))
			for _, t := range found {
				ids = append(ids, t.ID)
			}
			if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, ids); err != nil {
				return fmt.Errorf("delete stale tokens: %w", err)
			}
		}

		tok, err := as.generateAccessToken(ctx, tx, user)
		if err != nil {
			return fmt.Errorf("generate access token: %w", err)
		}
		accessToken = tok
		refreshToken = uuid.New().String()

		userToken := &types.UserToken{
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
			return fmt.Errorf("create user token: %w", err)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return "", "", apperrors.ErrUnauthorized
	}

	tokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, nil, []string{rd.RefreshToken})
	if err != nil {
		return "", "", fmt.Errorf("lookup refresh token: %w", err)
	}
	if len(tokens) == 0 || tokens[0].ExpiresAt.Before(time.Now()) {
		return "", "", apperrors.ErrUnauthorized
	}
	stored := tokens[0]

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{stored.UserID})
	if err != nil {
		return "", "", fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return "", "", apperrors.ErrUnauthorized
	}
	user := users[0]

	var accessToken, refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{stored.ID}); err != nil {
			return fmt.Errorf("rotate token: %w", err)
		}
		tok, err := as.generateAccessToken(ctx, tx, user)
		if err != nil {
			return fmt.Errorf("generate access token: %w", err)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := &types.UserToken{
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
			return fmt.Errorf("create user token: %w", err)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apperrors.ErrUnauthorized
	}

	tokens, err := as.userTokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return fmt.Errorf("lookup tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.ID)
	}
	return as.userTokenRepo.FullDeleteByIDs(ctx, nil, ids)
}

// SetContextFromToken validates the bearer token and attaches the principal
// to the context. The token must also match a live user_token row, so logout
// revokes immediately.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apperrors.ErrUnauthorized
	}

	stored, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("lookup access token: %w", err)
	}
	if len(stored) == 0 {
		return ctx, apperrors.ErrUnauthorized
	}

	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: stored[0].RefreshToken,
		UserID:       claims.UserID,
		Role:         claims.Role,
		TrainerID:    claims.TrainerID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateAccessToken(ctx context.Context, tx *gorm.DB, user *types.User) (string, error) {
	var trainerID *uuid.UUID
	if user.Role == types.RoleTrainer {
		trainers, err := as.trainerRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
		if err != nil {
			return "", fmt.Errorf("lookup trainer profile: %w", err)
		}
		if len(trainers) > 0 {
			trainerID = &trainers[0].ID
		}
	}

	now := time.Now()
	claims := JWTClaims{
		UserID:    user.ID,
		Role:      user.Role,
		TrainerID: trainerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
