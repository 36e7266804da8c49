package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/data/repos"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	domainagg "github.com/yungbote/coursemarket-backend/internal/domain/aggregates"
	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
	FullName string `validate:"max=200"`
	Role     string `validate:"omitempty,oneof=LEARNER INSTRUCTOR COMPANY_ADMIN"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (*TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  []byte(jwtSecretKey),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	const op = "Auth.Register"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	role := types.RoleLearner
	if in.Role != "" {
		role = types.UserRole(in.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &types.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         role,
		IsActive:     true,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, u.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return domainagg.NewError(domainagg.CodeConflict, op, "email already registered", nil)
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{u}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domainagg.NewError(domainagg.CodeConflict, op, "email already registered", err)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domainagg.Invalid("Auth.Login", "email and password are required")
	}
	u, err := as.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, unauthorized(ErrInvalidCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, unauthorized(ErrInvalidCredentials)
	}
	if !u.IsActive {
		return nil, domainagg.Forbidden("Auth.Login", "account disabled")
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := as.userTokenRepo.DeleteExpiredByUserID(dbc, u.ID, as.now()); err != nil {
			return fmt.Errorf("prune tokens: %w", err)
		}
		p, err := as.issueTokens(dbc, u)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// RefreshUser rotates a refresh token: the old row is removed and a new
// access/refresh pair is stored in the same transaction.
func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, unauthorized(ErrMissingToken)
	}
	existing, err := as.userTokenRepo.GetByRefreshToken(dbctx.New(ctx), refreshToken)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if existing == nil {
		return nil, unauthorized(ErrTokenRevoked)
	}
	if existing.Expired(as.now()) {
		if err := as.userTokenRepo.DeleteByIDs(dbctx.New(ctx), []uuid.UUID{existing.ID}); err != nil {
			as.log.Warn("Delete expired refresh token failed", "error", err)
		}
		return nil, unauthorized(errors.New("refresh token expired"))
	}

	var pair *TokenPair
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, err := as.userRepo.GetByID(dbc, existing.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil || !u.IsActive {
			return unauthorized(ErrTokenRevoked)
		}
		p, err := as.issueTokens(dbc, u)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("delete rotated token: %w", err)
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return unauthorized(ErrMissingToken)
	}
	dbc := dbctx.New(ctx)
	tok, err := as.userTokenRepo.GetByAccessToken(dbc, rd.TokenString)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if tok == nil {
		return nil
	}
	if err := as.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{tok.ID}); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (as *authService) issueTokens(dbc dbctx.Context, u *types.User) (*TokenPair, error) {
	now := as.now()
	access, err := as.generateAccessToken(u, now)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       u.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		as.log.Warn("Create user token failed", "error", err)
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: row.RefreshToken, ExpiresIn: as.accessTTL}, nil
}

func (as *authService) generateAccessToken(u *types.User, now time.Time) (string, error) {
	claims := JWTClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
}

// SetContextFromToken validates the JWT and its stored row, then attaches the
// caller to ctx. An empty token leaves ctx untouched.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, unauthorized(fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, unauthorized(errors.New("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, unauthorized(fmt.Errorf("invalid subject: %w", err))
	}
	tok, err := as.userTokenRepo.GetByAccessToken(dbctx.New(ctx), tokenString)
	if err != nil {
		as.log.Warn("Error fetching user token by access token", "error", err)
		return ctx, fmt.Errorf("load token: %w", err)
	}
	if tok == nil || tok.UserID != userID {
		return ctx, unauthorized(ErrTokenRevoked)
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
