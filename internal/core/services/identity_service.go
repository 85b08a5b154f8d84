package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// ledgerClaims is the JWT payload carried by every authenticated request.
type ledgerClaims struct {
	TenantID *string `json:"tid,omitempty"`
	BranchID *string `json:"bid,omitempty"`
	Role     string  `json:"role"`
	VIPTier  *string `json:"vip,omitempty"`
	jwt.RegisteredClaims
}

type identityService struct {
	BaseService
	userRepo   portsrepo.UserRepository
	tenantRepo portsrepo.TenantRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
}

// NewIdentityService creates the identity service backed by the user and
// tenant repositories.
func NewIdentityService(userRepo portsrepo.UserRepository, tenantRepo portsrepo.TenantRepository, jwtSecret string, tokenTTL time.Duration) portssvc.IdentityService {
	return &identityService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
	}
}

var _ portssvc.IdentityService = (*identityService)(nil)

func (s *identityService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	tenant, err := s.tenantRepo.FindTenantBySlug(ctx, req.TenantSlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrAuth)
		}
		return nil, fmt.Errorf("failed to resolve tenant for login: %w", err)
	}

	user, err := s.userRepo.FindUserByEmail(ctx, &tenant.TenantID, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrAuth)
		}
		return nil, fmt.Errorf("failed to find user for login: %w", err)
	}
	if user.DeletedAt != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrAuth)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.LogDebug(ctx, "password mismatch on login", slog.String("email", req.Email))
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrAuth)
	}

	token, err := s.GenerateToken(user, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.LogInfo(ctx, "user logged in", slog.String("user_id", user.UserID), slog.String("tenant_id", tenant.TenantID))
	return &dto.LoginResponse{Token: token, ExpiresIn: int64(s.tokenTTL.Seconds())}, nil
}

func (s *identityService) CreateUser(ctx context.Context, caller domain.CallContext, req dto.CreateUserRequest) (*domain.User, error) {
	if err := caller.Require(domain.CapAccountWrite); err != nil {
		return nil, err
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, apperrors.ErrValidation)
	}
	// Only platform operators may mint platform roles.
	if role.IsPlatform() && !caller.Role.IsPlatform() {
		return nil, fmt.Errorf("cannot grant role %s: %w", role, apperrors.ErrForbidden)
	}

	tenant, err := s.tenantRepo.FindTenantByID(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant.Limits.MaxUsers > 0 {
		count, err := s.userRepo.CountUsersByTenant(ctx, tenant.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to count tenant users: %w", err)
		}
		if count >= tenant.Limits.MaxUsers {
			return nil, fmt.Errorf("tenant user limit %d reached: %w", tenant.Limits.MaxUsers, apperrors.ErrValidation)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		TenantID:     &tenant.TenantID,
		BranchID:     req.BranchID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("email %s already registered: %w", req.Email, apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "failed to save user", slog.String("email", req.Email))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return &user, nil
}

func (s *identityService) Resolve(ctx context.Context, tokenString string) (*domain.CallContext, error) {
	claims := &ledgerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", apperrors.ErrAuth)
	}

	cc := &domain.CallContext{
		UserID:   claims.Subject,
		Role:     domain.Role(claims.Role),
		BranchID: claims.BranchID,
		VIPTier:  claims.VIPTier,
	}
	if claims.TenantID != nil {
		cc.TenantID = *claims.TenantID
	}
	if cc.UserID == "" || !cc.Role.Valid() {
		return nil, fmt.Errorf("malformed token claims: %w", apperrors.ErrAuth)
	}
	return cc, nil
}

func (s *identityService) GenerateToken(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ledgerClaims{
		TenantID: user.TenantID,
		BranchID: user.BranchID,
		Role:     string(user.Role),
		VIPTier:  user.VIPTier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
