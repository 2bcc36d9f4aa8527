package service

import (
	"context"
	"errors"
	"time"

	identity "salesorch_backend/internal/identity/domain"
	"salesorch_backend/internal/identity/repository"
	"salesorch_backend/platform/apperr"
	"salesorch_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenType = "access"

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// SignUp creates an organization and its first admin user in one transaction.
func (s *Service) SignUp(ctx context.Context, orgName, email, plainPassword string) (repository.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return repository.User{}, err
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return repository.User{}, err
	}
	defer tx.Rollback(ctx)

	org, err := s.repo.CreateOrganization(ctx, tx, orgName, "")
	if err != nil {
		return repository.User{}, err
	}

	user, err := s.repo.CreateUser(ctx, tx, org.ID, email, string(hash), string(identity.RoleAdmin))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return repository.User{}, apperr.Conflict("email already registered")
		}
		return repository.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return repository.User{}, err
	}
	return user, nil
}

// SignIn verifies credentials and returns a signed access token.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, repository.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", repository.User{}, apperr.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plainPassword)); err != nil {
		return "", repository.User{}, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return "", repository.User{}, err
	}
	return token, user, nil
}

// Me returns the user's profile and organization.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (repository.User, repository.Organization, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, repository.Organization{}, apperr.NotFound("user not found")
		}
		return repository.User{}, repository.Organization{}, err
	}

	var org repository.Organization
	if user.OrgID != nil {
		org, err = s.repo.GetOrganization(ctx, *user.OrgID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, repository.Organization{}, err
		}
	}
	return user, org, nil
}

// GetConfiguration returns the stored configuration, or zero values when
// the organization has none yet.
func (s *Service) GetConfiguration(ctx context.Context, orgID uuid.UUID) (repository.OrgConfiguration, error) {
	cfg, err := s.repo.GetConfiguration(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.OrgConfiguration{
			OrgID:   orgID,
			AIModel: string(identity.AIPlatformOpenAI),
		}, nil
	}
	return cfg, err
}

// SaveConfiguration upserts the full configuration row.
func (s *Service) SaveConfiguration(ctx context.Context, cfg repository.OrgConfiguration) (repository.OrgConfiguration, error) {
	if cfg.AIModel == "" {
		cfg.AIModel = string(identity.AIPlatformOpenAI)
	}
	if !identity.AIModelPlatform(cfg.AIModel).Valid() {
		return repository.OrgConfiguration{}, apperr.Validation("unknown ai_model")
	}
	return s.repo.UpsertConfiguration(ctx, cfg)
}

func (s *Service) signAccessToken(user repository.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  accessTokenType,
		"roles": []string{user.Role},
		"exp":   time.Now().Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   time.Now().Unix(),
	}
	if user.OrgID != nil {
		claims["tenant_id"] = user.OrgID.String()
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
