package services

import (
	"context"

	"github.com/SAP-F-2025/skill-tracker/internal/auth"
	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

type authService struct {
	base
	resolver *auth.Resolver
}

func NewAuthService(deps Dependencies) AuthService {
	return &authService{base: newBase(deps), resolver: deps.Resolver}
}

// Login resolves credentials against the current dataset.
func (s *authService) Login(ctx context.Context, nationalID, password string) (*models.Principal, error) {
	ds := s.engine.FetchDataset(ctx)
	principal := s.resolver.FindUser(ds, nationalID, password)
	if principal == nil {
		s.logger.InfoContext(ctx, "Login rejected", "national_id", nationalID)
		return nil, ErrInvalidCredentials
	}
	s.logger.DebugContext(ctx, "Login accepted", "role", principal.Role)
	return principal, nil
}

// View returns the dataset as the principal is allowed to see it.
func (s *authService) View(ctx context.Context, principal *models.Principal) *models.Dataset {
	return auth.View(s.engine.FetchDataset(ctx), principal)
}
