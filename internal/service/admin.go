package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/resultshub/chat-server-go/internal/errors"
	"github.com/resultshub/chat-server-go/internal/model"
	"github.com/resultshub/chat-server-go/internal/repository"
	"github.com/resultshub/chat-server-go/internal/util"
)

// AdminService provisions moderator accounts for the token auth layer.
type AdminService struct {
	adminRepo repository.AdminRepository
}

func NewAdminService(adminRepo repository.AdminRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo}
}

// CreateAccount mints a bearer token for a named moderator and stores its
// hash. The plaintext token is returned exactly once; only the hash survives,
// so a lost token means provisioning a new account.
func (s *AdminService) CreateAccount(ctx context.Context, name string) (*model.AdminAccount, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", apperrors.MissingRequired("name")
	}

	token, err := util.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	account, err := s.adminRepo.Create(ctx, name, util.HashToken(token))
	if err != nil {
		return nil, "", fmt.Errorf("create admin account: %w", err)
	}

	log.Info().
		Str("adminId", account.ID).
		Str("name", account.Name).
		Msg("admin account created")

	return account, token, nil
}
