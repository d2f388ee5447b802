package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/resultshub/chat-server-go/internal/model"
)

type AdminRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminAccount, error)
	Create(ctx context.Context, name, tokenHash string) (*model.AdminAccount, error)
}

type adminRepo struct {
	db execDB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminAccount, error) {
	var account model.AdminAccount
	err := r.db.GetContext(ctx, &account, `
		SELECT * FROM admin_accounts WHERE token_hash = $1
	`, tokenHash)
	return HandleNotFound(&account, err)
}

func (r *adminRepo) Create(ctx context.Context, name, tokenHash string) (*model.AdminAccount, error) {
	var account model.AdminAccount
	err := r.db.GetContext(ctx, &account, `
		INSERT INTO admin_accounts (name, token_hash)
		VALUES ($1, $2)
		ON CONFLICT (token_hash) DO UPDATE SET name = EXCLUDED.name
		RETURNING *
	`, name, tokenHash)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
