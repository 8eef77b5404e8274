package repository

import (
	"context"
	"errors"

	"taskmanager/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CredentialRepository is the credential store: identity records keyed by a
// generated id and a unique e-mail.
type CredentialRepository interface {
	Create(ctx context.Context, c *model.Credential) error
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type credentialRepo struct{ db *gorm.DB }

func NewCredentialRepository(db *gorm.DB) CredentialRepository { return &credentialRepo{db: db} }

func (r *credentialRepo) Create(ctx context.Context, c *model.Credential) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (r *credentialRepo) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var c model.Credential
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *credentialRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	res := r.db.WithContext(ctx).Model(&model.Credential{}).Where("id = ?", id).Update("email", email)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *credentialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Credential{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
