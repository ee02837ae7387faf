package gate

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=gate_repo.go -destination=mock/gate_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *EntryLog) error
	FindByOutpassID(ctx context.Context, outpassID string) (*EntryLog, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, e *EntryLog) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindByOutpassID(ctx context.Context, outpassID string) (*EntryLog, error) {
	var e EntryLog
	err := r.db.WithContext(ctx).First(&e, "outpass_id = ?", outpassID).Error
	return &e, err
}
