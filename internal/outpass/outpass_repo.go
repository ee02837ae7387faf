package outpass

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=outpass_repo.go -destination=mock/outpass_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, o *Outpass) error
	FindAll(ctx context.Context, status, hostel string) ([]Outpass, error)
	FindByID(ctx context.Context, id string) (*Outpass, error)
	FindByPassCode(ctx context.Context, passCode uuid.UUID) (*Outpass, error)
	Update(ctx context.Context, o *Outpass) error
	Delete(ctx context.Context, id string) error
	HasOverlappingRequest(ctx context.Context, studentName, hostel string, dateFrom, dateTo time.Time, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, o *Outpass) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) FindAll(ctx context.Context, status, hostel string) ([]Outpass, error) {
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if hostel != "" {
		db = db.Where("hostel = ?", hostel)
	}

	var outpasses []Outpass
	err := db.Order("created_at DESC").Find(&outpasses).Error
	return outpasses, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Outpass, error) {
	var o Outpass
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *repository) FindByPassCode(ctx context.Context, passCode uuid.UUID) (*Outpass, error) {
	var o Outpass
	err := r.db.WithContext(ctx).First(&o, "pass_code = ?", passCode).Error
	return &o, err
}

func (r *repository) Update(ctx context.Context, o *Outpass) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Outpass{}, "id = ?", id).Error
}

func (r *repository) HasOverlappingRequest(ctx context.Context, studentName, hostel string, dateFrom, dateTo time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&Outpass{}).
		Where("student_name = ?", studentName).
		Where("hostel = ?", hostel).
		Where("status NOT IN ?", []string{StatusRejected, StatusCompleted}).
		Where("NOT (date_to < ? OR date_from > ?)", dateFrom, dateTo)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
