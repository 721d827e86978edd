package repository

import (
	"context"
	"time"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadJobRepository stores bulk upload audit records
type UploadJobRepository struct {
	db *gorm.DB
}

func NewUploadJobRepository(db *gorm.DB) *UploadJobRepository {
	return &UploadJobRepository{db: db}
}

func (r *UploadJobRepository) Create(ctx context.Context, job *models.BulkUploadJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *UploadJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BulkUploadJob, error) {
	var job models.BulkUploadJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &job, nil
}

func (r *UploadJobRepository) List(ctx context.Context, jobType models.BulkUploadType, page models.Page) ([]models.BulkUploadJob, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BulkUploadJob{})
	if jobType != "" {
		query = query.Where("type = ?", jobType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.BulkUploadJob
	err := query.Order("created_at DESC").Scopes(paginate(page.Page, page.Limit)).Find(&jobs).Error
	return jobs, total, err
}

// DeleteOlderThan purges jobs created before cutoff and returns how many
// rows were removed
func (r *UploadJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.BulkUploadJob{})
	return result.RowsAffected, result.Error
}
