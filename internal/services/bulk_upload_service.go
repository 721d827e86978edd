package services

import (
	"context"
	"encoding/json"
	"errors"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DefaultBulkMaxItems caps the number of records in one bulk upload
const DefaultBulkMaxItems = 500

// BulkUploadService inserts batches of products or users in a single
// all-or-nothing transaction and keeps an audit trail of every attempt
type BulkUploadService struct {
	store     *repository.Store
	publisher EventPublisher
	logger    *logrus.Entry
	maxItems  int
}

// NewBulkUploadService creates a BulkUploadService. publisher may be nil.
func NewBulkUploadService(store *repository.Store, publisher EventPublisher, logger *logrus.Logger, maxItems int) *BulkUploadService {
	if maxItems <= 0 {
		maxItems = DefaultBulkMaxItems
	}
	return &BulkUploadService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithField("component", "bulk-upload"),
		maxItems:  maxItems,
	}
}

// UploadProducts validates the batch, then inserts every product with its
// category, attribute set, attribute value, tag and complementary links in
// one transaction
func (s *BulkUploadService) UploadProducts(ctx context.Context, req *models.BulkProductUploadRequest, source models.UploadSource) (*models.BulkProductUploadResult, error) {
	job := newJob(models.BulkUploadTypeProducts, source, len(req.Products))
	log := s.logger.WithFields(logrus.Fields{
		"job_id":           job.ID,
		"category_id":      req.CategoryID,
		"attribute_set_id": req.AttributeSetID,
		"items":            len(req.Products),
	})

	batch, err := prepareProductBatch(ctx, s.store, req, s.maxItems)
	if err != nil {
		s.fail(ctx, job, err)
		log.WithError(err).Info("Product bulk upload rejected")
		return nil, err
	}

	var products []*models.Product
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		var txErr error
		products, txErr = insertProductBatch(ctx, tx, batch)
		return txErr
	})
	if err != nil {
		s.fail(ctx, job, err)
		log.WithError(err).Warn("Product bulk upload rolled back")
		return nil, err
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	s.complete(ctx, job, ids)
	log.WithField("created", len(ids)).Info("Product bulk upload committed")

	if s.publisher != nil {
		if err := s.publisher.PublishProductsBulkCreated(ctx, job.ID, batch.category.ID, ids); err != nil {
			log.WithError(err).Warn("Failed to publish products bulk created event")
		}
	}

	return &models.BulkProductUploadResult{JobID: job.ID, ProductIDs: ids, Count: len(ids)}, nil
}

// UploadUsers inserts users and their shipping addresses in one transaction
func (s *BulkUploadService) UploadUsers(ctx context.Context, req *models.BulkUserUploadRequest, source models.UploadSource) (*models.BulkUserUploadResult, error) {
	job := newJob(models.BulkUploadTypeUsers, source, len(req.UserData))
	log := s.logger.WithFields(logrus.Fields{"job_id": job.ID, "items": len(req.UserData)})

	prepared, err := prepareUsers(ctx, s.store, "userData", req.UserData, s.maxItems)
	if err != nil {
		s.fail(ctx, job, err)
		log.WithError(err).Info("User bulk upload rejected")
		return nil, err
	}

	var users []*models.User
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		var txErr error
		users, txErr = insertUsers(ctx, tx, prepared)
		return txErr
	})
	if err != nil {
		s.fail(ctx, job, err)
		log.WithError(err).Warn("User bulk upload rolled back")
		return nil, err
	}

	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	s.complete(ctx, job, ids)
	log.WithField("created", len(ids)).Info("User bulk upload committed")

	if s.publisher != nil {
		if err := s.publisher.PublishUsersBulkCreated(ctx, job.ID, ids); err != nil {
			log.WithError(err).Warn("Failed to publish users bulk created event")
		}
	}

	return &models.BulkUserUploadResult{JobID: job.ID, UserIDs: ids, Count: len(ids)}, nil
}

func (s *BulkUploadService) ListJobs(ctx context.Context, jobType models.BulkUploadType, page models.Page) ([]models.BulkUploadJob, int64, error) {
	return s.store.UploadJobs.List(ctx, jobType, page)
}

func (s *BulkUploadService) GetJob(ctx context.Context, id uuid.UUID) (*models.BulkUploadJob, error) {
	job, err := s.store.UploadJobs.GetByID(ctx, id)
	return job, mapNotFound(err, ErrUploadJobNotFound)
}

func newJob(jobType models.BulkUploadType, source models.UploadSource, total int) *models.BulkUploadJob {
	format := source.Format
	if format == "" {
		format = models.ImportFormatJSON
	}
	return &models.BulkUploadJob{
		ID:          uuid.New(),
		Type:        jobType,
		Source:      format,
		FileName:    source.FileName,
		TotalItems:  total,
		RequestedBy: source.RequestedBy,
	}
}

func (s *BulkUploadService) complete(ctx context.Context, job *models.BulkUploadJob, ids []uuid.UUID) {
	job.Status = models.BulkUploadStatusCompleted
	job.CreatedCount = len(ids)
	if raw, err := json.Marshal(ids); err == nil {
		job.CreatedIDs = datatypes.JSON(raw)
	}
	s.record(ctx, job)
}

func (s *BulkUploadService) fail(ctx context.Context, job *models.BulkUploadJob, cause error) {
	job.Status = models.BulkUploadStatusFailed
	job.ErrorCode = errorCode(cause)
	job.ErrorMessage = cause.Error()
	s.record(ctx, job)
}

// record stores the audit row; a failure here never fails the upload
func (s *BulkUploadService) record(ctx context.Context, job *models.BulkUploadJob) {
	if err := s.store.UploadJobs.Create(ctx, job); err != nil {
		s.logger.WithError(err).WithField("job_id", job.ID).Error("Failed to record bulk upload job")
	}
}

func errorCode(err error) string {
	var validationErr *ValidationError
	var conflictErr *ConflictError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Code
	case errors.As(err, &conflictErr):
		return conflictErr.Code
	}
	return "DB_ERROR"
}
