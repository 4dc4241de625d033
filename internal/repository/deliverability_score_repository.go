package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/tracing"
	"github.com/relaypoint/mailguard/internal/utils"
)

type DeliverabilityScoreRepository interface {
	CreateSnapshot(ctx context.Context, score *models.TenantDeliverabilityScore) error
	GetSnapshotsSince(ctx context.Context, tenant string, since time.Time) ([]models.TenantDeliverabilityScore, error)
}

type deliverabilityScoreRepository struct {
	db *gorm.DB
}

func NewDeliverabilityScoreRepository(db *gorm.DB) DeliverabilityScoreRepository {
	return &deliverabilityScoreRepository{
		db: db,
	}
}

func (r *deliverabilityScoreRepository) CreateSnapshot(ctx context.Context, score *models.TenantDeliverabilityScore) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DeliverabilityScoreRepository.CreateSnapshot")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, score.Tenant)

	score.CreatedAt = utils.Now()

	err := r.db.WithContext(ctx).Create(score).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

// GetSnapshotsSince returns snapshots ordered oldest first, for trend reconstruction.
func (r *deliverabilityScoreRepository) GetSnapshotsSince(ctx context.Context, tenant string, since time.Time) ([]models.TenantDeliverabilityScore, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DeliverabilityScoreRepository.GetSnapshotsSince")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var snapshots []models.TenantDeliverabilityScore
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND created_at >= ?", tenant, since).
		Order("created_at asc").
		Find(&snapshots).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return snapshots, nil
}
