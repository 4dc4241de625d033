package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/tracing"
	"github.com/relaypoint/mailguard/internal/utils"
)

type DeliverabilityAlertRepository interface {
	CreateAlert(ctx context.Context, alert *models.DeliverabilityAlert) error
	GetAlertsByTenant(ctx context.Context, tenant string, includeResolved bool) ([]models.DeliverabilityAlert, error)
	CountUnresolved(ctx context.Context, tenant string) (int64, error)
	ResolveAlert(ctx context.Context, id string) error
}

type deliverabilityAlertRepository struct {
	db *gorm.DB
}

func NewDeliverabilityAlertRepository(db *gorm.DB) DeliverabilityAlertRepository {
	return &deliverabilityAlertRepository{
		db: db,
	}
}

func (r *deliverabilityAlertRepository) CreateAlert(ctx context.Context, alert *models.DeliverabilityAlert) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DeliverabilityAlertRepository.CreateAlert")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, alert.Tenant)
	span.LogKV("alertType", alert.Type.String())

	alert.CreatedAt = utils.Now()

	err := r.db.WithContext(ctx).Create(alert).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *deliverabilityAlertRepository) GetAlertsByTenant(ctx context.Context, tenant string, includeResolved bool) ([]models.DeliverabilityAlert, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DeliverabilityAlertRepository.GetAlertsByTenant")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	query := r.db.WithContext(ctx).
		Where("tenant = ?", tenant)
	if !includeResolved {
		query = query.Where("is_resolved = ?", false)
	}

	var alerts []models.DeliverabilityAlert
	err := query.Order("created_at desc").Find(&alerts).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return alerts, nil
}

func (r *deliverabilityAlertRepository) CountUnresolved(ctx context.Context, tenant string) (int64, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DeliverabilityAlertRepository.CountUnresolved")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DeliverabilityAlert{}).
		Where("tenant = ? AND is_resolved = ?", tenant, false).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}

	return count, nil
}

func (r *deliverabilityAlertRepository) ResolveAlert(ctx context.Context, id string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DeliverabilityAlertRepository.ResolveAlert")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.DeliverabilityAlert{}).
		Where("id = ?", id).
		UpdateColumn("is_resolved", true).
		UpdateColumn("resolved_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}
