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

type DomainAlertRepository interface {
	CreateAlert(ctx context.Context, alert *models.DomainAlert) error
	GetAlertByID(ctx context.Context, id string) (*models.DomainAlert, error)
	GetAlertsByDomain(ctx context.Context, domainID string, includeResolved bool) ([]models.DomainAlert, error)
	ResolveAlert(ctx context.Context, id string) error
}

type domainAlertRepository struct {
	db *gorm.DB
}

func NewDomainAlertRepository(db *gorm.DB) DomainAlertRepository {
	return &domainAlertRepository{
		db: db,
	}
}

func (r *domainAlertRepository) CreateAlert(ctx context.Context, alert *models.DomainAlert) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainAlertRepository.CreateAlert")
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

func (r *domainAlertRepository) GetAlertByID(ctx context.Context, id string) (*models.DomainAlert, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainAlertRepository.GetAlertByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var alert models.DomainAlert
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &alert, nil
}

func (r *domainAlertRepository) GetAlertsByDomain(ctx context.Context, domainID string, includeResolved bool) ([]models.DomainAlert, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainAlertRepository.GetAlertsByDomain")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, domainID)

	query := r.db.WithContext(ctx).
		Where("domain_id = ?", domainID)
	if !includeResolved {
		query = query.Where("is_resolved = ?", false)
	}

	var alerts []models.DomainAlert
	err := query.Order("created_at desc").Find(&alerts).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return alerts, nil
}

func (r *domainAlertRepository) ResolveAlert(ctx context.Context, id string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainAlertRepository.ResolveAlert")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.DomainAlert{}).
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
