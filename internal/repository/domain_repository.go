package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/tracing"
	"github.com/relaypoint/mailguard/internal/utils"
)

type DomainRepository interface {
	CreateDomain(ctx context.Context, domain *models.Domain) error
	GetDomainByID(ctx context.Context, id string) (*models.Domain, error)
	GetDomain(ctx context.Context, tenant, domain string) (*models.Domain, error)
	GetDomains(ctx context.Context, tenant string) ([]models.Domain, error)
	GetDomainsByStatusCrossTenant(ctx context.Context, status enum.DomainStatus) ([]models.Domain, error)
	UpdateStatus(ctx context.Context, id string, status enum.DomainStatus) error
	MarkVerified(ctx context.Context, id string) error
}

type domainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{
		db: db,
	}
}

func (r *domainRepository) CreateDomain(ctx context.Context, domain *models.Domain) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.CreateDomain")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, domain.Tenant)
	span.LogKV("domain", domain.Domain)

	now := utils.Now()
	domain.CreatedAt = now
	domain.UpdatedAt = now

	err := r.db.WithContext(ctx).Create(domain).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *domainRepository) GetDomainByID(ctx context.Context, id string) (*models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetDomainByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var domain models.Domain
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &domain, nil
}

func (r *domainRepository) GetDomain(ctx context.Context, tenant, domain string) (*models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetDomain")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)
	span.LogKV("domain", domain)

	var domainModel models.Domain
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND domain = ?", tenant, domain).
		First(&domainModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &domainModel, nil
}

func (r *domainRepository) GetDomains(ctx context.Context, tenant string) ([]models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetDomains")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var domains []models.Domain
	err := r.db.WithContext(ctx).
		Where("tenant = ?", tenant).
		Order("created_at asc").
		Find(&domains).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return domains, nil
}

func (r *domainRepository) GetDomainsByStatusCrossTenant(ctx context.Context, status enum.DomainStatus) ([]models.Domain, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.GetDomainsByStatusCrossTenant")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("status", status.String())

	var domains []models.Domain
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Find(&domains).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return domains, nil
}

func (r *domainRepository) UpdateStatus(ctx context.Context, id string, status enum.DomainStatus) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.UpdateStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)
	span.LogKV("status", status.String())

	err := r.db.WithContext(ctx).
		Model(&models.Domain{}).
		Where("id = ?", id).
		UpdateColumn("status", status).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}

func (r *domainRepository) MarkVerified(ctx context.Context, id string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainRepository.MarkVerified")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	now := utils.Now()
	err := r.db.WithContext(ctx).
		Model(&models.Domain{}).
		Where("id = ?", id).
		UpdateColumn("status", enum.DomainStatusVerified).
		UpdateColumn("verified_at", now).
		UpdateColumn("updated_at", now).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}
