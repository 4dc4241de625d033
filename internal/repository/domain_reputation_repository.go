package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/tracing"
	"github.com/relaypoint/mailguard/internal/utils"
)

type DomainReputationRepository interface {
	UpsertReputation(ctx context.Context, reputation *models.DomainReputation) error
	GetByDomainID(ctx context.Context, domainID string) (*models.DomainReputation, error)
	GetByTenant(ctx context.Context, tenant string) ([]models.DomainReputation, error)
}

type domainReputationRepository struct {
	db *gorm.DB
}

func NewDomainReputationRepository(db *gorm.DB) DomainReputationRepository {
	return &domainReputationRepository{
		db: db,
	}
}

// UpsertReputation keeps a single current snapshot per domain, latest overwrites.
func (r *domainReputationRepository) UpsertReputation(ctx context.Context, reputation *models.DomainReputation) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainReputationRepository.UpsertReputation")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, reputation.Tenant)
	span.LogKV("domain", reputation.Domain)

	reputation.LastUpdated = utils.Now()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "domain_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "factors", "recommendations", "last_updated"}),
		}).
		Create(reputation).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *domainReputationRepository) GetByDomainID(ctx context.Context, domainID string) (*models.DomainReputation, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainReputationRepository.GetByDomainID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, domainID)

	var reputation models.DomainReputation
	err := r.db.WithContext(ctx).
		Where("domain_id = ?", domainID).
		First(&reputation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &reputation, nil
}

func (r *domainReputationRepository) GetByTenant(ctx context.Context, tenant string) ([]models.DomainReputation, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "DomainReputationRepository.GetByTenant")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var reputations []models.DomainReputation
	err := r.db.WithContext(ctx).
		Where("tenant = ?", tenant).
		Find(&reputations).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return reputations, nil
}
