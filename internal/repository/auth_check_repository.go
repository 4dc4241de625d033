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

type AuthCheckRepository interface {
	CreateAuthCheck(ctx context.Context, check *models.DomainAuthCheck) error
}

type authCheckRepository struct {
	db *gorm.DB
}

func NewAuthCheckRepository(db *gorm.DB) AuthCheckRepository {
	return &authCheckRepository{
		db: db,
	}
}

func (r *authCheckRepository) CreateAuthCheck(ctx context.Context, check *models.DomainAuthCheck) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "AuthCheckRepository.CreateAuthCheck")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, check.Tenant)
	span.LogKV("domain", check.Domain)

	check.CreatedAt = utils.Now()

	err := r.db.WithContext(ctx).Create(check).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
