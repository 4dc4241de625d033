package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/relaypoint/mailguard/internal/enum"
	"github.com/relaypoint/mailguard/internal/models"
	"github.com/relaypoint/mailguard/internal/tracing"
)

// EventCounts holds aggregate counts per send-lifecycle event type.
type EventCounts map[enum.EmailEventType]int64

func (c EventCounts) Get(t enum.EmailEventType) int64 {
	return c[t]
}

type EmailEventRepository interface {
	CreateEvent(ctx context.Context, event *models.EmailEvent) error
	CountEventsByType(ctx context.Context, tenant string, since time.Time) (EventCounts, error)
}

type emailEventRepository struct {
	db *gorm.DB
}

func NewEmailEventRepository(db *gorm.DB) EmailEventRepository {
	return &emailEventRepository{
		db: db,
	}
}

func (r *emailEventRepository) CreateEvent(ctx context.Context, event *models.EmailEvent) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "EmailEventRepository.CreateEvent")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, event.Tenant)

	err := r.db.WithContext(ctx).Create(event).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *emailEventRepository) CountEventsByType(ctx context.Context, tenant string, since time.Time) (EventCounts, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "EmailEventRepository.CountEventsByType")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)
	span.LogKV("since", since.Format(time.RFC3339))

	var rows []struct {
		EventType enum.EmailEventType
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.EmailEvent{}).
		Select("event_type, count(*) as total").
		Where("tenant = ? AND occurred_at >= ?", tenant, since).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	counts := make(EventCounts, len(rows))
	for _, row := range rows {
		counts[row.EventType] = row.Total
	}

	return counts, nil
}
