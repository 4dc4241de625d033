package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/relaypoint/mailguard/config"
	"github.com/relaypoint/mailguard/internal/models"
)

type Repositories struct {
	DomainRepository              DomainRepository
	DomainReputationRepository    DomainReputationRepository
	DomainAlertRepository         DomainAlertRepository
	DeliverabilityAlertRepository DeliverabilityAlertRepository
	DeliverabilityScoreRepository DeliverabilityScoreRepository
	EmailEventRepository          EmailEventRepository
	AuthCheckRepository           AuthCheckRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DomainRepository:              NewDomainRepository(db),
		DomainReputationRepository:    NewDomainReputationRepository(db),
		DomainAlertRepository:         NewDomainAlertRepository(db),
		DeliverabilityAlertRepository: NewDeliverabilityAlertRepository(db),
		DeliverabilityScoreRepository: NewDeliverabilityScoreRepository(db),
		EmailEventRepository:          NewEmailEventRepository(db),
		AuthCheckRepository:           NewAuthCheckRepository(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.Domain{},
		&models.DomainReputation{},
		&models.DomainAlert{},
		&models.DeliverabilityAlert{},
		&models.TenantDeliverabilityScore{},
		&models.EmailEvent{},
		&models.DomainAuthCheck{},
	)

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
