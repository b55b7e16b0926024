package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jordanlanch/trainhub/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client holds the database handle
type Client struct {
	DB *gorm.DB
}

// NewClient opens a Postgres connection pool and applies migrations
func NewClient(databaseURL string) (*Client, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// Surface unique violations as gorm.ErrDuplicatedKey so services
		// can tell a conflict from a transient failure
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed running migrations: %w", err)
	}

	log.Println("✅ Database connected and migrations applied")

	return &Client{DB: db}, nil
}

// Migrate creates or updates the schema for every persisted document
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.TrainingCalendar{},
		&models.TrainingMember{},
		&models.AttendanceGoal{},
		&models.PhysicalPerformance{},
		&models.UserPerformanceExercise{},
		&models.Journal{},
		&models.Post{},
		&models.Reaction{},
		&models.Comment{},
		&models.Badge{},
		&models.CareerForm{},
	)
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
