package database

import (
	"context"
	"fmt"
	"time"

	"github.com/menuvio/backoffice/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Client wraps the GORM handle.
type Client struct {
	DB *gorm.DB
}

// NewClient opens a Postgres connection, configures the pool and runs
// migrations for the billing tables.
func NewClient(databaseURL string) (*Client, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}

	// Pool sizing matters for webhook bursts
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &Client{DB: db}, nil
}

// Migrate creates or updates the schema for all persisted entities.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Restaurant{},
		&models.ClientAccount{},
		&models.Subscription{},
	); err != nil {
		return fmt.Errorf("failed running migrations: %w", err)
	}
	return nil
}

// Ping checks if the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
