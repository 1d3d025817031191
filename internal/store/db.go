package store

import (
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens a GORM connection from a PostgreSQL URL and migrates the
// tables this pipeline owns. chat_sessions and chat_messages belong to the
// chat service and are intentionally left out of the migration set.
func Connect(databaseURL string) (*gorm.DB, error) {
	dsn := strings.TrimSpace(databaseURL)
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&TokenUsage{},
		&AgentExecution{},
		&PerformanceMetric{},
		&ContentTopic{},
		&UserMetric{},
		&UserFeedback{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
