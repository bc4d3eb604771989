package topic

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate applies the cache and query-log schema using Gorm's AutoMigrate and logs progress.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "topic.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying topic schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&CacheEntry{}, &QueryLogEntry{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("topic schema migration failed")
		}
		return eris.Wrap(err, "auto migrating topic schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("topic schema migration complete")
	}

	return nil
}
