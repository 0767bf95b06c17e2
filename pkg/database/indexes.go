package database

import (
	"fmt"

	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// postgresIndexes are the indexes gorm tags cannot express. Each statement
// is idempotent.
var postgresIndexes = []string{
	// Reset lookups and the purge job only ever touch rows with a pending reset.
	"CREATE INDEX IF NOT EXISTS idx_users_reset_pending ON users(password_reset_expires) WHERE password_reset_token IS NOT NULL;",

	// Public listing: published content, newest first.
	"CREATE INDEX IF NOT EXISTS idx_contents_published ON contents(type, published_at DESC) WHERE status = 'published' AND deleted_at IS NULL;",

	"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(featured, id) WHERE active = true AND deleted_at IS NULL;",
	"CREATE INDEX IF NOT EXISTS idx_enquiries_user_created ON enquiries(user_id, created_at DESC) WHERE user_id IS NOT NULL;",
}

// CreateIndexes applies postgresIndexes.
func CreateIndexes(db *gorm.DB) error {
	for _, stmt := range postgresIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.GetLogger().Error("Failed to create index",
				zap.String("statement", stmt),
				zap.Error(err),
			)
			return fmt.Errorf("create index: %w", err)
		}
	}

	logger.GetLogger().Info("Database indexes ensured",
		zap.Int("count", len(postgresIndexes)),
	)
	return nil
}
