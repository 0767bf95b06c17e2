package database

import (
	"errors"
	"strings"

	"github.com/Payphone-Digital/bizsite/config"
	"github.com/Payphone-Digital/bizsite/internal/model"
	"github.com/Payphone-Digital/bizsite/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seed creates initial data for the database. Every step is skipped when
// its data already exists.
func Seed(db *gorm.DB, cfg config.SeedConfig) error {
	if err := SeedAdmin(db, cfg); err != nil {
		return err
	}
	if cfg.Products {
		return SeedProducts(db)
	}
	return nil
}

// SeedAdmin creates the administrator account. Without a configured
// password nothing is created.
func SeedAdmin(db *gorm.DB, cfg config.SeedConfig) error {
	if cfg.AdminPassword == "" {
		logger.GetLogger().Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	email := strings.ToLower(cfg.AdminEmail)

	var existingUser model.User
	result := db.Where("email = ? OR username = ?", email, cfg.AdminUsername).First(&existingUser)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Username:  cfg.AdminUsername,
		Email:     email,
		Password:  string(hashedPassword),
		Role:      model.RoleAdmin,
		FirstName: "Admin",
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("Admin account seeded",
		zap.Uint("admin_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// DefaultProducts is the starter catalog.
func DefaultProducts() []model.Product {
	return []model.Product{
		{
			Name:        "Managed Hosting",
			Slug:        "managed-hosting",
			Category:    "services",
			Summary:     "Fully managed cloud hosting with monitoring and backups.",
			Description: "We run your workloads on managed infrastructure with 24/7 monitoring, daily backups and patching.",
			Specs:       datatypes.JSONMap{"uptime": "99.9%", "backups": "daily", "support": "24/7"},
			Images:      datatypes.JSONSlice[string]{"/images/products/managed-hosting.png"},
			Featured:    true,
			Active:      true,
		},
		{
			Name:        "Website Care Plan",
			Slug:        "website-care-plan",
			Category:    "services",
			Summary:     "Monthly updates, security fixes and content changes.",
			Description: "A retained plan covering dependency updates, security patches and up to ten content changes a month.",
			Specs:       datatypes.JSONMap{"content_changes": 10, "response_time": "1 business day"},
			Images:      datatypes.JSONSlice[string]{"/images/products/care-plan.png"},
			Active:      true,
		},
		{
			Name:        "Analytics Dashboard",
			Slug:        "analytics-dashboard",
			Category:    "software",
			Summary:     "Traffic and conversion reporting for your site.",
			Description: "Self-hosted analytics with funnels, goals and scheduled reports.",
			Specs:       datatypes.JSONMap{"retention_days": 365, "seats": 5},
			Images:      datatypes.JSONSlice[string]{"/images/products/analytics.png"},
			Featured:    true,
			Active:      true,
		},
	}
}

// SeedProducts inserts DefaultProducts whose slug is not taken yet.
func SeedProducts(db *gorm.DB) error {
	created := 0
	for _, p := range DefaultProducts() {
		var count int64
		if err := db.Model(&model.Product{}).Unscoped().Where("slug = ?", p.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		product := p
		if err := db.Create(&product).Error; err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		logger.GetLogger().Info("Products seeded", zap.Int("count", created))
	}
	return nil
}
