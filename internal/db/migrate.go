package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hostsuite/resellerd/internal/models"
	"github.com/hostsuite/resellerd/internal/packages"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrate applies the schema and seeds the package catalog setting.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Account{},
		&models.SiteFeature{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensurePackageCatalogSetting(conn); errSeed != nil {
		return errSeed
	}

	// ddl defines an index statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_accounts_created_at_id",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_accounts_created_at_id
				ON accounts (created_at DESC, id DESC)
			`,
		},
		{
			name: "idx_accounts_status_transfer",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_accounts_status_transfer
				ON accounts (status, transfer_enabled)
			`,
		},
		{
			name: "idx_site_features_account_feature",
			sql: `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_site_features_account_feature
				ON site_features (account_id, feature_name)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}

// ensurePackageCatalogSetting seeds the package catalog when absent or empty.
func ensurePackageCatalogSetting(conn *gorm.DB) error {
	payload, errMarshal := json.Marshal(packages.Default())
	if errMarshal != nil {
		return fmt.Errorf("db: marshal package catalog: %w", errMarshal)
	}

	var existing models.Setting
	if errFind := conn.Where("key = ?", packages.SettingKey).First(&existing).Error; errFind == nil {
		if len(existing.Value) == 0 || string(existing.Value) == "null" {
			if errUpdate := conn.Model(&existing).Updates(map[string]any{
				"value":      datatypes.JSON(payload),
				"updated_at": time.Now().UTC(),
			}).Error; errUpdate != nil {
				return fmt.Errorf("db: update package catalog setting: %w", errUpdate)
			}
		}
		return nil
	} else if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query package catalog setting: %w", errFind)
	}

	setting := models.Setting{
		Key:       packages.SettingKey,
		Value:     datatypes.JSON(payload),
		UpdatedAt: time.Now().UTC(),
	}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create package catalog setting: %w", errCreate)
	}
	return nil
}
