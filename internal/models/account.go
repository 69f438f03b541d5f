package models

import "time"

// Account status values.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// Account represents one tenant with a provisioned site namespace.
type Account struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username     string `gorm:"type:text;not null;uniqueIndex"` // Unique transfer login name.
	SecretDigest string `gorm:"type:text;not null"`             // One-way hash of the tenant secret.
	Email        string `gorm:"type:text;not null"`             // Contact address.

	SiteName    string `gorm:"type:text;not null"`             // Display name of the site.
	PackageType string `gorm:"type:text;not null"`             // Package catalog code.
	SitePath    string `gorm:"type:text;not null;uniqueIndex"` // Absolute namespace root on disk.

	TransferEnabled bool   `gorm:"not null;default:true"`               // Whether transfer access is granted.
	Status          string `gorm:"type:text;not null;default:'active'"` // active or disabled.

	Features []SiteFeature `gorm:"foreignKey:AccountID"` // Granted feature flags.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// SiteFeature is a named capability granted to an account by its package.
type SiteFeature struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	AccountID   uint64 `gorm:"not null;index"`        // Owning account.
	FeatureName string `gorm:"type:text;not null"`    // Capability name (forum, blog, ...).
	Enabled     bool   `gorm:"not null;default:true"` // Grant flag; schema-reserved, no mutation path.
}
