// Package store implements the durable identity store for tenant accounts
// and their feature grants.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hostsuite/resellerd/internal/db"
	"github.com/hostsuite/resellerd/internal/models"
	"gorm.io/gorm"
)

// TransferRecord is the projection consumed by the transfer authorization
// table builder.
type TransferRecord struct {
	Username     string // Transfer login name.
	SecretDigest string // Stored one-way digest.
	SitePath     string // Namespace root used as the home directory.
}

// AccountStore persists accounts and feature grants via GORM.
type AccountStore struct {
	db *gorm.DB

	mu sync.Mutex
}

// NewAccountStore constructs an AccountStore.
func NewAccountStore(conn *gorm.DB) *AccountStore {
	return &AccountStore{db: conn}
}

// Create inserts an account and its feature grants as one transaction.
// Both rows land or neither does. Conflicts map to ErrDuplicateUsername or
// ErrDuplicateSite; at least one feature grant is required.
func (s *AccountStore) Create(ctx context.Context, account *models.Account, features []string) (uint64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store: create account: %w", ErrStoreUnavailable)
	}
	if account == nil {
		return 0, fmt.Errorf("store: create account: nil account")
	}
	if len(features) == 0 {
		return 0, fmt.Errorf("store: create account: no feature grants")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.Account{}).
			Where("username = ?", account.Username).
			Count(&count).Error; errCount != nil {
			return unavailable("check username", errCount)
		}
		if count > 0 {
			return ErrDuplicateUsername
		}

		if errCount := tx.Model(&models.Account{}).
			Where("site_path = ?", account.SitePath).
			Count(&count).Error; errCount != nil {
			return unavailable("check site path", errCount)
		}
		if count > 0 {
			return ErrDuplicateSite
		}

		if errCreate := tx.Create(account).Error; errCreate != nil {
			return classifyCreateError(errCreate)
		}

		grants := make([]models.SiteFeature, 0, len(features))
		for _, feature := range features {
			grants = append(grants, models.SiteFeature{
				AccountID:   account.ID,
				FeatureName: feature,
				Enabled:     true,
			})
		}
		if errCreate := tx.Create(&grants).Error; errCreate != nil {
			return unavailable("create feature grants", errCreate)
		}
		return nil
	})
	if errTx != nil {
		return 0, errTx
	}
	return account.ID, nil
}

// List returns all accounts with feature grants, newest first.
func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store: list accounts: %w", ErrStoreUnavailable)
	}
	var rows []models.Account
	if errFind := s.db.WithContext(ctx).
		Preload("Features").
		Order("created_at DESC, id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, unavailable("list accounts", errFind)
	}
	return rows, nil
}

// Search returns accounts whose username or site name contains the query,
// case-insensitively, newest first.
func (s *AccountStore) Search(ctx context.Context, query string) ([]models.Account, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store: search accounts: %w", ErrStoreUnavailable)
	}
	pattern := db.NormalizeLikePattern(s.db, "%"+query+"%")
	var rows []models.Account
	if errFind := s.db.WithContext(ctx).
		Preload("Features").
		Where(db.CaseInsensitiveLikeExpr(s.db, "username")+" OR "+db.CaseInsensitiveLikeExpr(s.db, "site_name"),
			pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, unavailable("search accounts", errFind)
	}
	return rows, nil
}

// FindByUsername returns the active account with the given username.
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store: find account: %w", ErrStoreUnavailable)
	}
	var account models.Account
	errFind := s.db.WithContext(ctx).
		Preload("Features").
		Where("username = ? AND status = ?", username, models.StatusActive).
		First(&account).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if errFind != nil {
		return nil, unavailable("find account", errFind)
	}
	return &account, nil
}

// ListTransferEligible returns credentials for active, transfer-enabled
// accounts.
func (s *AccountStore) ListTransferEligible(ctx context.Context) ([]TransferRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store: list transfer eligible: %w", ErrStoreUnavailable)
	}
	var rows []models.Account
	if errFind := s.db.WithContext(ctx).
		Where("status = ? AND transfer_enabled = ?", models.StatusActive, true).
		Find(&rows).Error; errFind != nil {
		return nil, unavailable("list transfer eligible", errFind)
	}
	records := make([]TransferRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, TransferRecord{
			Username:     row.Username,
			SecretDigest: row.SecretDigest,
			SitePath:     row.SitePath,
		})
	}
	return records, nil
}

// Delete removes an account row and its feature grants. Used only as the
// compensating action when namespace provisioning fails after the insert.
func (s *AccountStore) Delete(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: delete account: %w", ErrStoreUnavailable)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDelete := tx.Where("account_id = ?", id).Delete(&models.SiteFeature{}).Error; errDelete != nil {
			return unavailable("delete feature grants", errDelete)
		}
		if errDelete := tx.Delete(&models.Account{}, id).Error; errDelete != nil {
			return unavailable("delete account", errDelete)
		}
		return nil
	})
}

// SetStatus updates the account status.
func (s *AccountStore) SetStatus(ctx context.Context, id uint64, status string) error {
	return s.updateColumn(ctx, id, "status", status)
}

// SetTransferEnabled toggles the transfer access flag.
func (s *AccountStore) SetTransferEnabled(ctx context.Context, id uint64, enabled bool) error {
	return s.updateColumn(ctx, id, "transfer_enabled", enabled)
}

// updateColumn applies a single-column update and reports missing rows.
func (s *AccountStore) updateColumn(ctx context.Context, id uint64, column string, value any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store: update account: %w", ErrStoreUnavailable)
	}
	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return unavailable("update account", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// classifyCreateError maps unique-constraint violations raised by the
// driver to the duplicate sentinels. The transaction pre-checks catch the
// common case; this covers the race where two inserts pass the pre-check.
func classifyCreateError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key") {
		if strings.Contains(msg, "site_path") {
			return ErrDuplicateSite
		}
		return ErrDuplicateUsername
	}
	return unavailable("create account", err)
}

// unavailable wraps a driver error with the store-unavailable sentinel.
func unavailable(op string, err error) error {
	return fmt.Errorf("store: %s: %w: %w", op, ErrStoreUnavailable, err)
}
