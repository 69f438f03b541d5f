// Package account orchestrates tenant provisioning: validation, the
// identity store write, and namespace creation as one atomic operation
// from the caller's perspective.
package account

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hostsuite/resellerd/internal/models"
	"github.com/hostsuite/resellerd/internal/packages"
	"github.com/hostsuite/resellerd/internal/site"
	"github.com/hostsuite/resellerd/internal/store"

	log "github.com/sirupsen/logrus"
)

// ProvisionParams carries the inputs for one provisioning call. The
// plaintext secret lives only in this value for the duration of the call;
// it is never persisted.
type ProvisionParams struct {
	Username    string
	Secret      string
	Email       string
	SiteName    string
	PackageType string

	// DefaultToFullSuite opts into substituting the full-suite package for
	// an unrecognized package code. Off by default: the core errors on
	// unknown packages unless the caller explicitly asks otherwise.
	DefaultToFullSuite bool
}

// Service composes the identity store and namespace provisioner.
type Service struct {
	store       *store.AccountStore
	provisioner *site.Provisioner
	catalog     *packages.Catalog

	// mu serializes the check-insert-seed sequence so two concurrent
	// provision calls for the same normalized name cannot interleave
	// between the directory check and the store insert.
	mu sync.Mutex
}

// NewService constructs a Service.
func NewService(accounts *store.AccountStore, provisioner *site.Provisioner, catalog *packages.Catalog) *Service {
	return &Service{
		store:       accounts,
		provisioner: provisioner,
		catalog:     catalog,
	}
}

// Provision validates the request, inserts the account with its feature
// grants, and creates the seeded site namespace. On success exactly one
// account row and one fully seeded directory tree exist; on failure
// neither does.
func (s *Service) Provision(ctx context.Context, params ProvisionParams) (uint64, error) {
	if errValidate := validate(params); errValidate != nil {
		return 0, errValidate
	}

	pkg, errResolve := s.catalog.Resolve(params.PackageType)
	if errResolve != nil {
		if !params.DefaultToFullSuite {
			return 0, errResolve
		}
		pkg, errResolve = s.catalog.Resolve(packages.FullSuiteCode)
		if errResolve != nil {
			return 0, errResolve
		}
	}

	digest := DigestSecret(params.Secret)
	siteName := strings.TrimSpace(params.SiteName)

	s.mu.Lock()
	defer s.mu.Unlock()

	sitePath, errPath := s.provisioner.SitePath(siteName)
	if errPath != nil {
		return 0, errPath
	}
	exists, errExists := s.provisioner.Exists(sitePath)
	if errExists != nil {
		return 0, errExists
	}
	if exists {
		return 0, fmt.Errorf("%w: %s", store.ErrDuplicateSite, sitePath)
	}

	record := models.Account{
		Username:        params.Username,
		SecretDigest:    digest,
		Email:           strings.TrimSpace(params.Email),
		SiteName:        siteName,
		PackageType:     pkg.Code,
		SitePath:        sitePath,
		TransferEnabled: true,
		Status:          models.StatusActive,
	}

	id, errCreate := s.store.Create(ctx, &record, pkg.Features)
	if errCreate != nil {
		return 0, errCreate
	}

	if _, errSite := s.provisioner.Create(siteName, pkg.Features); errSite != nil {
		if errDelete := s.store.Delete(ctx, id); errDelete != nil {
			log.WithError(errDelete).Errorf("account: compensating delete failed for id=%d", id)
		}
		return 0, fmt.Errorf("account: provision %s: %w: %w", params.Username, ErrProvisioningFailed, errSite)
	}

	log.Infof("account: provisioned %s (package=%s, site=%s)", params.Username, pkg.Name, sitePath)
	return id, nil
}

// ListAccounts returns all accounts, newest first.
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.List(ctx)
}

// SearchAccounts returns accounts whose username or site name matches the
// query, newest first. An empty query lists everything.
func (s *Service) SearchAccounts(ctx context.Context, query string) ([]models.Account, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return s.store.List(ctx)
	}
	return s.store.Search(ctx, trimmed)
}

// FindByUsername returns the active account with the given username.
func (s *Service) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return s.store.FindByUsername(ctx, username)
}

// Disable marks an account disabled; it drops out of lookups and the
// transfer authorization table.
func (s *Service) Disable(ctx context.Context, id uint64) error {
	return s.store.SetStatus(ctx, id, models.StatusDisabled)
}

// Enable marks an account active again.
func (s *Service) Enable(ctx context.Context, id uint64) error {
	return s.store.SetStatus(ctx, id, models.StatusActive)
}

// SetTransferEnabled toggles transfer access for an account.
func (s *Service) SetTransferEnabled(ctx context.Context, id uint64, enabled bool) error {
	return s.store.SetTransferEnabled(ctx, id, enabled)
}

// validate applies the fail-fast input checks, in order, before any side
// effect.
func validate(params ProvisionParams) error {
	if errUsername := ValidateUsername(params.Username); errUsername != nil {
		return errUsername
	}
	if len(params.Secret) < 6 {
		return ErrWeakSecret
	}
	email := strings.TrimSpace(params.Email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(params.SiteName) == "" {
		return site.ErrEmptyName
	}
	return nil
}

// ValidateUsername checks the transfer login name rules: 3 to 20 ASCII
// letters and digits.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 || !isAlphanumeric(username) {
		return ErrInvalidUsername
	}
	return nil
}

// isAlphanumeric reports whether s contains only ASCII letters and digits.
func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
