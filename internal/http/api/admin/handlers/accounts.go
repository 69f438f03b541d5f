package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hostsuite/resellerd/internal/account"
	"github.com/hostsuite/resellerd/internal/models"
	"github.com/hostsuite/resellerd/internal/packages"
	"github.com/hostsuite/resellerd/internal/site"
	"github.com/hostsuite/resellerd/internal/store"
)

// AccountHandler manages admin endpoints for tenant accounts.
type AccountHandler struct {
	svc *account.Service
}

// NewAccountHandler constructs an account handler.
func NewAccountHandler(svc *account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// createAccountRequest captures the payload for provisioning an account.
type createAccountRequest struct {
	Username    string `json:"username"`     // Transfer login name.
	Secret      string `json:"secret"`       // Plaintext secret; digested, never stored.
	Email       string `json:"email"`        // Contact address.
	SiteName    string `json:"site_name"`    // Display name of the site.
	PackageType string `json:"package_type"` // Package catalog code.
}

// Create provisions a new tenant account and site namespace.
func (h *AccountHandler) Create(c *gin.Context) {
	var body createAccountRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	id, errProvision := h.svc.Provision(c.Request.Context(), account.ProvisionParams{
		Username:    strings.TrimSpace(body.Username),
		Secret:      body.Secret,
		Email:       body.Email,
		SiteName:    body.SiteName,
		PackageType: body.PackageType,
	})
	if errProvision != nil {
		status, msg := classifyProvisionError(errProvision)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// List returns accounts newest first, optionally filtered by the q query
// parameter against username and site name.
func (h *AccountHandler) List(c *gin.Context) {
	rows, errList := h.svc.SearchAccounts(c.Request.Context(), c.Query("q"))
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list accounts failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, formatAccount(&row))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

// Get fetches an active account by username.
func (h *AccountHandler) Get(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))
	row, errFind := h.svc.FindByUsername(c.Request.Context(), username)
	if errFind != nil {
		if errors.Is(errFind, store.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatAccount(row))
}

// Enable marks an account active.
func (h *AccountHandler) Enable(c *gin.Context) {
	h.applyToggle(c, func(id uint64) error {
		return h.svc.Enable(c.Request.Context(), id)
	})
}

// Disable marks an account disabled.
func (h *AccountHandler) Disable(c *gin.Context) {
	h.applyToggle(c, func(id uint64) error {
		return h.svc.Disable(c.Request.Context(), id)
	})
}

// EnableTransfer grants transfer access.
func (h *AccountHandler) EnableTransfer(c *gin.Context) {
	h.applyToggle(c, func(id uint64) error {
		return h.svc.SetTransferEnabled(c.Request.Context(), id, true)
	})
}

// DisableTransfer revokes transfer access.
func (h *AccountHandler) DisableTransfer(c *gin.Context) {
	h.applyToggle(c, func(id uint64) error {
		return h.svc.SetTransferEnabled(c.Request.Context(), id, false)
	})
}

// applyToggle parses the id parameter and applies a single-account update.
func (h *AccountHandler) applyToggle(c *gin.Context, apply func(id uint64) error) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if errApply := apply(id); errApply != nil {
		if errors.Is(errApply, store.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// classifyProvisionError maps provisioning errors to HTTP responses,
// keeping raw driver diagnostics out of the operator-facing message.
func classifyProvisionError(err error) (int, string) {
	switch {
	case errors.Is(err, account.ErrInvalidUsername):
		return http.StatusBadRequest, account.ErrInvalidUsername.Error()
	case errors.Is(err, account.ErrWeakSecret):
		return http.StatusBadRequest, account.ErrWeakSecret.Error()
	case errors.Is(err, account.ErrInvalidEmail):
		return http.StatusBadRequest, account.ErrInvalidEmail.Error()
	case errors.Is(err, site.ErrEmptyName):
		return http.StatusBadRequest, site.ErrEmptyName.Error()
	case errors.Is(err, packages.ErrUnknownPackage):
		return http.StatusBadRequest, packages.ErrUnknownPackage.Error()
	case errors.Is(err, store.ErrDuplicateUsername):
		return http.StatusConflict, store.ErrDuplicateUsername.Error()
	case errors.Is(err, store.ErrDuplicateSite):
		return http.StatusConflict, store.ErrDuplicateSite.Error()
	case errors.Is(err, account.ErrProvisioningFailed):
		return http.StatusInternalServerError, account.ErrProvisioningFailed.Error()
	default:
		return http.StatusInternalServerError, "provisioning failed"
	}
}

// formatAccount converts an account model into a response payload.
func formatAccount(a *models.Account) gin.H {
	features := make([]string, 0, len(a.Features))
	for _, f := range a.Features {
		features = append(features, f.FeatureName)
	}
	return gin.H{
		"id":               a.ID,
		"username":         a.Username,
		"email":            a.Email,
		"site_name":        a.SiteName,
		"package_type":     a.PackageType,
		"site_path":        a.SitePath,
		"transfer_enabled": a.TransferEnabled,
		"status":           a.Status,
		"features":         features,
		"created_at":       a.CreatedAt,
		"updated_at":       a.UpdatedAt,
	}
}
