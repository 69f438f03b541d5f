// Package packages defines the site package catalog: the mapping from a
// package code to a display name and the set of features it grants.
package packages

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hostsuite/resellerd/internal/models"
	"gorm.io/gorm"
)

// SettingKey is the settings-table key holding the catalog JSON.
const SettingKey = "PACKAGE_CATALOG"

// FullSuiteCode is the catalog code of the package granting every feature.
const FullSuiteCode = "4"

// ErrUnknownPackage indicates a package code absent from the catalog.
var ErrUnknownPackage = errors.New("unknown package type")

// Package maps a catalog code to a named set of feature grants.
type Package struct {
	Code     string   `json:"code"`     // Catalog code, e.g. "1".
	Name     string   `json:"name"`     // Display name, e.g. "Forum".
	Features []string `json:"features"` // Granted feature names.
}

// featureDisplayNames maps feature flags to human-readable names.
var featureDisplayNames = map[string]string{
	"forum":     "Discussion Forums",
	"blog":      "Blog System",
	"website":   "Website Hosting",
	"downloads": "File Downloads",
}

// FeatureDisplayName returns the human-readable name for a feature flag.
func FeatureDisplayName(feature string) string {
	if name, ok := featureDisplayNames[feature]; ok {
		return name
	}
	if feature == "" {
		return feature
	}
	return strings.ToUpper(feature[:1]) + feature[1:]
}

// Default returns the built-in package catalog.
func Default() []Package {
	return []Package{
		{Code: "1", Name: "Forum", Features: []string{"forum"}},
		{Code: "2", Name: "Blog", Features: []string{"blog"}},
		{Code: "3", Name: "Website", Features: []string{"website"}},
		{Code: "4", Name: "Full Suite", Features: []string{"forum", "blog", "website", "downloads"}},
	}
}

// Catalog is an immutable lookup table of packages by code.
type Catalog struct {
	byCode map[string]Package
	order  []string
}

// NewCatalog builds a catalog, dropping entries without a code or features.
// Every retained package grants at least one feature.
func NewCatalog(pkgs []Package) *Catalog {
	c := &Catalog{byCode: make(map[string]Package, len(pkgs))}
	for _, pkg := range pkgs {
		code := strings.TrimSpace(pkg.Code)
		if code == "" || len(pkg.Features) == 0 {
			continue
		}
		if _, exists := c.byCode[code]; exists {
			continue
		}
		pkg.Code = code
		c.byCode[code] = pkg
		c.order = append(c.order, code)
	}
	return c
}

// Resolve returns the package for a catalog code.
func (c *Catalog) Resolve(code string) (Package, error) {
	pkg, ok := c.byCode[strings.TrimSpace(code)]
	if !ok {
		return Package{}, fmt.Errorf("%w: %q", ErrUnknownPackage, code)
	}
	return pkg, nil
}

// All returns packages in catalog order.
func (c *Catalog) All() []Package {
	out := make([]Package, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.byCode[code])
	}
	return out
}

// LoadCatalog reads the catalog from the settings table, falling back to
// the built-in catalog when the row is missing or empty.
func LoadCatalog(conn *gorm.DB) (*Catalog, error) {
	var row models.Setting
	errFind := conn.Where("key = ?", SettingKey).First(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return NewCatalog(Default()), nil
	}
	if errFind != nil {
		return nil, fmt.Errorf("packages: load catalog: %w", errFind)
	}

	var pkgs []Package
	if errUnmarshal := json.Unmarshal(row.Value, &pkgs); errUnmarshal != nil {
		return nil, fmt.Errorf("packages: parse catalog setting: %w", errUnmarshal)
	}
	if len(pkgs) == 0 {
		return NewCatalog(Default()), nil
	}
	return NewCatalog(pkgs), nil
}
