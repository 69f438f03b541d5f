package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostsuite/resellerd/internal/packages"
)

// PackageHandler exposes the package catalog.
type PackageHandler struct {
	catalog *packages.Catalog
}

// NewPackageHandler constructs a package handler.
func NewPackageHandler(catalog *packages.Catalog) *PackageHandler {
	return &PackageHandler{catalog: catalog}
}

// List returns the package catalog in order.
func (h *PackageHandler) List(c *gin.Context) {
	pkgs := h.catalog.All()
	out := make([]gin.H, 0, len(pkgs))
	for _, pkg := range pkgs {
		names := make([]string, 0, len(pkg.Features))
		for _, feature := range pkg.Features {
			names = append(names, packages.FeatureDisplayName(feature))
		}
		out = append(out, gin.H{
			"code":          pkg.Code,
			"name":          pkg.Name,
			"features":      pkg.Features,
			"feature_names": names,
		})
	}
	c.JSON(http.StatusOK, gin.H{"packages": out})
}
