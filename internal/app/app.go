// Package app wires configuration, storage, and the service layers into
// runnable commands.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostsuite/resellerd/internal/account"
	"github.com/hostsuite/resellerd/internal/config"
	"github.com/hostsuite/resellerd/internal/console"
	"github.com/hostsuite/resellerd/internal/db"
	"github.com/hostsuite/resellerd/internal/ftp"
	"github.com/hostsuite/resellerd/internal/http/api/admin"
	"github.com/hostsuite/resellerd/internal/packages"
	"github.com/hostsuite/resellerd/internal/site"
	"github.com/hostsuite/resellerd/internal/store"

	log "github.com/sirupsen/logrus"
)

// App holds the shared dependencies built from one config.
type App struct {
	cfg     config.Config
	conn    *gorm.DB
	store   *store.AccountStore
	svc     *account.Service
	catalog *packages.Catalog
}

// New opens the database, migrates the schema, and builds the service
// graph.
func New(cfg config.Config) (*App, error) {
	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return nil, fmt.Errorf("app: open database: %w", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, fmt.Errorf("app: migrate: %w", errMigrate)
	}

	catalog, errCatalog := packages.LoadCatalog(conn)
	if errCatalog != nil {
		return nil, fmt.Errorf("app: load package catalog: %w", errCatalog)
	}

	accounts := store.NewAccountStore(conn)
	renderer := site.NewTemplateRenderer()
	provisioner := site.NewProvisioner(cfg.SitesRoot, renderer, cfg.FTP.Host, cfg.FTP.Port)
	svc := account.NewService(accounts, provisioner, catalog)

	return &App{
		cfg:     cfg,
		conn:    conn,
		store:   accounts,
		svc:     svc,
		catalog: catalog,
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	sqlDB, errDB := a.conn.DB()
	if errDB != nil {
		return errDB
	}
	return sqlDB.Close()
}

// RunConsole runs the interactive operator menu.
func (a *App) RunConsole(ctx context.Context) error {
	ui := console.New(a.svc, a.catalog, a.RunFTP)
	return ui.Run(ctx)
}

// RunAPI serves the admin HTTP API until the listener fails.
func (a *App) RunAPI(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	admin.RegisterAdminRoutes(engine, &a.cfg, a.conn, a.svc, a.catalog)

	addr := fmt.Sprintf(":%d", a.cfg.API.Port)
	log.Infof("app: admin API listening on %s", addr)
	if errRun := engine.Run(addr); errRun != nil {
		return fmt.Errorf("app: admin API: %w", errRun)
	}
	return nil
}

// RunFTP snapshots the authorization table and serves FTP until the
// context is cancelled or the listener fails.
func (a *App) RunFTP(ctx context.Context) error {
	table, errTable := ftp.BuildAuthTable(ctx, a.store, ftp.DigestPrefixDeriver{})
	if errTable != nil {
		return errTable
	}
	if len(table) == 0 {
		log.Warn("app: no transfer-eligible accounts; FTP server starts with an empty authorization table")
	}

	server := ftp.NewServer(a.cfg.FTP, table)
	go func() {
		<-ctx.Done()
		if errStop := server.Stop(); errStop != nil {
			log.WithError(errStop).Warn("app: ftp server stop failed")
		}
	}()
	return server.Start()
}
