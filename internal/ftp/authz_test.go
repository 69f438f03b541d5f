package ftp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hostsuite/resellerd/internal/db"
	"github.com/hostsuite/resellerd/internal/models"
	"github.com/hostsuite/resellerd/internal/store"
)

func TestDigestPrefixDerive(t *testing.T) {
	digest := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	cred, errDerive := DigestPrefixDeriver{}.Derive(digest)
	if errDerive != nil {
		t.Fatalf("Derive failed: %v", errDerive)
	}
	if cred != "0123456789abcdef" {
		t.Fatalf("unexpected credential: %s", cred)
	}

	short, errDerive := DigestPrefixDeriver{Length: 8}.Derive(digest)
	if errDerive != nil {
		t.Fatalf("Derive with length failed: %v", errDerive)
	}
	if short != "01234567" {
		t.Fatalf("unexpected credential: %s", short)
	}
}

func TestDigestPrefixDeriveRejectsBadDigests(t *testing.T) {
	if _, errDerive := (DigestPrefixDeriver{}).Derive("abc123"); errDerive == nil {
		t.Fatal("expected error for short digest")
	}
	if _, errDerive := (DigestPrefixDeriver{}).Derive("XYZ3456789ABCDEF0123456789abcdef"); errDerive == nil {
		t.Fatal("expected error for non-hex digest")
	}
}

func newTestAccounts(t *testing.T) *store.AccountStore {
	t.Helper()
	conn, errOpen := db.Open("file:" + filepath.Join(t.TempDir(), "ftp_test.db"))
	if errOpen != nil {
		t.Fatalf("open test database: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate test database: %v", errMigrate)
	}
	return store.NewAccountStore(conn)
}

func TestBuildAuthTable(t *testing.T) {
	accounts := newTestAccounts(t)
	ctx := context.Background()

	goodDigest := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	if _, errCreate := accounts.Create(ctx, &models.Account{
		Username:        "alice",
		SecretDigest:    goodDigest,
		Email:           "alice@example.com",
		SiteName:        "Alice",
		PackageType:     "1",
		SitePath:        "/sites/alice",
		TransferEnabled: true,
		Status:          models.StatusActive,
	}, []string{"forum"}); errCreate != nil {
		t.Fatalf("Create failed: %v", errCreate)
	}

	// Malformed digest; must be skipped, not fatal.
	if _, errCreate := accounts.Create(ctx, &models.Account{
		Username:        "mallory",
		SecretDigest:    "not-a-digest",
		Email:           "mallory@example.com",
		SiteName:        "Mallory",
		PackageType:     "1",
		SitePath:        "/sites/mallory",
		TransferEnabled: true,
		Status:          models.StatusActive,
	}, []string{"forum"}); errCreate != nil {
		t.Fatalf("Create failed: %v", errCreate)
	}

	table, errBuild := BuildAuthTable(ctx, accounts, DigestPrefixDeriver{})
	if errBuild != nil {
		t.Fatalf("BuildAuthTable failed: %v", errBuild)
	}
	if len(table) != 1 {
		t.Fatalf("expected 1 table entry, got %d", len(table))
	}

	cred, ok := table["alice"]
	if !ok {
		t.Fatal("missing entry for alice")
	}
	if cred.Password != goodDigest[:16] {
		t.Fatalf("unexpected credential: %s", cred.Password)
	}
	if cred.HomeDir != "/sites/alice" {
		t.Fatalf("unexpected home dir: %s", cred.HomeDir)
	}
	if cred.Perms != DefaultPerms {
		t.Fatalf("unexpected perms: %s", cred.Perms)
	}
}

func TestIsLowerHex(t *testing.T) {
	if !isLowerHex("0123456789abcdef") {
		t.Fatal("lowercase hex should pass")
	}
	for _, bad := range []string{"", "ABCDEF", "012g", "01 23"} {
		if isLowerHex(bad) {
			t.Fatalf("%q should not pass", bad)
		}
	}
}
