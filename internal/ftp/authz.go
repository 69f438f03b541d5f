// Package ftp builds the transfer authorization table from the identity
// store and runs the FTP transport service that consumes it.
package ftp

import (
	"context"
	"errors"
	"fmt"

	"github.com/hostsuite/resellerd/internal/store"

	log "github.com/sirupsen/logrus"
)

// DefaultPerms is the permission set granted to every transfer login.
// Full access within the home jail; the jail itself is the isolation
// boundary.
const DefaultPerms = "elradfmwMT"

// defaultCredentialLength is the derived transfer credential length.
const defaultCredentialLength = 16

// Credential is one authorization table entry.
type Credential struct {
	Password string // Derived transfer credential.
	HomeDir  string // Home directory jail for the session.
	Perms    string // Permission set, advisory for the transport engine.
}

// AuthTable maps transfer usernames to their credentials. The table is
// immutable for the lifetime of a running transport server; picking up
// newly provisioned accounts requires a restart.
type AuthTable map[string]Credential

// CredentialDeriver turns a stored secret digest into the credential the
// transport engine checks at login. Implementations sit behind this
// interface so a transport supporting real digest verification can replace
// the prefix shim without touching the store or the account service.
type CredentialDeriver interface {
	Derive(digest string) (string, error)
}

// DigestPrefixDeriver derives the transfer credential as a fixed-length
// prefix of the stored hex digest. This is a deliberate weakening of
// secrecy relative to the original secret: the transport engine needs a
// short, directly usable credential, not a one-way hash. Operators are
// warned at table build time that this is a degraded-security mode.
type DigestPrefixDeriver struct {
	Length int // Prefix length; defaults to 16.
}

// Derive returns the digest prefix, rejecting digests that are too short
// or not lowercase hex.
func (d DigestPrefixDeriver) Derive(digest string) (string, error) {
	n := d.Length
	if n <= 0 {
		n = defaultCredentialLength
	}
	if len(digest) < n {
		return "", fmt.Errorf("digest too short: %d < %d", len(digest), n)
	}
	if !isLowerHex(digest) {
		return "", errors.New("digest is not lowercase hex")
	}
	return digest[:n], nil
}

// BuildAuthTable snapshots active, transfer-enabled accounts into an
// authorization table. Individual malformed records are skipped with a
// warning so one bad row cannot keep the transport service from starting;
// only total store unavailability is fatal.
func BuildAuthTable(ctx context.Context, accounts *store.AccountStore, deriver CredentialDeriver) (AuthTable, error) {
	records, errList := accounts.ListTransferEligible(ctx)
	if errList != nil {
		return nil, fmt.Errorf("ftp: build auth table: %w", errList)
	}

	log.Warn("ftp: transfer credentials are derived from stored digests; this is a degraded-security mode, not password authentication")

	table := make(AuthTable, len(records))
	for _, record := range records {
		password, errDerive := deriver.Derive(record.SecretDigest)
		if errDerive != nil {
			log.WithError(errDerive).Warnf("ftp: skipping user %s: cannot derive transfer credential", record.Username)
			continue
		}
		table[record.Username] = Credential{
			Password: password,
			HomeDir:  record.SitePath,
			Perms:    DefaultPerms,
		}
		log.Infof("ftp: added transfer user %s -> %s", record.Username, record.SitePath)
	}
	return table, nil
}

// isLowerHex reports whether s consists only of [0-9a-f].
func isLowerHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return s != ""
}
