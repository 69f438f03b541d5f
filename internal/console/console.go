// Package console implements the interactive operator menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/hostsuite/resellerd/internal/account"
	"github.com/hostsuite/resellerd/internal/packages"
	"github.com/hostsuite/resellerd/internal/site"
	"github.com/hostsuite/resellerd/internal/store"
)

// Console drives the operator menu over stdin/stdout.
type Console struct {
	svc      *account.Service
	catalog  *packages.Catalog
	startFTP func(ctx context.Context) error

	in  *bufio.Reader
	out io.Writer

	// readSecret is swapped out in tests; the default reads from the
	// terminal with echo disabled.
	readSecret func() (string, error)
}

// New constructs a Console. startFTP is invoked when the operator picks
// the start-transport option; it blocks until the server stops.
func New(svc *account.Service, catalog *packages.Catalog, startFTP func(ctx context.Context) error) *Console {
	return &Console{
		svc:        svc,
		catalog:    catalog,
		startFTP:   startFTP,
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		readSecret: readSecretFromTerminal,
	}
}

// Run loops the menu until the operator exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== Reseller Hosting Control Panel ===")
	for {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "1. Create hosting account")
		fmt.Fprintln(c.out, "2. List accounts")
		fmt.Fprintln(c.out, "3. Start FTP server")
		fmt.Fprintln(c.out, "4. Exit")

		choice, errRead := c.prompt("Select an option: ")
		if errRead != nil {
			if errors.Is(errRead, io.EOF) {
				return nil
			}
			return errRead
		}

		switch choice {
		case "1":
			if errCreate := c.createAccount(ctx); errCreate != nil {
				if errors.Is(errCreate, io.EOF) {
					return nil
				}
				fmt.Fprintf(c.out, "Error: %v\n", errCreate)
			}
		case "2":
			if errList := c.listAccounts(ctx); errList != nil {
				fmt.Fprintf(c.out, "Error: %v\n", errList)
			}
		case "3":
			fmt.Fprintln(c.out, "Starting FTP server (Ctrl+C to stop)...")
			if errServe := c.startFTP(ctx); errServe != nil {
				fmt.Fprintf(c.out, "FTP server stopped: %v\n", errServe)
			}
		case "4":
			fmt.Fprintln(c.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintln(c.out, "Unknown option.")
		}
	}
}

// createAccount walks the operator through provisioning, re-prompting on
// invalid input for each field.
func (c *Console) createAccount(ctx context.Context) error {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "--- New Hosting Account ---")

	username, errUser := c.promptValidated("Username (3-20 alphanumeric): ", account.ValidateUsername)
	if errUser != nil {
		return errUser
	}

	secret, errSecret := c.promptSecret()
	if errSecret != nil {
		return errSecret
	}

	email, errEmail := c.promptValidated("Email: ", func(v string) error {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			return account.ErrInvalidEmail
		}
		return nil
	})
	if errEmail != nil {
		return errEmail
	}

	siteName, errSite := c.promptValidated("Site name: ", func(v string) error {
		if strings.TrimSpace(v) == "" {
			return site.ErrEmptyName
		}
		return nil
	})
	if errSite != nil {
		return errSite
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Available packages:")
	for _, pkg := range c.catalog.All() {
		names := make([]string, 0, len(pkg.Features))
		for _, feature := range pkg.Features {
			names = append(names, packages.FeatureDisplayName(feature))
		}
		fmt.Fprintf(c.out, "  %s. %s (%s)\n", pkg.Code, pkg.Name, strings.Join(names, ", "))
	}
	packageType, errPkg := c.prompt("Package: ")
	if errPkg != nil {
		return errPkg
	}
	if _, errResolve := c.catalog.Resolve(packageType); errResolve != nil {
		fmt.Fprintf(c.out, "Unknown package %q; using the full suite.\n", packageType)
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "Create account %s for site %q? [y/N] ", username, strings.TrimSpace(siteName))
	confirm, errConfirm := c.readLine()
	if errConfirm != nil {
		return errConfirm
	}
	if !strings.EqualFold(strings.TrimSpace(confirm), "y") {
		fmt.Fprintln(c.out, "Cancelled.")
		return nil
	}

	id, errProvision := c.svc.Provision(ctx, account.ProvisionParams{
		Username:           username,
		Secret:             secret,
		Email:              email,
		SiteName:           siteName,
		PackageType:        packageType,
		DefaultToFullSuite: true,
	})
	if errProvision != nil {
		return describeProvisionError(errProvision)
	}
	fmt.Fprintf(c.out, "Account created (id=%d). Transfer credential is the first 16 characters of the secret digest.\n", id)
	return nil
}

// listAccounts prints the account table, newest first.
func (c *Console) listAccounts(ctx context.Context) error {
	rows, errList := c.svc.ListAccounts(ctx)
	if errList != nil {
		return errList
	}
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No accounts.")
		return nil
	}
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "%-6s %-20s %-10s %-10s %-10s %s\n", "ID", "Username", "Package", "Status", "Transfer", "Site")
	for _, row := range rows {
		transfer := "off"
		if row.TransferEnabled {
			transfer = "on"
		}
		fmt.Fprintf(c.out, "%-6d %-20s %-10s %-10s %-10s %s\n",
			row.ID, row.Username, row.PackageType, row.Status, transfer, row.SitePath)
	}
	return nil
}

// promptSecret reads the secret twice without echo and re-prompts until
// the entries match and meet the minimum length.
func (c *Console) promptSecret() (string, error) {
	for {
		fmt.Fprint(c.out, "Secret (min 6 chars): ")
		first, errFirst := c.readSecret()
		if errFirst != nil {
			return "", errFirst
		}
		fmt.Fprintln(c.out)
		if len(first) < 6 {
			fmt.Fprintln(c.out, "Secret too short.")
			continue
		}
		fmt.Fprint(c.out, "Confirm secret: ")
		second, errSecond := c.readSecret()
		if errSecond != nil {
			return "", errSecond
		}
		fmt.Fprintln(c.out)
		if first != second {
			fmt.Fprintln(c.out, "Secrets do not match.")
			continue
		}
		return first, nil
	}
}

// promptValidated re-prompts until check accepts the value.
func (c *Console) promptValidated(label string, check func(string) error) (string, error) {
	for {
		value, errRead := c.prompt(label)
		if errRead != nil {
			return "", errRead
		}
		if errCheck := check(value); errCheck != nil {
			fmt.Fprintf(c.out, "Invalid: %v\n", errCheck)
			continue
		}
		return value, nil
	}
}

// prompt prints the label and reads one trimmed line.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, errRead := c.readLine()
	if errRead != nil {
		return "", errRead
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) readLine() (string, error) {
	line, errRead := c.in.ReadString('\n')
	if errRead != nil && line == "" {
		return "", errRead
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// describeProvisionError turns sentinel errors into operator-friendly
// messages and passes everything else through.
func describeProvisionError(err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		return errors.New("that username is already taken")
	case errors.Is(err, store.ErrDuplicateSite):
		return errors.New("a site with that name already exists")
	case errors.Is(err, account.ErrProvisioningFailed):
		return errors.New("site directory creation failed; the account was rolled back")
	default:
		return err
	}
}

// readSecretFromTerminal reads a line with echo disabled.
func readSecretFromTerminal() (string, error) {
	raw, errRead := term.ReadPassword(int(syscall.Stdin))
	if errRead != nil {
		return "", errRead
	}
	return string(raw), nil
}
