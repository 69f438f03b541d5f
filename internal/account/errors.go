package account

import "errors"

// Validation and orchestration sentinels. Conflict sentinels live in the
// store package; namespace sentinels in the site package.
var (
	// ErrInvalidUsername indicates a username outside 3-20 alphanumerics.
	ErrInvalidUsername = errors.New("username must be 3-20 alphanumeric characters")
	// ErrWeakSecret indicates a secret shorter than 6 characters.
	ErrWeakSecret = errors.New("secret must be at least 6 characters")
	// ErrInvalidEmail indicates a missing or malformed email address.
	ErrInvalidEmail = errors.New("email must be non-empty and contain @")
	// ErrProvisioningFailed indicates namespace creation or seeding failed
	// after the store insert; the compensating rollback already ran.
	ErrProvisioningFailed = errors.New("site provisioning failed")
)
