package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrInvalidHostname indicates a target host that is not a bare,
	// syntactically valid hostname.
	ErrInvalidHostname = errors.New("invalid hostname")

	// ErrMissingCredentials indicates signing credentials without an access
	// key id or secret access key.
	ErrMissingCredentials = errors.New("missing signing credentials")

	// ErrConfigNotFound indicates an edit against a Hyperdrive config id the
	// remote system does not know.
	ErrConfigNotFound = errors.New("hyperdrive config not found")
)

// TokenSigner derives a time-bounded DSQL authentication token from IAM
// credentials. The returned token is the SigV4-presigned URL for the target
// host with the https:// scheme stripped, usable directly as a database
// password until it expires.
type TokenSigner interface {
	// Token signs the given action for host in region. Signing performs no
	// network I/O; the context only bounds credential resolution done by
	// the underlying signer.
	Token(ctx context.Context, host, region, action string, creds SigningCredentials) (string, error)
}

// HyperdriveService is the remote configuration store owned by Cloudflare.
// The reconciler only lists, creates and edits configs, never deletes them.
type HyperdriveService interface {
	// List enumerates every Hyperdrive config in the account, following
	// pagination to completion.
	List(ctx context.Context) ([]RemoteConfig, error)

	// Create adds a new config under name. The remote system assigns the id.
	Create(ctx context.Context, name string, origin Origin) (RemoteConfig, error)

	// Edit replaces the origin of the config with the given id, leaving its
	// name unchanged.
	Edit(ctx context.Context, id string, origin Origin) (RemoteConfig, error)
}
