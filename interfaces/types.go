package interfaces

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// SigningCredentials is the IAM secret material handed to the token signer:
// access key id, secret access key and an optional session token for
// temporary credentials.
type SigningCredentials = aws.Credentials

// EndpointDescriptor describes one logical DSQL endpoint to keep a
// Hyperdrive configuration fresh for. ConfigName is the unique
// reconciliation key; Host and Region identify the target cluster.
type EndpointDescriptor struct {
	ConfigName string
	Host       string
	Region     string
}

// RFC 1123 label-by-label hostname, no scheme, no port.
var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// Validate checks that the descriptor is usable for signing and
// reconciliation. A descriptor that fails validation can never produce a
// valid token, so callers should treat the error as fatal for the endpoint.
func (e EndpointDescriptor) Validate() error {
	if e.ConfigName == "" {
		return errors.New("endpoint has no config name")
	}
	if e.Region == "" {
		return fmt.Errorf("endpoint %s has no region", e.ConfigName)
	}
	if err := ValidateHostname(e.Host); err != nil {
		return fmt.Errorf("endpoint %s: %w", e.ConfigName, err)
	}
	return nil
}

// ValidateHostname rejects strings that are not bare hostnames, including
// anything carrying a scheme prefix or a port.
func ValidateHostname(host string) error {
	if host == "" {
		return ErrInvalidHostname
	}
	if strings.Contains(host, "://") || strings.Contains(host, "/") {
		return fmt.Errorf("%w: %q must not contain a scheme or path", ErrInvalidHostname, host)
	}
	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("%w: %q", ErrInvalidHostname, host)
	}
	return nil
}

// Origin is the connection target stored inside a Hyperdrive configuration.
// Password holds the DSQL auth token on writes; the Cloudflare API never
// returns it on reads.
type Origin struct {
	Scheme   string
	Database string
	User     string
	Host     string
	Port     int
	Password string
}

// RemoteConfig is a Hyperdrive configuration as known to Cloudflare. ID is
// assigned by Cloudflare and is empty for configs that do not exist yet.
type RemoteConfig struct {
	ID     string
	Name   string
	Origin Origin
}
