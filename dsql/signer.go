package dsql

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
	"github.com/aimoda/hyperdrive-dsql-refresher/metrics"
)

const (
	// ServiceName is the SigV4 signing service identifier for DSQL.
	ServiceName = "dsql"

	// ActionConnect authorizes a regular database connection.
	ActionConnect = "DbConnect"

	// ActionConnectAdmin authorizes an administrative connection as the
	// "admin" database role.
	ActionConnectAdmin = "DbConnectAdmin"

	// TokenExpirySeconds is the maximum token lifetime DSQL accepts
	// (7 days). Larger values are rejected by the service, so every token
	// is signed with exactly this expiry.
	TokenExpirySeconds = 604800
)

// SHA-256 of an empty payload; presigned GET requests carry no body.
var emptyPayloadHash = func() string {
	sum := sha256.Sum256(nil)
	return hex.EncodeToString(sum[:])
}()

// Signer mints DSQL authentication tokens. It implements
// interfaces.TokenSigner.
type Signer struct {
	signer *v4.Signer
	log    *slog.Logger

	// now is overridable in tests to pin the signing time.
	now func() time.Time
}

// NewSigner creates a token signer.
func NewSigner(log *slog.Logger) *Signer {
	return &Signer{
		signer: v4.NewSigner(),
		log:    log,
		now:    time.Now,
	}
}

// Token signs action for the cluster at host in region and returns the
// presigned URL with the https:// prefix stripped. The region must be the
// cluster's own region, which is not necessarily the caller's.
//
// Signing fails if host is not a bare valid hostname or the credentials
// carry no key material; both are fatal for the endpoint since a malformed
// token can never authenticate.
func (s *Signer) Token(ctx context.Context, host, region, action string, creds interfaces.SigningCredentials) (string, error) {
	if err := interfaces.ValidateHostname(host); err != nil {
		return "", err
	}
	if region == "" {
		return "", fmt.Errorf("no signing region for host %s", host)
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return "", interfaces.ErrMissingCredentials
	}

	query := url.Values{}
	query.Set("Action", action)
	query.Set("X-Amz-Expires", strconv.Itoa(TokenExpirySeconds))

	endpoint := url.URL{
		Scheme:   "https",
		Host:     host,
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("building request to sign: %w", err)
	}

	signed, _, err := s.signer.PresignHTTP(ctx, creds, req, emptyPayloadHash, ServiceName, region, s.now())
	if err != nil {
		return "", fmt.Errorf("presigning %s for %s: %w", action, host, err)
	}

	metrics.TokensSigned.Inc()
	s.log.Debug("signed DSQL token",
		slog.String("host", host),
		slog.String("region", region),
		slog.String("action", action),
	)

	return strings.TrimPrefix(signed, "https://"), nil
}

// AdminToken signs a DbConnectAdmin token for host.
func (s *Signer) AdminToken(ctx context.Context, host, region string, creds interfaces.SigningCredentials) (string, error) {
	return s.Token(ctx, host, region, ActionConnectAdmin, creds)
}

// ConnectToken signs a DbConnect token for host.
func (s *Signer) ConnectToken(ctx context.Context, host, region string, creds interfaces.SigningCredentials) (string, error) {
	return s.Token(ctx, host, region, ActionConnect, creds)
}
