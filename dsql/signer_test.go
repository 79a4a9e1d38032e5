package dsql

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
)

const testHost = "foobar.dsql.us-east-1.on.aws"

func testSigner(t *testing.T) *Signer {
	t.Helper()
	s := NewSigner(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func testCredentials() interfaces.SigningCredentials {
	return interfaces.SigningCredentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	}
}

func TestTokenShape(t *testing.T) {
	s := testSigner(t)

	token, err := s.Token(context.Background(), testHost, "us-east-1", ActionConnectAdmin, testCredentials())
	require.NoError(t, err)

	assert.False(t, strings.HasPrefix(token, "https://"), "token must not carry a scheme prefix")
	assert.True(t, strings.HasPrefix(token, testHost), "token must start with the cluster host")

	// Re-prepending the scheme must yield a valid URL.
	parsed, err := url.Parse("https://" + token)
	require.NoError(t, err)
	assert.Equal(t, testHost, parsed.Host)

	query := parsed.Query()
	assert.Equal(t, []string{ActionConnectAdmin}, query["Action"])
	assert.Equal(t, []string{"604800"}, query["X-Amz-Expires"])
	assert.NotEmpty(t, query.Get("X-Amz-Signature"))
	assert.Contains(t, query.Get("X-Amz-Credential"), "/dsql/")
	assert.Equal(t, "AWS4-HMAC-SHA256", query.Get("X-Amz-Algorithm"))
}

func TestTokenContainsNoSecret(t *testing.T) {
	s := testSigner(t)
	creds := testCredentials()

	token, err := s.Token(context.Background(), testHost, "us-east-1", ActionConnect, creds)
	require.NoError(t, err)
	assert.NotContains(t, token, creds.SecretAccessKey)
}

func TestSessionTokenParticipatesInSignature(t *testing.T) {
	s := testSigner(t)
	ctx := context.Background()

	withToken := testCredentials()
	withToken.SessionToken = "FwoGZXIvYXdzEBEaDEXAMPLETOKEN"
	otherToken := testCredentials()
	otherToken.SessionToken = "FwoGZXIvYXdzEBEaDOTHERTOKEN"

	first, err := s.Token(ctx, testHost, "us-east-1", ActionConnect, withToken)
	require.NoError(t, err)
	second, err := s.Token(ctx, testHost, "us-east-1", ActionConnect, otherToken)
	require.NoError(t, err)

	sig := func(token string) string {
		parsed, err := url.Parse("https://" + token)
		require.NoError(t, err)
		return parsed.Query().Get("X-Amz-Signature")
	}
	assert.NotEqual(t, sig(first), sig(second), "session token must participate in signing")
}

func TestActionHelpers(t *testing.T) {
	s := testSigner(t)
	ctx := context.Background()

	admin, err := s.AdminToken(ctx, testHost, "us-east-1", testCredentials())
	require.NoError(t, err)
	regular, err := s.ConnectToken(ctx, testHost, "us-east-1", testCredentials())
	require.NoError(t, err)

	adminURL, err := url.Parse("https://" + admin)
	require.NoError(t, err)
	regularURL, err := url.Parse("https://" + regular)
	require.NoError(t, err)
	assert.Equal(t, ActionConnectAdmin, adminURL.Query().Get("Action"))
	assert.Equal(t, ActionConnect, regularURL.Query().Get("Action"))
}

func TestTokenRejectsBadInput(t *testing.T) {
	s := testSigner(t)
	ctx := context.Background()

	_, err := s.Token(ctx, "https://"+testHost, "us-east-1", ActionConnect, testCredentials())
	assert.ErrorIs(t, err, interfaces.ErrInvalidHostname)

	_, err = s.Token(ctx, "", "us-east-1", ActionConnect, testCredentials())
	assert.ErrorIs(t, err, interfaces.ErrInvalidHostname)

	_, err = s.Token(ctx, "not a hostname", "us-east-1", ActionConnect, testCredentials())
	assert.ErrorIs(t, err, interfaces.ErrInvalidHostname)

	_, err = s.Token(ctx, testHost, "", ActionConnect, testCredentials())
	assert.Error(t, err)

	_, err = s.Token(ctx, testHost, "us-east-1", ActionConnect, interfaces.SigningCredentials{})
	assert.ErrorIs(t, err, interfaces.ErrMissingCredentials)
}
