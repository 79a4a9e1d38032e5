package reconciler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aimoda/hyperdrive-dsql-refresher/hyperdrive"
	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
)

// stubSigner returns a unique token per call so tests can verify that
// upserts carry the freshly minted value.
type stubSigner struct {
	seq  atomic.Int64
	fail error
}

func (s *stubSigner) Token(_ context.Context, host, _, action string, _ interfaces.SigningCredentials) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	n := s.seq.Add(1)
	return fmt.Sprintf("%s/?Action=%s&X-Amz-Signature=fresh-%d", host, action, n), nil
}

func testReconciler(signer interfaces.TokenSigner, service interfaces.HyperdriveService) *Reconciler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	creds := credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", "")
	return New(signer, service, creds, logger)
}

func endpointA() interfaces.EndpointDescriptor {
	return interfaces.EndpointDescriptor{
		ConfigName: "A",
		Host:       "a.dsql.us-east-1.on.aws",
		Region:     "us-east-1",
	}
}

func endpointB() interfaces.EndpointDescriptor {
	return interfaces.EndpointDescriptor{
		ConfigName: "B",
		Host:       "b.dsql.us-west-2.on.aws",
		Region:     "us-west-2",
	}
}

func TestReconcileNoEndpoints(t *testing.T) {
	service := new(hyperdrive.MockHyperdriveService)
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig{}, nil)

	err := testReconciler(&stubSigner{}, service).Reconcile(context.Background(), nil)
	require.NoError(t, err)

	service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	service.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileEditsExisting(t *testing.T) {
	existing := interfaces.RemoteConfig{
		ID:   "cfg-1",
		Name: "A",
		Origin: interfaces.Origin{
			Scheme: "postgres", Database: "postgres", User: "admin",
			Host: "stale.dsql.us-east-1.on.aws", Port: 5432,
		},
	}

	service := new(hyperdrive.MockHyperdriveService)
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig{existing}, nil)
	service.On("Edit", mock.Anything, "cfg-1", mock.MatchedBy(func(origin interfaces.Origin) bool {
		return origin.Host == "a.dsql.us-east-1.on.aws" &&
			origin.Password != "" &&
			origin.Password != existing.Origin.Password
	})).Return(existing, nil).Once()

	err := testReconciler(&stubSigner{}, service).Reconcile(context.Background(), []interfaces.EndpointDescriptor{endpointA()})
	require.NoError(t, err)

	service.AssertExpectations(t)
	service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileCreatesMissing(t *testing.T) {
	service := new(hyperdrive.MockHyperdriveService)
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig{}, nil)
	service.On("Create", mock.Anything, "B", mock.MatchedBy(func(origin interfaces.Origin) bool {
		return origin.Scheme == "postgres" &&
			origin.Database == "postgres" &&
			origin.User == "admin" &&
			origin.Port == 5432 &&
			origin.Host == "b.dsql.us-west-2.on.aws" &&
			origin.Password != ""
	})).Return(interfaces.RemoteConfig{ID: "cfg-new", Name: "B"}, nil).Once()

	err := testReconciler(&stubSigner{}, service).Reconcile(context.Background(), []interfaces.EndpointDescriptor{endpointB()})
	require.NoError(t, err)

	service.AssertExpectations(t)
	service.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileIsIdempotent(t *testing.T) {
	created := interfaces.RemoteConfig{ID: "cfg-b", Name: "B"}

	service := new(hyperdrive.MockHyperdriveService)
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig{}, nil).Once()
	service.On("Create", mock.Anything, "B", mock.Anything).Return(created, nil).Once()
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig{created}, nil).Once()
	service.On("Edit", mock.Anything, "cfg-b", mock.Anything).Return(created, nil).Once()

	r := testReconciler(&stubSigner{}, service)
	require.NoError(t, r.Reconcile(context.Background(), []interfaces.EndpointDescriptor{endpointB()}))
	require.NoError(t, r.Reconcile(context.Background(), []interfaces.EndpointDescriptor{endpointB()}))

	// The second run must edit, never create a duplicate.
	service.AssertExpectations(t)
	service.AssertNumberOfCalls(t, "Create", 1)
}

func TestListFailurePreventsMutation(t *testing.T) {
	service := new(hyperdrive.MockHyperdriveService)
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig(nil), errors.New("api unreachable"))

	err := testReconciler(&stubSigner{}, service).Reconcile(context.Background(), []interfaces.EndpointDescriptor{endpointA()})
	require.Error(t, err)

	var listErr *ListError
	assert.ErrorAs(t, err, &listErr)
	service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	service.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSigningFailureAbortsUpsertPhase(t *testing.T) {
	service := new(hyperdrive.MockHyperdriveService)
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig{}, nil)

	signer := &stubSigner{fail: interfaces.ErrMissingCredentials}
	err := testReconciler(signer, service).Reconcile(context.Background(), []interfaces.EndpointDescriptor{endpointA(), endpointB()})
	require.Error(t, err)

	var signErr *SigningError
	assert.ErrorAs(t, err, &signErr)
	assert.ErrorIs(t, err, interfaces.ErrMissingCredentials)
	service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	service.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpsertFailuresAreIsolated(t *testing.T) {
	existing := interfaces.RemoteConfig{ID: "cfg-a", Name: "A"}

	service := new(hyperdrive.MockHyperdriveService)
	service.On("List", mock.Anything).Return([]interfaces.RemoteConfig{existing}, nil)
	service.On("Edit", mock.Anything, "cfg-a", mock.Anything).
		Return(interfaces.RemoteConfig{}, errors.New("origin rejected")).Once()
	service.On("Create", mock.Anything, "B", mock.Anything).
		Return(interfaces.RemoteConfig{ID: "cfg-b", Name: "B"}, nil).Once()

	err := testReconciler(&stubSigner{}, service).Reconcile(context.Background(), []interfaces.EndpointDescriptor{endpointA(), endpointB()})
	require.Error(t, err)

	// B's create proceeded despite A's edit failing.
	service.AssertExpectations(t)

	var upsertErr *UpsertError
	require.ErrorAs(t, err, &upsertErr)
	assert.Equal(t, "A", upsertErr.ConfigName)
}
