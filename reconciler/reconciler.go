package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"golang.org/x/sync/errgroup"

	"github.com/aimoda/hyperdrive-dsql-refresher/dsql"
	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
	"github.com/aimoda/hyperdrive-dsql-refresher/metrics"
)

// DSQL origin values shared by every managed config. The password is the
// per-endpoint auth token.
const (
	originScheme   = "postgres"
	originDatabase = "postgres"
	originUser     = "admin"
	originPort     = 5432
)

// Reconciler upserts one Hyperdrive config per configured endpoint,
// injecting a freshly signed DSQL admin token as the origin password.
type Reconciler struct {
	signer     interfaces.TokenSigner
	hyperdrive interfaces.HyperdriveService
	creds      aws.CredentialsProvider
	log        *slog.Logger
}

// New creates a reconciler. Credentials are resolved through the provider
// once per run, so temporary credentials refresh between runs.
func New(signer interfaces.TokenSigner, service interfaces.HyperdriveService, creds aws.CredentialsProvider, log *slog.Logger) *Reconciler {
	return &Reconciler{
		signer:     signer,
		hyperdrive: service,
		creds:      creds,
		log:        log,
	}
}

// upsertDecision is the two-variant outcome of matching an endpoint against
// the remote listing: either a config with that name exists (carrying its
// remote id) or one must be created.
type upsertDecision struct {
	exists bool
	id     string
}

func decide(index map[string]interfaces.RemoteConfig, name string) upsertDecision {
	existing, ok := index[name]
	if !ok {
		return upsertDecision{}
	}
	return upsertDecision{exists: true, id: existing.ID}
}

// Reconcile converges the remote config set onto endpoints. It is
// idempotent and safe to invoke repeatedly on a schedule.
//
// Token generation and the remote listing run concurrently and are joined
// before any mutation; a failure in either aborts the run with no write
// issued. Upserts then run concurrently with per-endpoint failure
// isolation, and the returned error joins every endpoint's failure.
func (r *Reconciler) Reconcile(ctx context.Context, endpoints []interfaces.EndpointDescriptor) error {
	creds, err := r.creds.Retrieve(ctx)
	if err != nil {
		metrics.PhaseFailures.WithLabelValues("signing").Inc()
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("retrieving signing credentials: %w", err)
	}

	tokens := make([]string, len(endpoints))
	var index map[string]interfaces.RemoteConfig

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		configs, err := r.hyperdrive.List(gctx)
		if err != nil {
			return &ListError{Err: err}
		}
		// Duplicate names should not exist remotely; last entry wins.
		index = make(map[string]interfaces.RemoteConfig, len(configs))
		for _, cfg := range configs {
			index[cfg.Name] = cfg
		}
		return nil
	})
	for i, endpoint := range endpoints {
		g.Go(func() error {
			token, err := r.signer.Token(gctx, endpoint.Host, endpoint.Region, dsql.ActionConnectAdmin, creds)
			if err != nil {
				return &SigningError{ConfigName: endpoint.ConfigName, Err: err}
			}
			tokens[i] = token
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var listErr *ListError
		if errors.As(err, &listErr) {
			metrics.PhaseFailures.WithLabelValues("list").Inc()
		} else {
			metrics.PhaseFailures.WithLabelValues("signing").Inc()
		}
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		return err
	}

	var wg sync.WaitGroup
	upsertErrs := make([]error, len(endpoints))
	for i, endpoint := range endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			upsertErrs[i] = r.upsert(ctx, endpoint, tokens[i], decide(index, endpoint.ConfigName))
		}()
	}
	wg.Wait()

	if err := errors.Join(upsertErrs...); err != nil {
		metrics.PhaseFailures.WithLabelValues("upsert").Inc()
		metrics.ReconcileRuns.WithLabelValues("error").Inc()
		return err
	}

	metrics.ReconcileRuns.WithLabelValues("success").Inc()
	return nil
}

func (r *Reconciler) upsert(ctx context.Context, endpoint interfaces.EndpointDescriptor, token string, decision upsertDecision) error {
	origin := interfaces.Origin{
		Scheme:   originScheme,
		Database: originDatabase,
		User:     originUser,
		Host:     endpoint.Host,
		Port:     originPort,
		Password: token,
	}

	logger := r.log.With(
		slog.String("config", endpoint.ConfigName),
		slog.String("host", endpoint.Host),
		slog.String("region", endpoint.Region),
	)

	if decision.exists {
		if _, err := r.hyperdrive.Edit(ctx, decision.id, origin); err != nil {
			metrics.Upserts.WithLabelValues("edit", "error").Inc()
			logger.Error("failed to edit hyperdrive config", "id", decision.id, "err", err)
			return &UpsertError{ConfigName: endpoint.ConfigName, Operation: "editing", Err: err}
		}
		metrics.Upserts.WithLabelValues("edit", "success").Inc()
		logger.Info("refreshed hyperdrive config", "id", decision.id)
		return nil
	}

	created, err := r.hyperdrive.Create(ctx, endpoint.ConfigName, origin)
	if err != nil {
		metrics.Upserts.WithLabelValues("create", "error").Inc()
		logger.Error("failed to create hyperdrive config", "err", err)
		return &UpsertError{ConfigName: endpoint.ConfigName, Operation: "creating", Err: err}
	}
	metrics.Upserts.WithLabelValues("create", "success").Inc()
	logger.Info("created hyperdrive config", "id", created.ID)
	return nil
}
