package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/urfave/cli/v2"

	"github.com/aimoda/hyperdrive-dsql-refresher/cmd/flags"
	"github.com/aimoda/hyperdrive-dsql-refresher/common"
	"github.com/aimoda/hyperdrive-dsql-refresher/dsql"
	"github.com/aimoda/hyperdrive-dsql-refresher/httpserver"
	"github.com/aimoda/hyperdrive-dsql-refresher/hyperdrive"
	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
	"github.com/aimoda/hyperdrive-dsql-refresher/reconciler"
)

func main() {
	app := &cli.App{
		Name:  common.PackageName,
		Usage: "Keep Hyperdrive configurations stocked with fresh DSQL auth tokens",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Reconcile on a fixed interval and serve health/metrics endpoints",
				Flags: append([]cli.Flag{
					flags.IntervalFlag,
					flags.ListenAddrFlag,
					flags.MetricsAddrFlag,
					flags.PprofFlag,
				}, flags.CommonFlags...),
				Action: runDaemon,
			},
			{
				Name:   "once",
				Usage:  "Perform a single reconciliation pass and exit",
				Flags:  flags.CommonFlags,
				Action: runOnce,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(cCtx *cli.Context, logger *slog.Logger) (*reconciler.Reconciler, []interfaces.EndpointDescriptor, error) {
	endpoints, err := flags.ParseEndpoints(cCtx.StringSlice(flags.EndpointFlag.Name))
	if err != nil {
		return nil, nil, err
	}

	creds, err := signingCredentials(cCtx)
	if err != nil {
		return nil, nil, err
	}

	hyperdriveClient := &hyperdrive.Client{
		AccountID: cCtx.String(flags.CloudflareAccountFlag.Name),
		APIToken:  cCtx.String(flags.CloudflareTokenFlag.Name),
	}
	signer := dsql.NewSigner(logger)

	return reconciler.New(signer, hyperdriveClient, creds, logger), endpoints, nil
}

// signingCredentials prefers explicitly supplied keys and falls back to the
// SDK default chain (env, shared config, IMDS, web identity).
func signingCredentials(cCtx *cli.Context) (aws.CredentialsProvider, error) {
	accessKey := cCtx.String(flags.AWSAccessKeyFlag.Name)
	secretKey := cCtx.String(flags.AWSSecretKeyFlag.Name)
	if accessKey != "" && secretKey != "" {
		return credentials.NewStaticCredentialsProvider(accessKey, secretKey, cCtx.String(flags.AWSSessionTokenFlag.Name)), nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(cCtx.Context)
	if err != nil {
		return nil, fmt.Errorf("loading AWS credentials: %w", err)
	}
	return cfg.Credentials, nil
}

func runDaemon(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	r, endpoints, err := setup(cCtx, logger)
	if err != nil {
		logger.Error("Failed to configure reconciler", "err", err)
		return err
	}

	server, err := httpserver.New(flags.ConfigureServer(cCtx, logger))
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}
	server.RunInBackground()

	interval := cCtx.Duration(flags.IntervalFlag.Name)
	runTimeout := cCtx.Duration(flags.RunTimeoutFlag.Name)
	logger.Info("Refresher started", "endpoints", len(endpoints), "interval", interval.String())

	ctx, cancel := context.WithCancel(cCtx.Context)
	defer cancel()

	go func() {
		reconcile(ctx, r, endpoints, runTimeout, logger)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reconcile(ctx, r, endpoints, runTimeout, logger)
			}
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
	logger.Info("Shutdown signal received")

	cancel()
	server.Shutdown()
	logger.Info("Shutdown complete")
	return nil
}

func runOnce(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	r, endpoints, err := setup(cCtx, logger)
	if err != nil {
		logger.Error("Failed to configure reconciler", "err", err)
		return err
	}

	ctx, cancel := context.WithTimeout(cCtx.Context, cCtx.Duration(flags.RunTimeoutFlag.Name))
	defer cancel()

	if err := r.Reconcile(ctx, endpoints); err != nil {
		logger.Error("Reconciliation failed", "err", err)
		return err
	}
	logger.Info("Reconciliation complete", "endpoints", len(endpoints))
	return nil
}

func reconcile(ctx context.Context, r *reconciler.Reconciler, endpoints []interfaces.EndpointDescriptor, timeout time.Duration, logger *slog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := r.Reconcile(runCtx, endpoints); err != nil {
		logger.Error("Reconciliation failed", "err", err, "duration", time.Since(start).String())
		return
	}
	logger.Info("Reconciliation complete", "endpoints", len(endpoints), "duration", time.Since(start).String())
}
