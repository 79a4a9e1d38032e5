// Package flags holds the CLI flag definitions and parsing helpers shared
// by the refresher commands.
package flags

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/aimoda/hyperdrive-dsql-refresher/common"
	"github.com/aimoda/hyperdrive-dsql-refresher/httpserver"
	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

// ParseEndpoints converts --endpoint values of the form name=host@region
// into validated endpoint descriptors. Config names must be unique since
// they are the reconciliation key.
func ParseEndpoints(values []string) ([]interfaces.EndpointDescriptor, error) {
	endpoints := make([]interfaces.EndpointDescriptor, 0, len(values))
	seen := make(map[string]bool, len(values))

	for _, value := range values {
		name, target, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid endpoint %q: expected name=host@region", value)
		}
		host, region, ok := strings.Cut(target, "@")
		if !ok {
			return nil, fmt.Errorf("invalid endpoint %q: expected name=host@region", value)
		}

		endpoint := interfaces.EndpointDescriptor{
			ConfigName: strings.TrimSpace(name),
			Host:       strings.TrimSpace(host),
			Region:     strings.TrimSpace(region),
		}
		if err := endpoint.Validate(); err != nil {
			return nil, err
		}
		if seen[endpoint.ConfigName] {
			return nil, fmt.Errorf("duplicate endpoint config name %q", endpoint.ConfigName)
		}
		seen[endpoint.ConfigName] = true
		endpoints = append(endpoints, endpoint)
	}

	return endpoints, nil
}

var EndpointFlag = &cli.StringSliceFlag{
	Name:     "endpoint",
	Required: true,
	EnvVars:  []string{"REFRESHER_ENDPOINTS"},
	Usage:    "DSQL endpoint to manage, as name=host@region (repeatable). e.g. prod-east=abc123.dsql.us-east-1.on.aws@us-east-1",
}

var CloudflareAccountFlag = &cli.StringFlag{
	Name:     "cloudflare-account-id",
	Required: true,
	EnvVars:  []string{"CLOUDFLARE_ACCOUNT_ID"},
	Usage:    "Cloudflare account the Hyperdrive configs live in",
}

var CloudflareTokenFlag = &cli.StringFlag{
	Name:     "cloudflare-api-token",
	Required: true,
	EnvVars:  []string{"CLOUDFLARE_API_TOKEN"},
	Usage:    "Cloudflare API token with Hyperdrive edit permission",
}

var AWSAccessKeyFlag = &cli.StringFlag{
	Name:    "aws-access-key-id",
	EnvVars: []string{"AWS_ACCESS_KEY_ID"},
	Usage:   "IAM access key id for token signing; falls back to the SDK default credential chain when unset",
}

var AWSSecretKeyFlag = &cli.StringFlag{
	Name:    "aws-secret-access-key",
	EnvVars: []string{"AWS_SECRET_ACCESS_KEY"},
	Usage:   "IAM secret access key for token signing",
}

var AWSSessionTokenFlag = &cli.StringFlag{
	Name:    "aws-session-token",
	EnvVars: []string{"AWS_SESSION_TOKEN"},
	Usage:   "optional session token for temporary IAM credentials",
}

var IntervalFlag = &cli.DurationFlag{
	Name:  "interval",
	Value: time.Hour,
	Usage: "interval between reconciliation runs",
}

var RunTimeoutFlag = &cli.DurationFlag{
	Name:  "run-timeout",
	Value: 2 * time.Minute,
	Usage: "deadline for a single reconciliation run",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for HTTP",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}
var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var CommonFlags = []cli.Flag{
	EndpointFlag,
	CloudflareAccountFlag,
	CloudflareTokenFlag,
	AWSAccessKeyFlag,
	AWSSecretKeyFlag,
	AWSSessionTokenFlag,
	RunTimeoutFlag,
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}
