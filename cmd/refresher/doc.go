// Package main (cmd/refresher) keeps Cloudflare Hyperdrive configurations
// stocked with fresh Amazon Aurora DSQL authentication tokens.
//
// DSQL accepts no static passwords; clients authenticate with short-lived
// SigV4-presigned tokens instead. Hyperdrive, however, stores a fixed
// password per configuration. This daemon bridges the two: on a fixed
// interval it signs a fresh DbConnectAdmin token for every configured DSQL
// endpoint and writes it into the matching Hyperdrive config's origin,
// creating the config on first sight and editing it thereafter.
//
// Two commands are provided:
//
//   - run:  the long-running daemon; reconciles immediately, then on every
//     tick, and serves health probes and Prometheus metrics over HTTP.
//   - once: a single reconciliation pass, for cron-style deployments and
//     manual verification. Exits non-zero if any endpoint failed.
//
// Failed runs are not retried internally; every run independently
// re-derives the desired state, so the next scheduled run converges any
// endpoint left stale.
package main
