// Package common holds shared constants and the logger setup used by every
// binary in this repository.
package common

// PackageName identifies this service in logs and metrics.
const PackageName = "hyperdrive-dsql-refresher"

// Version is set at build time via -ldflags.
var Version = "dev"
