/*
Package hyperdrive implements a client for the Cloudflare Hyperdrive
configuration API.

Hyperdrive is Cloudflare's connection-pooling proxy for Postgres. Each
Hyperdrive configuration tells the proxy how to reach one origin database:
host, port, user, database and password. This client covers the three
operations the reconciler needs - listing every configuration in an
account, creating one and editing the origin of an existing one - over the
standard Cloudflare v4 API envelope with bearer-token authentication.

Listing follows result_info pagination to completion so callers always see
the full configuration set. Deletion is intentionally absent; configs are
owned by the remote system and this service never removes them.

MockHyperdriveService provides a testify-based mock of the same contract
for reconciler tests.
*/
package hyperdrive
