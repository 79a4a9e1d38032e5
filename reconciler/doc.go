/*
Package reconciler converges Cloudflare Hyperdrive configurations onto a
fixed set of logical DSQL endpoints.

Every run re-derives the desired state from scratch: it mints one fresh
DbConnectAdmin token per endpoint and, concurrently, lists the full set of
existing Hyperdrive configs indexed by name. Both must complete before any
mutation. Each endpoint is then upserted independently - an existing config
is edited in place, a missing one is created - so one endpoint's failure
never blocks another's.

Runs are idempotent and safe to repeat on a schedule. A run that fails
partway leaves some endpoints stale; the next run converges them, so no
retry loop or two-phase protocol is needed. The reconciler never deletes
remote configs, and a renamed endpoint therefore leaves its old config
behind.

Overlapping runs from two concurrent invocations are not guarded against
and can race on create. Deployments that cannot guarantee schedule spacing
need an external mutual-exclusion mechanism.
*/
package reconciler
