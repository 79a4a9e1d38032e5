/*
Package interfaces defines the core types and service contracts shared by the
token signer, the Hyperdrive API client and the reconciler. It provides the
contract between the components without implementation details.

The central types are:

  - EndpointDescriptor - a logical DSQL endpoint (config name, host, region)
    supplied by configuration and immutable for a run.
  - RemoteConfig / Origin - a Hyperdrive configuration as the Cloudflare API
    reports it; RemoteConfig.Name is the reconciliation key, RemoteConfig.ID
    is assigned remotely and only exists for configs already present there.
  - SigningCredentials - long-lived (or temporary) IAM secret material,
    passed through to the signer and never persisted.

The two service contracts, TokenSigner and HyperdriveService, decouple the
reconciler from the AWS signing implementation and from the Cloudflare HTTP
client so tests can substitute either side.
*/
package interfaces
