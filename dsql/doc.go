/*
Package dsql generates IAM authentication tokens for Amazon Aurora DSQL.

DSQL clusters accept no static passwords. A client instead presents a
SigV4-presigned URL for the cluster endpoint as its password, authorizing
either the DbConnect or DbConnectAdmin action. This package builds that URL
with the query-parameter signature variant (the output must be a single
password string, not an Authorization header), pins the expiry to the
service maximum of 604800 seconds, and strips the https:// prefix so the
result can be embedded in a password field next to separately specified
host and port values.

The long-term secret key never appears in the output; only its HMAC-derived
signature does. Tokens are bearer credentials until expiry and must be
minted fresh for every rotation, never cached.
*/
package dsql
