/*
Package httpserver implements the service's HTTP surface.

The refresher serves no request-driven API: reconciliation is driven by the
internal schedule, not by inbound traffic. Every route therefore answers
with a fixed 404 response, with two ops-only exceptions - /livez and
/readyz for orchestrator probes. Prometheus metrics are served on a
separate listener so scrapes never reach the public port.

The server supports graceful shutdown and logs requests through the shared
structured logger.
*/
package httpserver
