/*
Package metrics provides Prometheus metrics and health reporting for the
notary.

Notary operations (all but GetState and GetAccount) and the v2 security
module's key generation, rotation, signing and erasure are counted, labeled
by operation name and result, alongside totals for notarized documents and
key rotations. Digesting and signature verification in the security module
are not counted. A health checker tracks per-component status and serves it next
to the metrics endpoint.

# Architecture

	┌───────────────────── METRICS SYSTEM ─────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │          Prometheus Registry               │           │
	│  │  - collectors registered in init()         │           │
	│  │  - default registry, promhttp exposition   │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │               Collectors                   │           │
	│  │  notary_operations_total      (op, result) │           │
	│  │  notary_ssm_operations_total  (op, result) │           │
	│  │  notary_documents_notarized_total          │           │
	│  │  notary_key_rotations_total                │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │             Health Checker                 │           │
	│  │  - RegisterComponent(name, healthy, msg)   │           │
	│  │  - overall status: healthy / unhealthy     │           │
	│  │  - uptime since process start              │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │              HTTP Endpoints                │           │
	│  │  GET /metrics   Prometheus exposition      │           │
	│  │  GET /healthz   JSON status, 503 when      │           │
	│  │                 any component is unhealthy │           │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

# Core Components

Operation counters:
  - NotaryOperationsTotal and SSMOperationsTotal carry an operation label
    (generateKey, signBytes, ...) and a result label (ok or error)
  - RecordNotaryOperation and RecordSSMOperation derive the result label
    from the returned error; the notary and security module call them from
    a defer so every exit path is counted

Domain counters:
  - DocumentsNotarized counts successfully produced notarized documents
  - KeyRotations counts completed RefreshKey operations

Health checker:
  - Components report their status with RegisterComponent; repeating the
    call updates it
  - GetHealth aggregates: any unhealthy component makes the whole status
    unhealthy
  - HealthHandler serves the aggregate as JSON, 503 when unhealthy

# Usage

Serving the endpoints (the CLI does this when --metrics-addr is set):

	go func() {
		if err := metrics.Serve(":9090"); err != nil {
			log.Logger.Error().Err(err).Msg("metrics endpoint failed")
		}
	}()

Mounting on an existing mux instead:

	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/healthz", metrics.HealthHandler())

Recording an operation (how the notary instruments itself):

	func (n *Notary) GenerateKey() (result *component.Catalog, err error) {
		defer func() { metrics.RecordNotaryOperation("generateKey", err) }()
		...
	}

# Example Queries

Error rate across all notary operations:

	rate(notary_operations_total{result="error"}[5m])

Signing volume, split by outcome:

	sum by (result) (rate(notary_ssm_operations_total{operation="signBytes"}[5m]))

Rotations over the last day:

	increase(notary_key_rotations_total[24h])

# Alerting

Suggested starting points:

Operation failures:
  - Expression: rate(notary_operations_total{result="error"}[5m]) > 0
  - Meaning: some lifecycle or verification operation is failing; check
    the error logs for the exception kind

Endpoint down:
  - Expression: up{job="notary"} == 0
  - Meaning: the metrics endpoint stopped answering; the process may have
    exited

# Integration Points

This package is used by:

  - pkg/notary: records every facade operation except GetState and
    GetAccount, notarized documents and key rotations
  - pkg/ssm: records the v2 module's GenerateKeys, RotateKeys, SignBytes and
    EraseKeys
  - cmd/notary: serves /metrics and /healthz when --metrics-addr is set

# Design Notes

Collectors are package level and registered once in init(), so importing
any instrumented package is enough to make the metrics visible; there is no
wiring step to forget. Counters only ever go up: state (which lifecycle
phase the notary is in) belongs to the status command and the logs, not to
gauges that would have to be kept in sync with persisted configuration.
*/
package metrics
