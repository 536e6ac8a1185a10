/*
Package log provides structured logging for the notary using zerolog.

The package owns one root logger, configured once at startup, from which
every component derives a child logger carrying its context fields. Library
callers that never configure logging still get readable output: the root
logger defaults to console format on stderr at info level.

# Architecture

	┌───────────────────── LOGGING SYSTEM ─────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │              Root Logger                   │           │
	│  │  - package level zerolog.Logger            │           │
	│  │  - default: console, stderr, info          │           │
	│  │  - replaced wholesale by Configure()       │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │               Options                      │           │
	│  │  - Level:  debug / info / warn / error     │           │
	│  │  - JSON:   aggregator format vs console    │           │
	│  │  - Output: stderr, file, custom writer     │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │           Component Loggers                │           │
	│  │  - ForComponent("notary")                  │           │
	│  │  - ForComponent("ssm")                     │           │
	│  │  - callers append account/protocol fields  │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │               Log Output                   │           │
	│  │                                            │           │
	│  │  JSON:                                     │           │
	│  │  {"level":"debug","component":"notary",    │           │
	│  │   "account":"4VSKEP...","state":"pending", │           │
	│  │   "time":"...",                            │           │
	│  │   "message":"generated a new key pair"}    │           │
	│  │                                            │           │
	│  │  Console:                                  │           │
	│  │  2026-08-01T10:30:00Z DBG generated a new  │           │
	│  │  key pair account=4VSKEP...                │           │
	│  │  component=notary state=pending            │           │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

# Core Components

Root logger:
  - Package level zerolog.Logger, usable without any setup
  - Rebuilt (not mutated) when Configure is called
  - Level filtering lives on the logger itself, not in global state

Options:
  - Level: threshold below which events are dropped; unknown or empty
    strings fall back to info rather than failing
  - JSON: one JSON object per event for aggregators, or a console line
    for humans
  - Output: any io.Writer; defaults to stderr so documents printed on
    stdout stay machine readable

Component loggers:
  - ForComponent tags every event with the originating component
  - The notary appends its account tag, the security module its protocol
    version, at the place the child logger is built

# Usage

Configuring at startup (the CLI does this from its flags):

	log.Configure(log.Options{
		Level: "debug",
		JSON:  true,
	})

Deriving a component logger with context:

	logger := log.ForComponent("notary").With().
		Str("account", string(account)).Logger()
	logger.Debug().Str("state", "pending").Msg("generated a new key pair")

Logging an error with its cause:

	logger.Error().Err(err).Msg("failed to persist the configuration")

# What gets logged

The notary logs each state transition at debug level; failed operations are
returned to the caller as exceptions and are not logged. At info and above
the notary is silent; debug level narrates the lifecycle (key generation,
activation, rotation, erasure) for troubleshooting.

# Security

Private key material must never reach a log event. The security module logs
lifecycle states, never key bytes; the logging calls in pkg/ssm are written
against field values that cannot carry them. Signatures, digests and public
keys are not secret, but neither the notary nor the security module logs
them.

# Integration Points

This package is used by:

  - pkg/notary: lifecycle transitions
  - pkg/ssm: key generation, rotation and erasure events
  - cmd/notary: flag driven configuration, metrics endpoint failures

# Best Practices

Do:
  - Configure once, before any component logger is created
  - Use typed fields (.Str, .Err) so aggregators can query them
  - Keep the default info level in production; debug narrates every
    lifecycle step

Don't:
  - Log key material, configuration file contents, or anything derived
    from $privateKey
  - Reconfigure mid-run; component loggers capture the root logger at
    creation time
*/
package log
