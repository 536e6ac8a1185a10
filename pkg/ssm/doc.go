/*
Package ssm implements the software security module, the only component that
ever touches private key material.

# Architecture

A module owns one private key at a time, and briefly two during a rotation.
Its lifecycle is a closed three-state machine driven by an explicit
transition table:

	┌─────────┐ generateKeys ┌─────────┐  rotateKeys  ┌─────────┐
	│ keyless │─────────────▶│ loneKey │─────────────▶│ twoKeys │
	└─────────┘              └─────────┘              └─────────┘
	                           ▲    │ ▲                    │
	                 signBytes │    │ └────── signBytes ───┘
	                           └────┘

	always legal: digestBytes, validSignature, getTag, getProtocol,
	              eraseKeys

Any (state, event) pair outside the table fails with invalidEvent before
any cryptographic work happens, and leaves the persisted configuration
untouched.

# The one-shot previous key

Signing applies one rule: when a previous key exists it produces the
signature and is discarded in the same operation. The first signature after
a rotation is therefore made by the key being replaced, which is exactly
what links each certificate to its predecessor in the notary's chain. After
that single use the module is back to loneKey and every signature comes
from the current key.

# Persistence

The v2 module persists its state through a storage.Store as canonical
catalog text:

	[
	    $tag: #...
	    $state: "loneKey"
	    $publicKey: '...'
	    $privateKey: '...'
	]

with $previousPublicKey/$previousPrivateKey present only mid-rotation. The
configuration is loaded lazily on the first operation — a missing file
initializes a fresh keyless module with a new tag and writes it before
proceeding — and rewritten whole after each mutating operation; there are
no partial updates. EraseKeys zeroes the in-memory private keys, deletes
the configuration, and is idempotent; the next operation starts over with a
fresh tag.

# Protocol variants

Two variants implement the Module capability set:

V2 (current): Ed25519 signatures, SHA-512 digests. Key pairs derive from a
fresh 32 byte seed drawn from crypto/rand.

V1 (legacy): ECDSA over secp521r1 with SHA-1 digests, public keys as
uncompressed curve points, signatures in ASN.1. The suite is verification
only — it exists so documents notarized under the old protocol remain
checkable — so it keeps no state and every mutating operation fails with
invalidEvent.

# Security

Private key bytes never leave this package: they are not logged, not
returned from any operation, and serialized only into the module's own
configuration. Verification and digesting are stateless and never read the
stored keys at all.
*/
package ssm
