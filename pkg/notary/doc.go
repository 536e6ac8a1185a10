/*
Package notary implements the digital notary: the component that manages the
lifecycle of one account's signing key pair and uses it to produce and verify
attestations over structured documents.

# Architecture

The notary is a facade over a security module. It owns the high level
lifecycle and the document shapes; the security module owns the keys. Each
persists its own configuration through its own store.

	┌───────────────────────── DIGITAL NOTARY ─────────────────────────┐
	│                                                                  │
	│  caller                                                          │
	│    │  GenerateKey / ActivateKey / NotarizeComponent /            │
	│    │  ValidDocument / CiteDocument / RefreshKey / ForgetKey      │
	│  ┌─▼──────────────────────────────────────────────┐              │
	│  │                 Notary facade                  │              │
	│  │  - state machine: limited → pending → enabled  │              │
	│  │  - assembles certificates, documents,          │              │
	│  │    citations (ordered catalogs)                │              │
	│  │  - structural validators on every input        │              │
	│  │  - protocol registry: first module writes,     │              │
	│  │    all modules verify                          │              │
	│  └───────┬───────────────────────────┬────────────┘              │
	│          │ canonical bytes           │ $state, $certificate,     │
	│          │                           │ $citation                 │
	│  ┌───────▼───────────────┐   ┌───────▼───────────────┐           │
	│  │   Security module     │   │   storage.Store       │           │
	│  │   (pkg/ssm)           │   │   notary.bali         │           │
	│  │  - keyless/loneKey/   │   └───────────────────────┘           │
	│  │    twoKeys            │                                       │
	│  │  - sign, digest,      │   keys never cross this line:         │
	│  │    verify             │   the notary sees public keys,        │
	│  │  - own store:         │   digests and signatures only         │
	│  │    ssm.bali           │                                       │
	│  └───────────────────────┘                                       │
	└──────────────────────────────────────────────────────────────────┘

# Lifecycle

	┌─────────┐ generateKey ┌─────────┐ activateKey ┌─────────┐
	│ limited │────────────▶│ pending │────────────▶│ enabled │
	└─────────┘             └─────────┘             └─────────┘

GenerateKey returns an unsigned certificate component for a brand new key.
In pending, NotarizeComponent is already legal: that is how the certificate
signs itself before any citation to it exists. ActivateKey accepts the
signed certificate back, cites it, and enables the notary. ForgetKey is
legal everywhere and erases both the notary's and the security module's
state; the next operation starts over from limited.

The common first-use sequence:

	certificate, err := n.GenerateKey()
	signed, err := n.NotarizeComponent(certificate)
	citation, err := n.ActivateKey(signed)

RefreshKey rotates the key pair. The new certificate cites the one it
replaces in its $previous parameter, carries the successor version, and is
signed by the key being replaced (the security module uses the previous
private key exactly once after a rotation). Each certificate after the first
is therefore anchored to its predecessor, forming a verifiable chain back to
the self-signed original:

	K1 (self-signed, $previous: none)
	 ▲ signed by key 1          ▲ cited by
	K2 ($previous: citation of K1)
	 ▲ signed by key 2
	K3 ($previous: citation of K2)
	 ...

# Documents, certificates, citations

Everything the notary produces is an ordered catalog with a canonical text
form (package component):

	certificate component   $protocol, $timestamp, $account, $publicKey
	                        parameters: $type, $tag, $version,
	                        $permissions, $previous
	notarized document      $component, $protocol, $timestamp,
	                        $certificate, $signature
	citation                $protocol, $timestamp, $tag, $version, $digest

Signatures cover the canonical bytes of a document with the $signature
attribute absent; citation digests cover the full canonical bytes,
signature included. Verification rebuilds those exact bytes, so any
reserialization difference is a mismatch by construction. A citation slot
($previous, $certificate) holds either a full citation catalog or the
sentinel none — never an empty or missing value.

# Verification

ValidDocument and CitationMatches are pure reads: they work in any state
and never touch the key material. The protocol version embedded in the
certifying document (or citation) selects the verifying module from the
registry; a version no module implements fails with unsupportedProtocol,
naming the registered versions. Registering the legacy v1 module keeps
decade-old documents checkable while everything new is written under v2:

	modules := []ssm.Module{ssm.NewV2(ssmStore), ssm.NewV1()}
	n, err := notary.New(account, modules, notaryStore)

# Usage

Notarizing caller content (the component must carry the $tag, $version,
$permissions and $previous parameters):

	document, err := n.NotarizeComponent(content)
	...
	valid, err := n.ValidDocument(document, currentCertificate)

Citing and later matching a document:

	citation, err := n.CiteDocument(document)
	...
	matches, err := n.CitationMatches(citation, document)

# Error Handling

Every operation returns a *types.Exception. Structural problems in inputs
are invalidParameter; a refused transition is invalidEvent; an activation
with the wrong certificate is invalidCertificate; an unknown protocol is
unsupportedProtocol; store failures are storageException; anything else is
wrapped as unexpected with the original error as cause. Callers branch with
types.IsKind rather than string matching. Nothing is retried internally.

# Durability

State-changing operations follow a fixed order: validate the transition,
do the cryptographic work (the security module persists its own state),
update the in-memory notary state, persist the notary configuration,
return. A failure before the notary persist leaves the previous notary
state intact. A crash between the security module's persist and the
notary's can leave the module one step ahead; recovery is ForgetKey and a
fresh start. One account owns one notary and calls it sequentially —
concurrent use of the same configuration is undefined.

# Integration Points

This package uses:

  - pkg/ssm: key lifecycle, signing, digesting, verification
  - pkg/component: catalogs, canonical serialization, structural equality
  - pkg/storage: the notary's persisted configuration
  - pkg/log, pkg/metrics: transition logging and operation counters

and is used by cmd/notary, which wires the stores and exposes the
lifecycle as subcommands.
*/
package notary
