/*
Package types defines the shared vocabulary of the notary: the protocol
version identifiers and the structured Exception type every public operation
uses to report failures.

# Exceptions

Exceptions carry the originating module and procedure, a kind from a closed
set, a short text, an optional rendering of the offending argument, and a
chained cause:

	invalidParameter     structural validation failure on an input
	invalidEvent         a state machine refused the transition
	invalidCertificate   activation with a certificate that is not the
	                     pending one
	unsupportedProtocol  a document or citation names an unregistered
	                     protocol version
	storageException     configuration load, store or delete failed
	unexpected           catch-all wrapper for underlying crypto or
	                     framework failures

The Wrap helper preserves the propagation policy: known exception kinds
pass through unchanged, anything else is rethrown as unexpected with the
original error as cause, so diagnostic chains survive every layer.

Callers classify failures with IsKind rather than string matching:

	citation, err := n.GetCitation()
	if types.IsKind(err, types.InvalidEvent) {
		// key pair has not been activated yet
	}

Exception implements Unwrap, so errors.Is and errors.As keep working
through wrapped causes.

# Protocols

Protocol is a version string (v1, v2) naming a full cryptographic suite.
ProtocolV2 (Ed25519, SHA-512) is the current writing protocol; ProtocolV1
(secp521r1 ECDSA, SHA-1) is retained for verification of legacy documents.
The mapping from Protocol to an implementation lives in pkg/ssm and the
registry held by pkg/notary.
*/
package types
