package types

import (
	"fmt"
	"strings"
)

// Protocol identifies a full cryptographic suite: curve, signature and digest
// algorithms, and the wire details of the values they produce.
type Protocol string

const (
	// ProtocolV1 is the legacy suite (secp521r1 ECDSA with SHA-1). Retained
	// for verification of old documents only.
	ProtocolV1 Protocol = "v1"

	// ProtocolV2 is the current suite (Ed25519 with SHA-512).
	ProtocolV2 Protocol = "v2"
)

// ExceptionKind classifies a failure raised by the notary or the security
// module.
type ExceptionKind string

const (
	// InvalidParameter indicates a structural validation failure on an input.
	InvalidParameter ExceptionKind = "invalidParameter"

	// InvalidEvent indicates a state machine refused the transition.
	InvalidEvent ExceptionKind = "invalidEvent"

	// InvalidCertificate indicates an activation was attempted with a
	// certificate that does not match the one pending activation.
	InvalidCertificate ExceptionKind = "invalidCertificate"

	// UnsupportedProtocol indicates a document or citation names a protocol
	// version that is not registered.
	UnsupportedProtocol ExceptionKind = "unsupportedProtocol"

	// StorageException indicates a configuration load, store or delete failed.
	StorageException ExceptionKind = "storageException"

	// Unexpected wraps any underlying cryptographic or framework failure.
	Unexpected ExceptionKind = "unexpected"
)

// Exception is the structured error surfaced by every public notary and
// security module operation. It records where the failure originated, what
// kind it is, and chains the underlying cause when one exists.
type Exception struct {
	Module    string
	Procedure string
	Kind      ExceptionKind
	Text      string
	Argument  string
	Cause     error
}

func (e *Exception) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.%s: %s: %s", e.Module, e.Procedure, e.Kind, e.Text)
	if e.Argument != "" {
		fmt.Fprintf(&b, " (argument: %s)", e.Argument)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Exception) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is (or wraps) an Exception of the given kind.
func IsKind(err error, kind ExceptionKind) bool {
	for err != nil {
		if ex, ok := err.(*Exception); ok && ex.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Wrap rethrows err from the given module and procedure. An error that is
// already an Exception passes through unchanged so its kind survives the
// propagation; anything else is wrapped as an unexpected failure with the
// original as cause.
func Wrap(module, procedure string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Exception); ok {
		return err
	}
	return &Exception{
		Module:    module,
		Procedure: procedure,
		Kind:      Unexpected,
		Text:      "an unexpected failure occurred",
		Cause:     err,
	}
}
