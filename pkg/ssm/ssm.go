package ssm

import (
	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/types"
)

const moduleName = "ssm"

// Module is the capability set every security module variant provides. One
// module owns at most one private key at a time (plus, briefly, the previous
// one during a rotation) and is the only component that ever touches private
// key material.
type Module interface {
	// GetProtocol returns the protocol version this module implements.
	GetProtocol() types.Protocol

	// GetTag returns the stable identifier of this module instance.
	GetTag() (component.Tag, error)

	// GenerateKeys creates the initial key pair and returns the public key.
	GenerateKeys() (component.Binary, error)

	// RotateKeys demotes the current key pair to previous, generates a fresh
	// pair, and returns the new public key.
	RotateKeys() (component.Binary, error)

	// EraseKeys deletes all key material and persisted state. Idempotent.
	EraseKeys() error

	// DigestBytes returns the digest of the bytes. Stateless.
	DigestBytes(bytes []byte) (component.Binary, error)

	// SignBytes signs the bytes. When a previous key exists it is used once
	// and discarded, which is how a rotated certificate gets signed by the
	// key it replaces.
	SignBytes(bytes []byte) (component.Binary, error)

	// ValidSignature verifies a signature under the supplied public key.
	// Stateless.
	ValidSignature(publicKey, signature component.Binary, bytes []byte) (bool, error)
}

// State enumerates the key lifecycle states.
type State string

const (
	StateKeyless State = "keyless"
	StateLoneKey State = "loneKey"
	StateTwoKeys State = "twoKeys"
)

type event string

const (
	eventGenerateKeys event = "generateKeys"
	eventSignBytes    event = "signBytes"
	eventRotateKeys   event = "rotateKeys"
)

// transitions is the closed table of legal state changes. Digesting,
// verification, tag access and erasure are legal in every state and do not
// appear here.
var transitions = map[State]map[event]State{
	StateKeyless: {
		eventGenerateKeys: StateLoneKey,
	},
	StateLoneKey: {
		eventSignBytes:  StateLoneKey,
		eventRotateKeys: StateTwoKeys,
	},
	StateTwoKeys: {
		eventSignBytes: StateLoneKey,
	},
}

func transition(procedure string, current State, e event) (State, error) {
	next, ok := transitions[current][e]
	if !ok {
		return current, &types.Exception{
			Module:    moduleName,
			Procedure: procedure,
			Kind:      types.InvalidEvent,
			Text:      "the event is not allowed in the current state",
			Argument:  string(e) + " in " + string(current),
		}
	}
	return next, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
