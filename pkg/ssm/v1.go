package ssm

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha1"

	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/types"
)

// V1 implements the legacy protocol suite: ECDSA over secp521r1 with SHA-1
// digests. The suite is verification only; documents signed under v1 can
// still be checked, but no new key material is ever created for it, so the
// module keeps no state and no configuration.
type V1 struct{}

// NewV1 creates the legacy verification module.
func NewV1() *V1 {
	return &V1{}
}

func (m *V1) GetProtocol() types.Protocol {
	return types.ProtocolV1
}

func (m *V1) GetTag() (component.Tag, error) {
	return "", m.readOnly("GetTag")
}

func (m *V1) GenerateKeys() (component.Binary, error) {
	return nil, m.readOnly("GenerateKeys")
}

func (m *V1) RotateKeys() (component.Binary, error) {
	return nil, m.readOnly("RotateKeys")
}

func (m *V1) SignBytes(bytes []byte) (component.Binary, error) {
	return nil, m.readOnly("SignBytes")
}

// EraseKeys is legal in every state; with no state to erase it does nothing.
func (m *V1) EraseKeys() error {
	return nil
}

func (m *V1) DigestBytes(bytes []byte) (component.Binary, error) {
	digest := sha1.Sum(bytes)
	return component.Binary(digest[:]), nil
}

// ValidSignature verifies an ASN.1 encoded ECDSA signature under a public
// key given as an uncompressed secp521r1 curve point.
func (m *V1) ValidSignature(publicKey, signature component.Binary, bytes []byte) (bool, error) {
	x, y := elliptic.Unmarshal(elliptic.P521(), publicKey)
	if x == nil {
		return false, &types.Exception{
			Module:    moduleName,
			Procedure: "ValidSignature",
			Kind:      types.InvalidParameter,
			Text:      "the public key is not a valid curve point",
			Argument:  publicKey.Format(),
		}
	}
	key := &ecdsa.PublicKey{Curve: elliptic.P521(), X: x, Y: y}
	digest := sha1.Sum(bytes)
	return ecdsa.VerifyASN1(key, digest[:], signature), nil
}

func (m *V1) readOnly(procedure string) error {
	return &types.Exception{
		Module:    moduleName,
		Procedure: procedure,
		Kind:      types.InvalidEvent,
		Text:      "the v1 protocol is retained for verification only",
	}
}
