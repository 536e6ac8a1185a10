package ssm

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha1"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/storage"
	"github.com/attestry/notary/pkg/types"
)

func newTestModule(t *testing.T) (*V2, string) {
	t.Helper()
	directory := t.TempDir()
	store, err := storage.NewFileStore(directory, "ssm.bali")
	require.NoError(t, err)
	return NewV2(store), filepath.Join(directory, "ssm.bali")
}

func TestSignVerifyRoundTrip(t *testing.T) {
	module, _ := newTestModule(t)

	publicKey, err := module.GenerateKeys()
	require.NoError(t, err)
	assert.Len(t, []byte(publicKey), 32)

	message := []byte("the bytes to be signed")
	signature, err := module.SignBytes(message)
	require.NoError(t, err)

	valid, err := module.ValidSignature(publicKey, signature, message)
	require.NoError(t, err)
	assert.True(t, valid)

	// A different message does not verify.
	valid, err = module.ValidSignature(publicKey, signature, []byte("other bytes"))
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCrossKeyRejection(t *testing.T) {
	first, _ := newTestModule(t)
	second, _ := newTestModule(t)

	_, err := first.GenerateKeys()
	require.NoError(t, err)
	otherKey, err := second.GenerateKeys()
	require.NoError(t, err)

	message := []byte("signed under the first key")
	signature, err := first.SignBytes(message)
	require.NoError(t, err)

	valid, err := first.ValidSignature(otherKey, signature, message)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestDigestDeterminism(t *testing.T) {
	module, _ := newTestModule(t)

	first, err := module.DigestBytes([]byte("same bytes"))
	require.NoError(t, err)
	second, err := module.DigestBytes([]byte("same bytes"))
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Len(t, []byte(first), 64)

	different, err := module.DigestBytes([]byte("different bytes"))
	require.NoError(t, err)
	assert.False(t, first.Equal(different))
}

func TestStateMachineSafety(t *testing.T) {
	module, _ := newTestModule(t)

	// keyless: signing and rotating are illegal.
	_, err := module.SignBytes([]byte("bytes"))
	assert.True(t, types.IsKind(err, types.InvalidEvent))
	_, err = module.RotateKeys()
	assert.True(t, types.IsKind(err, types.InvalidEvent))

	_, err = module.GenerateKeys()
	require.NoError(t, err)

	// loneKey: generating again is illegal.
	_, err = module.GenerateKeys()
	assert.True(t, types.IsKind(err, types.InvalidEvent))

	_, err = module.RotateKeys()
	require.NoError(t, err)

	// twoKeys: generating and rotating are illegal.
	_, err = module.GenerateKeys()
	assert.True(t, types.IsKind(err, types.InvalidEvent))
	_, err = module.RotateKeys()
	assert.True(t, types.IsKind(err, types.InvalidEvent))

	state, err := module.GetState()
	require.NoError(t, err)
	assert.Equal(t, StateTwoKeys, state)
}

func TestRotationSignsWithPreviousKeyOnce(t *testing.T) {
	module, _ := newTestModule(t)

	firstKey, err := module.GenerateKeys()
	require.NoError(t, err)
	secondKey, err := module.RotateKeys()
	require.NoError(t, err)

	// The first signature after a rotation comes from the replaced key.
	message := []byte("certificate for the second key")
	signature, err := module.SignBytes(message)
	require.NoError(t, err)

	valid, err := module.ValidSignature(firstKey, signature, message)
	require.NoError(t, err)
	assert.True(t, valid)
	valid, err = module.ValidSignature(secondKey, signature, message)
	require.NoError(t, err)
	assert.False(t, valid)

	// The previous key was discarded; the next signature uses the current key.
	state, err := module.GetState()
	require.NoError(t, err)
	assert.Equal(t, StateLoneKey, state)

	signature, err = module.SignBytes(message)
	require.NoError(t, err)
	valid, err = module.ValidSignature(secondKey, signature, message)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestConfigurationSurvivesRestart(t *testing.T) {
	directory := t.TempDir()
	store, err := storage.NewFileStore(directory, "ssm.bali")
	require.NoError(t, err)

	module := NewV2(store)
	tag, err := module.GetTag()
	require.NoError(t, err)
	publicKey, err := module.GenerateKeys()
	require.NoError(t, err)

	// A new instance on the same store picks up where the old one left off.
	restarted := NewV2(store)
	restartedTag, err := restarted.GetTag()
	require.NoError(t, err)
	assert.Equal(t, tag, restartedTag)

	message := []byte("signed after restart")
	signature, err := restarted.SignBytes(message)
	require.NoError(t, err)
	valid, err := restarted.ValidSignature(publicKey, signature, message)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestEraseKeysWipesEverything(t *testing.T) {
	module, path := newTestModule(t)

	tag, err := module.GetTag()
	require.NoError(t, err)
	_, err = module.GenerateKeys()
	require.NoError(t, err)

	require.NoError(t, module.EraseKeys())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// The next operation starts over with a fresh tag in keyless.
	freshTag, err := module.GetTag()
	require.NoError(t, err)
	assert.NotEqual(t, tag, freshTag)
	state, err := module.GetState()
	require.NoError(t, err)
	assert.Equal(t, StateKeyless, state)

	// Idempotent.
	require.NoError(t, module.EraseKeys())
}

func TestIllegalEventLeavesPersistedStateUnchanged(t *testing.T) {
	module, path := newTestModule(t)

	_, err := module.GenerateKeys()
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = module.GenerateKeys()
	assert.True(t, types.IsKind(err, types.InvalidEvent))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestValidSignatureRejectsMalformedKey(t *testing.T) {
	module, _ := newTestModule(t)

	_, err := module.ValidSignature(component.Binary([]byte("short")), component.Binary(make([]byte, 64)), []byte("bytes"))
	assert.True(t, types.IsKind(err, types.InvalidParameter))
}

func TestV1IsVerificationOnly(t *testing.T) {
	module := NewV1()

	assert.Equal(t, types.ProtocolV1, module.GetProtocol())

	_, err := module.GenerateKeys()
	assert.True(t, types.IsKind(err, types.InvalidEvent))
	_, err = module.RotateKeys()
	assert.True(t, types.IsKind(err, types.InvalidEvent))
	_, err = module.SignBytes([]byte("bytes"))
	assert.True(t, types.IsKind(err, types.InvalidEvent))
	_, err = module.GetTag()
	assert.True(t, types.IsKind(err, types.InvalidEvent))
	assert.NoError(t, module.EraseKeys())
}

func TestV1VerifiesLegacySignatures(t *testing.T) {
	legacy := NewV1()

	key, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	require.NoError(t, err)

	message := []byte("a legacy document")
	digest := sha1.Sum(message)
	signature, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	require.NoError(t, err)

	publicKey := elliptic.Marshal(elliptic.P521(), key.PublicKey.X, key.PublicKey.Y)

	valid, err := legacy.ValidSignature(component.Binary(publicKey), component.Binary(signature), message)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = legacy.ValidSignature(component.Binary(publicKey), component.Binary(signature), []byte("tampered"))
	require.NoError(t, err)
	assert.False(t, valid)

	digest = sha1.Sum(message)
	legacyDigest, err := legacy.DigestBytes(message)
	require.NoError(t, err)
	assert.True(t, component.Binary(digest[:]).Equal(legacyDigest))
}
