package ssm

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"io"

	"github.com/rs/zerolog"

	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/log"
	"github.com/attestry/notary/pkg/metrics"
	"github.com/attestry/notary/pkg/storage"
	"github.com/attestry/notary/pkg/types"
)

// V2 implements the current protocol suite: Ed25519 signatures over SHA-512
// digests. State is persisted through the configuration store after every
// mutating operation, as a whole-configuration rewrite.
type V2 struct {
	store  storage.Store
	logger zerolog.Logger

	loaded             bool
	tag                component.Tag
	state              State
	publicKey          component.Binary
	privateKey         component.Binary
	previousPublicKey  component.Binary
	previousPrivateKey component.Binary
}

// NewV2 creates a v2 security module backed by the given configuration
// store. The configuration is loaded lazily on the first operation; a
// missing configuration initializes a fresh keyless module with a new tag.
func NewV2(store storage.Store) *V2 {
	return &V2{
		store:  store,
		logger: log.ForComponent("ssm").With().Str("protocol", string(types.ProtocolV2)).Logger(),
	}
}

func (m *V2) GetProtocol() types.Protocol {
	return types.ProtocolV2
}

func (m *V2) GetTag() (component.Tag, error) {
	if err := m.load("GetTag"); err != nil {
		return "", err
	}
	return m.tag, nil
}

// GetState returns the current lifecycle state.
func (m *V2) GetState() (State, error) {
	if err := m.load("GetState"); err != nil {
		return "", err
	}
	return m.state, nil
}

func (m *V2) GenerateKeys() (result component.Binary, err error) {
	defer func() { metrics.RecordSSMOperation("generateKeys", err) }()
	if err = m.load("GenerateKeys"); err != nil {
		return nil, err
	}
	next, err := transition("GenerateKeys", m.state, eventGenerateKeys)
	if err != nil {
		return nil, err
	}
	publicKey, privateKey, err := generateKeyPair()
	if err != nil {
		return nil, types.Wrap(moduleName, "GenerateKeys", err)
	}
	m.publicKey = publicKey
	m.privateKey = privateKey
	m.state = next
	if err = m.persist("GenerateKeys"); err != nil {
		return nil, err
	}
	m.logger.Debug().Str("state", string(m.state)).Msg("generated a new key pair")
	return m.publicKey, nil
}

func (m *V2) RotateKeys() (result component.Binary, err error) {
	defer func() { metrics.RecordSSMOperation("rotateKeys", err) }()
	if err = m.load("RotateKeys"); err != nil {
		return nil, err
	}
	next, err := transition("RotateKeys", m.state, eventRotateKeys)
	if err != nil {
		return nil, err
	}
	publicKey, privateKey, err := generateKeyPair()
	if err != nil {
		return nil, types.Wrap(moduleName, "RotateKeys", err)
	}
	m.previousPublicKey = m.publicKey
	m.previousPrivateKey = m.privateKey
	m.publicKey = publicKey
	m.privateKey = privateKey
	m.state = next
	if err = m.persist("RotateKeys"); err != nil {
		return nil, err
	}
	m.logger.Debug().Str("state", string(m.state)).Msg("rotated the key pair")
	return m.publicKey, nil
}

func (m *V2) SignBytes(bytes []byte) (result component.Binary, err error) {
	defer func() { metrics.RecordSSMOperation("signBytes", err) }()
	if err = m.load("SignBytes"); err != nil {
		return nil, err
	}
	next, err := transition("SignBytes", m.state, eventSignBytes)
	if err != nil {
		return nil, err
	}
	// The previous key signs exactly once: the first signature after a
	// rotation is the chain link certifying the replacement key.
	signer := m.privateKey
	if m.previousPrivateKey != nil {
		signer = m.previousPrivateKey
	}
	signature := ed25519.Sign(ed25519.PrivateKey(signer), bytes)
	if m.previousPrivateKey != nil {
		zeroBytes(m.previousPrivateKey)
		m.previousPrivateKey = nil
		m.previousPublicKey = nil
	}
	m.state = next
	if err = m.persist("SignBytes"); err != nil {
		return nil, err
	}
	return component.Binary(signature), nil
}

func (m *V2) DigestBytes(bytes []byte) (component.Binary, error) {
	digest := sha512.Sum512(bytes)
	return component.Binary(digest[:]), nil
}

func (m *V2) ValidSignature(publicKey, signature component.Binary, bytes []byte) (bool, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return false, &types.Exception{
			Module:    moduleName,
			Procedure: "ValidSignature",
			Kind:      types.InvalidParameter,
			Text:      "the public key has the wrong length",
			Argument:  publicKey.Format(),
		}
	}
	if len(signature) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), bytes, signature), nil
}

func (m *V2) EraseKeys() (err error) {
	defer func() { metrics.RecordSSMOperation("eraseKeys", err) }()
	zeroBytes(m.privateKey)
	zeroBytes(m.previousPrivateKey)
	m.tag = ""
	m.state = ""
	m.publicKey = nil
	m.privateKey = nil
	m.previousPublicKey = nil
	m.previousPrivateKey = nil
	m.loaded = false
	if err = m.store.Delete(); err != nil {
		return &types.Exception{
			Module:    moduleName,
			Procedure: "EraseKeys",
			Kind:      types.StorageException,
			Text:      "failed to delete the configuration",
			Cause:     err,
		}
	}
	m.logger.Debug().Msg("erased all key material")
	return nil
}

func generateKeyPair() (component.Binary, component.Binary, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, nil, err
	}
	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)
	return component.Binary(publicKey), component.Binary(privateKey), nil
}

// load reads the persisted configuration into memory, initializing a fresh
// keyless configuration (with a new tag) when none exists yet.
func (m *V2) load(procedure string) error {
	if m.loaded {
		return nil
	}
	text, ok, err := m.store.Load()
	if err != nil {
		return &types.Exception{
			Module:    moduleName,
			Procedure: procedure,
			Kind:      types.StorageException,
			Text:      "failed to load the configuration",
			Cause:     err,
		}
	}
	if !ok {
		m.tag = component.NewTag()
		m.state = StateKeyless
		m.loaded = true
		return m.persist(procedure)
	}
	configuration, err := component.ParseCatalog(text)
	if err != nil {
		return &types.Exception{
			Module:    moduleName,
			Procedure: procedure,
			Kind:      types.StorageException,
			Text:      "the persisted configuration is corrupt",
			Cause:     err,
		}
	}
	tag, _ := configuration.Get("$tag").(component.Tag)
	state, _ := configuration.Get("$state").(component.Text)
	m.tag = tag
	m.state = State(state)
	m.publicKey, _ = configuration.Get("$publicKey").(component.Binary)
	m.privateKey, _ = configuration.Get("$privateKey").(component.Binary)
	m.previousPublicKey, _ = configuration.Get("$previousPublicKey").(component.Binary)
	m.previousPrivateKey, _ = configuration.Get("$previousPrivateKey").(component.Binary)
	m.loaded = true
	return nil
}

func (m *V2) persist(procedure string) error {
	configuration := component.NewCatalog()
	configuration.Set("$tag", m.tag)
	configuration.Set("$state", component.Text(m.state))
	if m.publicKey != nil {
		configuration.Set("$publicKey", m.publicKey)
		configuration.Set("$privateKey", m.privateKey)
	}
	if m.previousPublicKey != nil {
		configuration.Set("$previousPublicKey", m.previousPublicKey)
		configuration.Set("$previousPrivateKey", m.previousPrivateKey)
	}
	if err := m.store.Store(configuration.Format()); err != nil {
		return &types.Exception{
			Module:    moduleName,
			Procedure: procedure,
			Kind:      types.StorageException,
			Text:      "failed to store the configuration",
			Cause:     err,
		}
	}
	return nil
}
