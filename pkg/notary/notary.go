package notary

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/log"
	"github.com/attestry/notary/pkg/metrics"
	"github.com/attestry/notary/pkg/ssm"
	"github.com/attestry/notary/pkg/storage"
	"github.com/attestry/notary/pkg/types"
)

const moduleName = "notary"

// State enumerates the notary lifecycle states.
type State string

const (
	// StateLimited means no key pair exists yet.
	StateLimited State = "limited"

	// StatePending means a key pair exists but its certificate has not been
	// activated. Notarization is already legal so the brand new certificate
	// can sign itself.
	StatePending State = "pending"

	// StateEnabled means the certificate is activated and cited.
	StateEnabled State = "enabled"
)

type event string

const (
	eventGenerateKey       event = "generateKey"
	eventActivateKey       event = "activateKey"
	eventGetCitation       event = "getCitation"
	eventNotarizeComponent event = "notarizeComponent"
	eventRefreshKey        event = "refreshKey"
)

// transitions is the closed table of legal state changes. ForgetKey and the
// pure verification operations are legal in every state and do not appear.
var transitions = map[State]map[event]State{
	StateLimited: {
		eventGenerateKey: StatePending,
	},
	StatePending: {
		eventActivateKey:       StateEnabled,
		eventNotarizeComponent: StatePending,
	},
	StateEnabled: {
		eventGetCitation:       StateEnabled,
		eventNotarizeComponent: StateEnabled,
		eventRefreshKey:        StateEnabled,
	},
}

// Notary manages the signing key lifecycle for one account and produces
// certificates, notarized documents and citations with it. It drives a
// security module through the low level key lifecycle and persists its own
// state through a configuration store.
type Notary struct {
	account component.Tag
	modules []ssm.Module
	store   storage.Store
	logger  zerolog.Logger

	loaded      bool
	state       State
	certificate *component.Catalog
	citation    *component.Catalog
}

// New creates a notary for the given account. The first module in the list
// is the writing protocol; every module is eligible for verification. The
// configuration is loaded lazily on the first operation.
func New(account component.Tag, modules []ssm.Module, store storage.Store) (*Notary, error) {
	if account == "" {
		return nil, &types.Exception{
			Module:    moduleName,
			Procedure: "New",
			Kind:      types.InvalidParameter,
			Text:      "an account tag is required",
		}
	}
	if len(modules) == 0 {
		return nil, &types.Exception{
			Module:    moduleName,
			Procedure: "New",
			Kind:      types.InvalidParameter,
			Text:      "at least one security module is required",
		}
	}
	return &Notary{
		account: account,
		modules: modules,
		store:   store,
		logger:  log.ForComponent("notary").With().Str("account", string(account)).Logger(),
	}, nil
}

// GetState returns the current lifecycle state.
func (n *Notary) GetState() (State, error) {
	if err := n.load("GetState"); err != nil {
		return "", err
	}
	return n.state, nil
}

// GetAccount returns the account tag this notary signs for.
func (n *Notary) GetAccount() component.Tag {
	return n.account
}

// GenerateKey creates the initial key pair and returns the unsigned
// certificate component for it. The caller notarizes the component (the
// notary self-signs it) and submits the signed form back via ActivateKey.
func (n *Notary) GenerateKey() (result *component.Catalog, err error) {
	defer func() { metrics.RecordNotaryOperation("generateKey", err) }()
	if err = n.load("GenerateKey"); err != nil {
		return nil, err
	}
	next, err := n.transition("GenerateKey", eventGenerateKey)
	if err != nil {
		return nil, err
	}
	publicKey, err := n.writer().GenerateKeys()
	if err != nil {
		return nil, types.Wrap(moduleName, "GenerateKey", err)
	}
	certificate := n.newCertificateComponent(publicKey, component.NewTag(), component.FirstVersion, component.None)
	n.certificate = certificate
	n.citation = nil
	n.state = next
	if err = n.persist("GenerateKey"); err != nil {
		return nil, err
	}
	n.logger.Debug().Str("state", string(n.state)).Msg("generated a new key pair")
	return certificate, nil
}

// ActivateKey accepts the signed form of the certificate returned by
// GenerateKey and activates it, returning its citation.
func (n *Notary) ActivateKey(certificate *component.Catalog) (result *component.Catalog, err error) {
	defer func() { metrics.RecordNotaryOperation("activateKey", err) }()
	if err = n.load("ActivateKey"); err != nil {
		return nil, err
	}
	next, err := n.transition("ActivateKey", eventActivateKey)
	if err != nil {
		return nil, err
	}
	if err = validateDocument("ActivateKey", certificate); err != nil {
		return nil, err
	}
	embedded, _ := certificate.Get("$component").(*component.Catalog)
	if err = validateCertificateComponent("ActivateKey", embedded); err != nil {
		return nil, err
	}
	if n.certificate == nil || !embedded.Equal(n.certificate) {
		return nil, &types.Exception{
			Module:    moduleName,
			Procedure: "ActivateKey",
			Kind:      types.InvalidCertificate,
			Text:      "the certificate does not match the one pending activation",
		}
	}
	citation, err := n.buildCitation("ActivateKey", certificate)
	if err != nil {
		return nil, err
	}
	n.certificate = certificate
	n.citation = citation
	n.state = next
	if err = n.persist("ActivateKey"); err != nil {
		return nil, err
	}
	n.logger.Debug().Str("state", string(n.state)).Msg("activated the certificate")
	return citation, nil
}

// GetCitation returns the citation of the current certificate.
func (n *Notary) GetCitation() (result *component.Catalog, err error) {
	defer func() { metrics.RecordNotaryOperation("getCitation", err) }()
	if err = n.load("GetCitation"); err != nil {
		return nil, err
	}
	if _, err = n.transition("GetCitation", eventGetCitation); err != nil {
		return nil, err
	}
	return n.citation, nil
}

// NotarizeComponent wraps a component in a notarized document signed by the
// current key. In the pending state the certificate slot is none and the
// signature comes from the brand new key itself; that is how the first
// certificate gets self-signed.
func (n *Notary) NotarizeComponent(comp *component.Catalog) (result *component.Catalog, err error) {
	defer func() { metrics.RecordNotaryOperation("notarizeComponent", err) }()
	if err = n.load("NotarizeComponent"); err != nil {
		return nil, err
	}
	if _, err = n.transition("NotarizeComponent", eventNotarizeComponent); err != nil {
		return nil, err
	}
	if err = validateNotarizableComponent("NotarizeComponent", comp); err != nil {
		return nil, err
	}
	document := component.NewCatalog()
	document.Set("$component", comp)
	document.Set("$protocol", component.Version(n.writer().GetProtocol()))
	document.Set("$timestamp", component.Now())
	if n.citation != nil {
		document.Set("$certificate", component.Value(n.citation))
	} else {
		document.Set("$certificate", component.None)
	}
	document.SetParameter("$type", documentType(n.writer().GetProtocol()))
	signature, err := n.writer().SignBytes([]byte(document.Format()))
	if err != nil {
		return nil, types.Wrap(moduleName, "NotarizeComponent", err)
	}
	document.Set("$signature", signature)
	metrics.DocumentsNotarized.Inc()
	return document, nil
}

// ValidDocument checks a notarized document's signature against the public
// key in the certifying document, which must have been notarized under a
// registered protocol version.
func (n *Notary) ValidDocument(document, certifying *component.Catalog) (result bool, err error) {
	defer func() { metrics.RecordNotaryOperation("validDocument", err) }()
	if err = validateDocument("ValidDocument", document); err != nil {
		return false, err
	}
	if err = validateDocument("ValidDocument", certifying); err != nil {
		return false, err
	}
	embedded, _ := certifying.Get("$component").(*component.Catalog)
	if err = validateCertificateComponent("ValidDocument", embedded); err != nil {
		return false, err
	}
	version, _ := embedded.Get("$protocol").(component.Version)
	module, err := n.findModule("ValidDocument", types.Protocol(version))
	if err != nil {
		return false, err
	}
	publicKey, _ := embedded.Get("$publicKey").(component.Binary)
	signature, _ := document.Get("$signature").(component.Binary)
	unsigned := unsignedCopy(document)
	valid, err := module.ValidSignature(publicKey, signature, []byte(unsigned.Format()))
	if err != nil {
		return false, types.Wrap(moduleName, "ValidDocument", err)
	}
	return valid, nil
}

// CiteDocument builds a citation to a notarized document. The digest covers
// the document's full canonical form, signature included.
func (n *Notary) CiteDocument(document *component.Catalog) (result *component.Catalog, err error) {
	defer func() { metrics.RecordNotaryOperation("citeDocument", err) }()
	if err = validateDocument("CiteDocument", document); err != nil {
		return nil, err
	}
	return n.buildCitation("CiteDocument", document)
}

// CitationMatches recomputes the digest of a document under the citation's
// protocol and compares it bytewise against the cited digest. Any
// reserialization difference mismatches; the canonical form is stable, so a
// mismatch means a different document.
func (n *Notary) CitationMatches(citation, document *component.Catalog) (result bool, err error) {
	defer func() { metrics.RecordNotaryOperation("citationMatches", err) }()
	if err = validateCitation("CitationMatches", citation); err != nil {
		return false, err
	}
	if err = validateDocument("CitationMatches", document); err != nil {
		return false, err
	}
	version, _ := citation.Get("$protocol").(component.Version)
	module, err := n.findModule("CitationMatches", types.Protocol(version))
	if err != nil {
		return false, err
	}
	digest, err := module.DigestBytes([]byte(document.Format()))
	if err != nil {
		return false, types.Wrap(moduleName, "CitationMatches", err)
	}
	expected, _ := citation.Get("$digest").(component.Binary)
	return digest.Equal(expected), nil
}

// RefreshKey rotates the key pair and returns the notarized certificate for
// the new key. The security module's one-shot rule makes the previous
// private key sign it, forming the chain link, and the new certificate's
// previous slot cites the certificate being replaced.
func (n *Notary) RefreshKey() (result *component.Catalog, err error) {
	defer func() { metrics.RecordNotaryOperation("refreshKey", err) }()
	if err = n.load("RefreshKey"); err != nil {
		return nil, err
	}
	next, err := n.transition("RefreshKey", eventRefreshKey)
	if err != nil {
		return nil, err
	}
	publicKey, err := n.writer().RotateKeys()
	if err != nil {
		return nil, types.Wrap(moduleName, "RefreshKey", err)
	}
	previous, _ := n.certificate.Get("$component").(*component.Catalog)
	tag, _ := previous.Parameter("$tag").(component.Tag)
	version, _ := previous.Parameter("$version").(component.Version)
	nextVersion, ok := version.Next()
	if !ok {
		return nil, &types.Exception{
			Module:    moduleName,
			Procedure: "RefreshKey",
			Kind:      types.InvalidParameter,
			Text:      "the current certificate version is malformed",
			Argument:  version.Format(),
		}
	}
	replacement := n.newCertificateComponent(publicKey, tag, nextVersion, n.citation)
	document := component.NewCatalog()
	document.Set("$component", replacement)
	document.Set("$protocol", component.Version(n.writer().GetProtocol()))
	document.Set("$timestamp", component.Now())
	document.Set("$certificate", component.Value(n.citation))
	document.SetParameter("$type", documentType(n.writer().GetProtocol()))
	signature, err := n.writer().SignBytes([]byte(document.Format()))
	if err != nil {
		return nil, types.Wrap(moduleName, "RefreshKey", err)
	}
	document.Set("$signature", signature)
	citation, err := n.buildCitation("RefreshKey", document)
	if err != nil {
		return nil, err
	}
	n.certificate = document
	n.citation = citation
	n.state = next
	if err = n.persist("RefreshKey"); err != nil {
		return nil, err
	}
	metrics.KeyRotations.Inc()
	n.logger.Debug().Str("version", string(nextVersion)).Msg("refreshed the key pair")
	return document, nil
}

// ForgetKey erases all key material and persisted state for this notary and
// its security module. Legal in every state; the next operation starts over
// from limited.
func (n *Notary) ForgetKey() (err error) {
	defer func() { metrics.RecordNotaryOperation("forgetKey", err) }()
	if err = n.writer().EraseKeys(); err != nil {
		return types.Wrap(moduleName, "ForgetKey", err)
	}
	if err = n.store.Delete(); err != nil {
		return &types.Exception{
			Module:    moduleName,
			Procedure: "ForgetKey",
			Kind:      types.StorageException,
			Text:      "failed to delete the configuration",
			Cause:     err,
		}
	}
	n.state = StateLimited
	n.certificate = nil
	n.citation = nil
	n.loaded = false
	n.logger.Debug().Msg("forgot all key material")
	return nil
}

func (n *Notary) writer() ssm.Module {
	return n.modules[0]
}

func (n *Notary) findModule(procedure string, protocol types.Protocol) (ssm.Module, error) {
	expected := make([]string, len(n.modules))
	for i, module := range n.modules {
		expected[i] = string(module.GetProtocol())
		if module.GetProtocol() == protocol {
			return module, nil
		}
	}
	return nil, &types.Exception{
		Module:    moduleName,
		Procedure: procedure,
		Kind:      types.UnsupportedProtocol,
		Text:      "the protocol version is not supported",
		Argument:  fmt.Sprintf("expected one of [%s], actual %s", strings.Join(expected, ", "), protocol),
	}
}

func (n *Notary) transition(procedure string, e event) (State, error) {
	next, ok := transitions[n.state][e]
	if !ok {
		return n.state, &types.Exception{
			Module:    moduleName,
			Procedure: procedure,
			Kind:      types.InvalidEvent,
			Text:      "the event is not allowed in the current state",
			Argument:  string(e) + " in " + string(n.state),
		}
	}
	return next, nil
}

// load reads the persisted configuration into memory, initializing a fresh
// limited configuration when none exists yet.
func (n *Notary) load(procedure string) error {
	if n.loaded {
		return nil
	}
	text, ok, err := n.store.Load()
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
		n.state = StateLimited
		n.certificate = nil
		n.citation = nil
		n.loaded = true
		return n.persist(procedure)
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
	state, _ := configuration.Get("$state").(component.Text)
	n.state = State(state)
	n.certificate, _ = configuration.Get("$certificate").(*component.Catalog)
	n.citation, _ = configuration.Get("$citation").(*component.Catalog)
	n.loaded = true
	return nil
}

func (n *Notary) persist(procedure string) error {
	configuration := component.NewCatalog()
	configuration.Set("$state", component.Text(n.state))
	if n.certificate != nil {
		configuration.Set("$certificate", component.Value(n.certificate))
	} else {
		configuration.Set("$certificate", component.None)
	}
	if n.citation != nil {
		configuration.Set("$citation", component.Value(n.citation))
	} else {
		configuration.Set("$citation", component.None)
	}
	if err := n.store.Store(configuration.Format()); err != nil {
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
