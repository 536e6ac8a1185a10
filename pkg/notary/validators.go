package notary

import (
	"strings"

	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/types"
)

// The validators check the exact structure of incoming catalogs before any
// cryptographic work happens: attribute sets and order, parameter sets, and
// the citation-or-none rule for citation slots.

func invalidParameter(procedure, text, argument string) error {
	return &types.Exception{
		Module:    moduleName,
		Procedure: procedure,
		Kind:      types.InvalidParameter,
		Text:      text,
		Argument:  argument,
	}
}

func sameKeys(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, key := range expected {
		if actual[i] != key {
			return false
		}
	}
	return true
}

// validateNotarizableComponent checks that a component carries the four
// parameters every notarized component needs.
func validateNotarizableComponent(procedure string, comp *component.Catalog) error {
	if comp == nil {
		return invalidParameter(procedure, "a component is required", "")
	}
	if _, ok := comp.Parameter("$tag").(component.Tag); !ok {
		return invalidParameter(procedure, "the component has no $tag parameter", "")
	}
	if _, ok := comp.Parameter("$version").(component.Version); !ok {
		return invalidParameter(procedure, "the component has no $version parameter", "")
	}
	if _, ok := comp.Parameter("$permissions").(component.Name); !ok {
		return invalidParameter(procedure, "the component has no $permissions parameter", "")
	}
	if err := validateCitationSlot(procedure, comp.Parameter("$previous")); err != nil {
		return err
	}
	return nil
}

// validateCitationSlot accepts a full citation catalog or the none sentinel;
// anything else is invalid.
func validateCitationSlot(procedure string, value component.Value) error {
	if value == nil {
		return invalidParameter(procedure, "a citation slot is missing", "")
	}
	if component.IsNone(value) {
		return nil
	}
	citation, ok := value.(*component.Catalog)
	if !ok {
		return invalidParameter(procedure, "a citation slot holds neither a citation nor none", value.Format())
	}
	return validateCitation(procedure, citation)
}

// validateCitation checks the exact shape of a citation catalog.
func validateCitation(procedure string, citation *component.Catalog) error {
	if citation == nil {
		return invalidParameter(procedure, "a citation is required", "")
	}
	if !sameKeys(citation.Keys(), []string{"$protocol", "$timestamp", "$tag", "$version", "$digest"}) {
		return invalidParameter(procedure, "the citation attributes are malformed", strings.Join(citation.Keys(), " "))
	}
	if _, ok := citation.Get("$protocol").(component.Version); !ok {
		return invalidParameter(procedure, "the citation $protocol is not a version", "")
	}
	if _, ok := citation.Get("$timestamp").(component.Moment); !ok {
		return invalidParameter(procedure, "the citation $timestamp is not a moment", "")
	}
	if _, ok := citation.Get("$tag").(component.Tag); !ok {
		return invalidParameter(procedure, "the citation $tag is not a tag", "")
	}
	if _, ok := citation.Get("$version").(component.Version); !ok {
		return invalidParameter(procedure, "the citation $version is not a version", "")
	}
	if _, ok := citation.Get("$digest").(component.Binary); !ok {
		return invalidParameter(procedure, "the citation $digest is not a binary", "")
	}
	name, ok := citation.Parameter("$type").(component.Name)
	if !ok || !strings.HasPrefix(string(name), "/bali/notary/Citation/") {
		return invalidParameter(procedure, "the citation $type is malformed", "")
	}
	return nil
}

// validateCertificateComponent checks the exact shape of a certificate
// component: four attributes and exactly five parameters.
func validateCertificateComponent(procedure string, certificate *component.Catalog) error {
	if certificate == nil {
		return invalidParameter(procedure, "a certificate component is required", "")
	}
	if !sameKeys(certificate.Keys(), []string{"$protocol", "$timestamp", "$account", "$publicKey"}) {
		return invalidParameter(procedure, "the certificate attributes are malformed", strings.Join(certificate.Keys(), " "))
	}
	if _, ok := certificate.Get("$protocol").(component.Version); !ok {
		return invalidParameter(procedure, "the certificate $protocol is not a version", "")
	}
	if _, ok := certificate.Get("$timestamp").(component.Moment); !ok {
		return invalidParameter(procedure, "the certificate $timestamp is not a moment", "")
	}
	if _, ok := certificate.Get("$account").(component.Tag); !ok {
		return invalidParameter(procedure, "the certificate $account is not a tag", "")
	}
	if _, ok := certificate.Get("$publicKey").(component.Binary); !ok {
		return invalidParameter(procedure, "the certificate $publicKey is not a binary", "")
	}
	if !sameKeys(certificate.ParameterKeys(), []string{"$type", "$tag", "$version", "$permissions", "$previous"}) {
		return invalidParameter(procedure, "the certificate parameters are malformed", strings.Join(certificate.ParameterKeys(), " "))
	}
	name, ok := certificate.Parameter("$type").(component.Name)
	if !ok || !strings.HasPrefix(string(name), "/bali/notary/Certificate/") {
		return invalidParameter(procedure, "the certificate $type is malformed", "")
	}
	if err := validateCitationSlot(procedure, certificate.Parameter("$previous")); err != nil {
		return err
	}
	return nil
}

// validateDocument checks the exact shape of a notarized document.
func validateDocument(procedure string, document *component.Catalog) error {
	if document == nil {
		return invalidParameter(procedure, "a document is required", "")
	}
	if !sameKeys(document.Keys(), []string{"$component", "$protocol", "$timestamp", "$certificate", "$signature"}) {
		return invalidParameter(procedure, "the document attributes are malformed", strings.Join(document.Keys(), " "))
	}
	embedded, ok := document.Get("$component").(*component.Catalog)
	if !ok {
		return invalidParameter(procedure, "the document $component is not a catalog", "")
	}
	if err := validateNotarizableComponent(procedure, embedded); err != nil {
		return err
	}
	if _, ok := document.Get("$protocol").(component.Version); !ok {
		return invalidParameter(procedure, "the document $protocol is not a version", "")
	}
	if _, ok := document.Get("$timestamp").(component.Moment); !ok {
		return invalidParameter(procedure, "the document $timestamp is not a moment", "")
	}
	if err := validateCitationSlot(procedure, document.Get("$certificate")); err != nil {
		return err
	}
	if _, ok := document.Get("$signature").(component.Binary); !ok {
		return invalidParameter(procedure, "the document $signature is not a binary", "")
	}
	name, ok := document.Parameter("$type").(component.Name)
	if !ok || !strings.HasPrefix(string(name), "/bali/notary/Document/") {
		return invalidParameter(procedure, "the document $type is malformed", "")
	}
	return nil
}
