package notary

import (
	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/types"
)

// Type names carried by the values the notary produces. The version part
// tracks the writing protocol.
func certificateType(protocol types.Protocol) component.Name {
	return component.Name("/bali/notary/Certificate/" + string(protocol))
}

func documentType(protocol types.Protocol) component.Name {
	return component.Name("/bali/notary/Document/" + string(protocol))
}

func citationType(protocol types.Protocol) component.Name {
	return component.Name("/bali/notary/Citation/" + string(protocol))
}

func publicPermissions(protocol types.Protocol) component.Name {
	return component.Name("/bali/permissions/public/" + string(protocol))
}

// newCertificateComponent assembles the unsigned certificate component for a
// public key. The previous slot is none for the first certificate and the
// citation of the replaced certificate afterwards.
func (n *Notary) newCertificateComponent(publicKey component.Binary, tag component.Tag, version component.Version, previous component.Value) *component.Catalog {
	protocol := n.writer().GetProtocol()
	certificate := component.NewCatalog()
	certificate.Set("$protocol", component.Version(protocol))
	certificate.Set("$timestamp", component.Now())
	certificate.Set("$account", n.account)
	certificate.Set("$publicKey", publicKey)
	certificate.SetParameter("$type", certificateType(protocol))
	certificate.SetParameter("$tag", tag)
	certificate.SetParameter("$version", version)
	certificate.SetParameter("$permissions", publicPermissions(protocol))
	certificate.SetParameter("$previous", previous)
	return certificate
}

// buildCitation assembles a citation to a notarized document. The tag and
// version come from the embedded component's parameters; the digest covers
// the document's full canonical bytes.
func (n *Notary) buildCitation(procedure string, document *component.Catalog) (*component.Catalog, error) {
	protocol := n.writer().GetProtocol()
	embedded, _ := document.Get("$component").(*component.Catalog)
	tag, _ := embedded.Parameter("$tag").(component.Tag)
	version, _ := embedded.Parameter("$version").(component.Version)
	digest, err := n.writer().DigestBytes([]byte(document.Format()))
	if err != nil {
		return nil, types.Wrap(moduleName, procedure, err)
	}
	citation := component.NewCatalog()
	citation.Set("$protocol", component.Version(protocol))
	citation.Set("$timestamp", component.Now())
	citation.Set("$tag", tag)
	citation.Set("$version", version)
	citation.Set("$digest", digest)
	citation.SetParameter("$type", citationType(protocol))
	return citation, nil
}

// unsignedCopy rebuilds the exact payload that was signed: the document's
// attributes without $signature, in canonical order, with its parameters.
func unsignedCopy(document *component.Catalog) *component.Catalog {
	unsigned := component.NewCatalog()
	for _, key := range []string{"$component", "$protocol", "$timestamp", "$certificate"} {
		if value := document.Get(key); value != nil {
			unsigned.Set(key, value)
		}
	}
	for _, key := range document.ParameterKeys() {
		unsigned.SetParameter(key, document.Parameter(key))
	}
	return unsigned
}
