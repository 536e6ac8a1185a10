package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/notary"
	"github.com/attestry/notary/pkg/ssm"
	"github.com/attestry/notary/pkg/storage"
)

// TestFullLifecycleOnFileStores walks the whole key lifecycle against real
// file-backed configuration stores: generate, self-sign, activate, notarize,
// refresh twice, verify the certificate chain end to end, forget.
func TestFullLifecycleOnFileStores(t *testing.T) {
	directory := t.TempDir()
	ssmStore, err := storage.NewFileStore(directory, "ssm.bali")
	require.NoError(t, err)
	notaryStore, err := storage.NewFileStore(directory, "notary.bali")
	require.NoError(t, err)

	account := component.NewTag()
	n, err := notary.New(account, []ssm.Module{ssm.NewV2(ssmStore), ssm.NewV1()}, notaryStore)
	require.NoError(t, err)

	runLifecycle(t, n, account)
}

// TestFullLifecycleOnBoltStore runs the same lifecycle with both components'
// configurations sharing one BoltDB file.
func TestFullLifecycleOnBoltStore(t *testing.T) {
	db, err := storage.OpenBoltDatabase(filepath.Join(t.TempDir(), "notary.db"))
	require.NoError(t, err)
	defer db.Close()

	account := component.NewTag()
	n, err := notary.New(account, []ssm.Module{ssm.NewV2(db.Store("ssm.bali")), ssm.NewV1()}, db.Store("notary.bali"))
	require.NoError(t, err)

	runLifecycle(t, n, account)
}

func runLifecycle(t *testing.T, n *notary.Notary, account component.Tag) {
	t.Helper()

	// First use: generate, self-sign, activate.
	certificate, err := n.GenerateKey()
	require.NoError(t, err)
	assert.True(t, account.Equal(certificate.Get("$account")))

	signed, err := n.NotarizeComponent(certificate)
	require.NoError(t, err)
	citation, err := n.ActivateKey(signed)
	require.NoError(t, err)

	valid, err := n.ValidDocument(signed, signed)
	require.NoError(t, err)
	assert.True(t, valid)

	// Notarize user content and cite it.
	content := component.NewCatalog()
	content.Set("$text", component.Text("a transaction record"))
	content.SetParameter("$type", component.Name("/bali/examples/Record/v1"))
	content.SetParameter("$tag", component.NewTag())
	content.SetParameter("$version", component.Version("v1"))
	content.SetParameter("$permissions", component.Name("/bali/permissions/public/v2"))
	content.SetParameter("$previous", component.None)

	document, err := n.NotarizeComponent(content)
	require.NoError(t, err)
	assert.True(t, citation.Equal(document.Get("$certificate")))

	documentCitation, err := n.CiteDocument(document)
	require.NoError(t, err)
	matches, err := n.CitationMatches(documentCitation, document)
	require.NoError(t, err)
	assert.True(t, matches)

	// Refresh twice; every certificate must verify under its predecessor.
	chain := []*component.Catalog{signed}
	for i := 0; i < 2; i++ {
		refreshed, err := n.RefreshKey()
		require.NoError(t, err)
		chain = append(chain, refreshed)
	}
	for i := 1; i < len(chain); i++ {
		valid, err := n.ValidDocument(chain[i], chain[i-1])
		require.NoError(t, err)
		assert.True(t, valid, "certificate %d must verify under its predecessor", i)
	}

	// Old documents still verify under the certificate that signed them.
	valid, err = n.ValidDocument(document, signed)
	require.NoError(t, err)
	assert.True(t, valid)

	// Forget and start over.
	require.NoError(t, n.ForgetKey())
	_, err = n.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, n.ForgetKey())
}
