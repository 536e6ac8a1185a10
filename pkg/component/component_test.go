package component

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFormat(t *testing.T) {
	catalog := NewCatalog()
	catalog.Set("$protocol", Version("v2"))
	catalog.Set("$timestamp", MomentOf(time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)))
	catalog.Set("$account", Tag("4VSKEP"))
	catalog.SetParameter("$type", Name("/bali/notary/Certificate/v2"))

	expected := "[\n" +
		"    $protocol: v2\n" +
		"    $timestamp: <2026-08-01T10:30:00.000>\n" +
		"    $account: #4VSKEP\n" +
		"]($type: /bali/notary/Certificate/v2)"
	assert.Equal(t, expected, catalog.Format())
}

func TestEmptyCatalogFormat(t *testing.T) {
	assert.Equal(t, "[:]", NewCatalog().Format())
}

func TestNestedCatalogFormat(t *testing.T) {
	inner := NewCatalog()
	inner.Set("$text", Text("hello"))
	outer := NewCatalog()
	outer.Set("$component", inner)
	outer.Set("$certificate", None)

	expected := "[\n" +
		"    $component: [\n" +
		"        $text: \"hello\"\n" +
		"    ]\n" +
		"    $certificate: none\n" +
		"]"
	assert.Equal(t, expected, outer.Format())
}

func TestFormatParseRoundTrip(t *testing.T) {
	inner := NewCatalog()
	inner.Set("$text", Text("a \"quoted\" value"))
	inner.Set("$binary", Binary([]byte{0, 1, 2, 250, 251, 252}))
	inner.SetParameter("$tag", NewTag())
	inner.SetParameter("$version", Version("v1.2"))

	catalog := NewCatalog()
	catalog.Set("$component", inner)
	catalog.Set("$protocol", Version("v2"))
	catalog.Set("$timestamp", Now())
	catalog.Set("$certificate", None)
	catalog.Set("$name", Name("/bali/notary/Document/v2"))
	catalog.SetParameter("$type", Name("/bali/notary/Document/v2"))

	text := catalog.Format()
	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, text, parsed.Format())
	assert.True(t, catalog.Equal(parsed))
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"tag", "#4VSKEPAnfdxtYFHzHwBRMSnyHEvK"},
		{"version", "v1"},
		{"dotted version", "v2.3.4"},
		{"moment", "<2026-08-01T10:30:00.123>"},
		{"name", "/bali/permissions/public/v2"},
		{"text", "\"some text\""},
		{"none", "none"},
		{"any", "any"},
		{"empty catalog", "[:]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.text, value.Format())
		})
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"unknown keyword", "nothing"},
		{"unterminated catalog", "[\n    $key: v1\n"},
		{"unterminated binary", "'abc"},
		{"unterminated text", "\"abc"},
		{"missing key", "[\n    v1\n]"},
		{"duplicate attribute", "[$key: v1, $key: v2]"},
		{"bad version", "v0"},
		{"trailing input", "v1 v2"},
		{"empty name segment", "//bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.Error(t, err)
		})
	}
}

func TestCatalogAccessors(t *testing.T) {
	catalog := NewCatalog()
	catalog.Set("$first", Version("v1"))
	catalog.Set("$second", Version("v2"))

	assert.True(t, catalog.Has("$first"))
	assert.False(t, catalog.Has("$missing"))
	assert.Nil(t, catalog.Get("$missing"))
	assert.Equal(t, []string{"$first", "$second"}, catalog.Keys())
	assert.Equal(t, 2, catalog.Size())

	// Replacing keeps the original position.
	catalog.Set("$first", Version("v3"))
	assert.Equal(t, []string{"$first", "$second"}, catalog.Keys())
	assert.True(t, Version("v3").Equal(catalog.Get("$first")))

	removed := catalog.Remove("$first")
	assert.True(t, Version("v3").Equal(removed))
	assert.Equal(t, []string{"$second"}, catalog.Keys())
	assert.Nil(t, catalog.Remove("$first"))
}

func TestCatalogClone(t *testing.T) {
	inner := NewCatalog()
	inner.Set("$binary", Binary([]byte{1, 2, 3}))
	catalog := NewCatalog()
	catalog.Set("$component", inner)
	catalog.SetParameter("$version", Version("v1"))

	clone := catalog.Clone()
	assert.True(t, catalog.Equal(clone))

	// Mutating the clone must not affect the original.
	clone.Get("$component").(*Catalog).Set("$binary", Binary([]byte{9}))
	assert.False(t, catalog.Equal(clone))
}

func TestVersionNext(t *testing.T) {
	tests := []struct {
		version Version
		next    Version
	}{
		{"v1", "v2"},
		{"v2", "v3"},
		{"v1.2", "v1.3"},
		{"v3.4.9", "v3.4.10"},
	}

	for _, tt := range tests {
		next, ok := tt.version.Next()
		require.True(t, ok)
		assert.Equal(t, tt.next, next)
	}

	_, ok := Version("garbage").Next()
	assert.False(t, ok)
	_, ok = Version("v0").Next()
	assert.False(t, ok)
}

func TestNewTagIsUnique(t *testing.T) {
	seen := make(map[Tag]bool)
	for i := 0; i < 100; i++ {
		tag := NewTag()
		assert.False(t, seen[tag])
		seen[tag] = true

		// Tags round-trip through the canonical form.
		parsed, err := Parse(tag.Format())
		require.NoError(t, err)
		assert.True(t, tag.Equal(parsed))
	}
}

func TestNoneIsDistinctFromAbsence(t *testing.T) {
	catalog := NewCatalog()
	catalog.Set("$previous", None)

	assert.True(t, catalog.Has("$previous"))
	assert.True(t, IsNone(catalog.Get("$previous")))
	assert.False(t, IsNone(catalog.Get("$missing")))
	assert.False(t, IsNone(Version("v1")))
}

func TestMomentResolution(t *testing.T) {
	moment := MomentOf(time.Date(2026, 8, 1, 10, 30, 0, 123456789, time.UTC))
	assert.Equal(t, "<2026-08-01T10:30:00.123>", moment.Format())

	parsed, err := Parse(moment.Format())
	require.NoError(t, err)
	assert.True(t, moment.Equal(parsed))
}
