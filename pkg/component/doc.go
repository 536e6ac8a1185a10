/*
Package component implements the structured values the notary is built from:
an ordered catalog of attributes with optional parameters, plus the scalar
types that inhabit it (tag, version, moment, binary, name, pattern, text).

# Canonical form

Every value has a deterministic canonical UTF-8 form produced by Format and
accepted back by Parse. Structural equality is defined on that form, and all
digests and signatures in the notary are computed over exactly those bytes,
so the formatting rules are part of the wire contract:

	[
	    $protocol: v2
	    $timestamp: <2026-08-01T10:30:00.000>
	    $tag: #4VSKEPAnfdxtYFHzHwBRMSnyHEvK
	    $version: v1
	    $digest: 'QmQWzrXjzb...'
	]($type: /bali/notary/Citation/v2)

Attributes render one per line in insertion order, indented four spaces per
nesting level; parameters follow the closing bracket. The empty catalog is
written [:]. The sentinel pattern none is a value in its own right, distinct
from an absent attribute — a citation slot holding none means "deliberately
no referent", while a missing attribute is a structural error.

Scalar forms:

	tag      #4VSKEPAnfdxtYFHzHwBRMSnyHEvK      base58 of the tag bytes
	binary   'DhbbTQzkZWmeZqqsmy8kyFU6H'        base58 of the bytes
	moment   <2026-08-01T10:30:00.000>          UTC, millisecond resolution
	version  v1, v2.3                           dot separated ordinals
	name     /bali/notary/Document/v2           slash separated identifiers
	text     "a quoted string"
	pattern  none, any

# Determinism

Three choices keep the form reproducible. Catalogs preserve insertion
order, so the same assembly sequence yields the same bytes. Moments carry
millisecond resolution and are captured once at construction, so
reformatting a parsed document reproduces the bytes that were signed. And
Parse accepts the grammar Format emits (modulo insignificant whitespace and
optional commas between attributes), so a document can cross a wire as text
and verify on the other side.

# Mutability

Catalogs are mutable while being assembled and are treated as immutable
once handed out; Clone produces a deep copy when a caller needs to derive a
modified value. Scalars are value types and safe to share.

# Usage

Assembling a component for notarization:

	content := component.NewCatalog()
	content.Set("$text", component.Text("a transaction record"))
	content.SetParameter("$type", component.Name("/bali/examples/Record/v1"))
	content.SetParameter("$tag", component.NewTag())
	content.SetParameter("$version", component.Version("v1"))
	content.SetParameter("$permissions", component.Name("/bali/permissions/public/v2"))
	content.SetParameter("$previous", component.None)

Round-tripping through the wire form:

	parsed, err := component.ParseCatalog(text)
	...
	parsed.Format() == text  // byte identical

Parse failures are *types.Exception values of kind invalidParameter,
carrying a snippet of the offending input.
*/
package component
