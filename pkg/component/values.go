package component

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// Value is a structured value with a deterministic canonical text form.
// Two values are structurally equal exactly when their canonical forms are
// byte-identical; digests and signatures are computed over those bytes.
type Value interface {
	Format() string
	Equal(other Value) bool
}

// Tag is a unique identifier. The canonical form is a "#" followed by the
// base58 encoding of the tag's bytes.
type Tag string

// NewTag generates a fresh 20 byte tag from UUID material plus four random
// bytes.
func NewTag() Tag {
	id := uuid.New()
	extra := make([]byte, 4)
	_, _ = rand.Read(extra)
	return Tag(base58.Encode(append(id[:], extra...)))
}

func (t Tag) Format() string {
	return "#" + string(t)
}

func (t Tag) Equal(other Value) bool {
	return other != nil && t.Format() == other.Format()
}

// Binary is an opaque byte string. The canonical form is the base58 encoding
// of the bytes wrapped in single quotes.
type Binary []byte

func (b Binary) Format() string {
	return "'" + base58.Encode(b) + "'"
}

func (b Binary) Equal(other Value) bool {
	return other != nil && b.Format() == other.Format()
}

// momentLayout fixes the canonical timestamp resolution at milliseconds so
// that reformatting a parsed moment reproduces the original bytes.
const momentLayout = "2006-01-02T15:04:05.000"

// Moment is a point in time, always UTC.
type Moment struct {
	t time.Time
}

// Now captures the current moment at canonical resolution.
func Now() Moment {
	return Moment{t: time.Now().UTC().Truncate(time.Millisecond)}
}

// MomentOf truncates an arbitrary time to canonical resolution.
func MomentOf(t time.Time) Moment {
	return Moment{t: t.UTC().Truncate(time.Millisecond)}
}

// Time returns the underlying time value.
func (m Moment) Time() time.Time {
	return m.t
}

func (m Moment) Format() string {
	return "<" + m.t.Format(momentLayout) + ">"
}

func (m Moment) Equal(other Value) bool {
	return other != nil && m.Format() == other.Format()
}

// Name is a slash separated identifier like /bali/notary/Document/v2.
type Name string

func (n Name) Format() string {
	return string(n)
}

func (n Name) Equal(other Value) bool {
	return other != nil && n.Format() == other.Format()
}

// Version is a dot separated sequence of ordinals prefixed with "v", like v1
// or v2.3.
type Version string

// FirstVersion is the version of the first certificate issued for an account.
const FirstVersion Version = "v1"

// Ordinals returns the numeric components of the version.
func (v Version) Ordinals() ([]int, bool) {
	s := string(v)
	if !strings.HasPrefix(s, "v") {
		return nil, false
	}
	parts := strings.Split(s[1:], ".")
	ordinals := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, false
		}
		ordinals[i] = n
	}
	return ordinals, true
}

// Next returns the successor version, incrementing the last ordinal.
func (v Version) Next() (Version, bool) {
	ordinals, ok := v.Ordinals()
	if !ok {
		return "", false
	}
	ordinals[len(ordinals)-1]++
	parts := make([]string, len(ordinals))
	for i, n := range ordinals {
		parts[i] = strconv.Itoa(n)
	}
	return Version("v" + strings.Join(parts, ".")), true
}

func (v Version) Format() string {
	return string(v)
}

func (v Version) Equal(other Value) bool {
	return other != nil && v.Format() == other.Format()
}

// Text is a quoted string value.
type Text string

func (t Text) Format() string {
	return strconv.Quote(string(t))
}

func (t Text) Equal(other Value) bool {
	return other != nil && t.Format() == other.Format()
}

// Pattern is a matching pattern. The notary only uses the singleton None,
// which is a value in its own right and distinct from an absent attribute.
type Pattern string

const (
	// None matches nothing. It fills citation slots that have no referent,
	// such as the previous-certificate slot of a first certificate.
	None Pattern = "none"

	// Any matches everything.
	Any Pattern = "any"
)

func (p Pattern) Format() string {
	return string(p)
}

func (p Pattern) Equal(other Value) bool {
	return other != nil && p.Format() == other.Format()
}

// IsNone reports whether a value is the none sentinel.
func IsNone(v Value) bool {
	p, ok := v.(Pattern)
	return ok && p == None
}
