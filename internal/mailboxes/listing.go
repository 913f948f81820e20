package mailboxes

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Special-use attributes the resolver understands.
const (
	AttrAll   = `\All`
	AttrTrash = `\Trash`
)

// Descriptor is one entry of a mailbox listing: the server-reported name and
// the attribute tokens attached to it.
type Descriptor struct {
	Attributes []string
	Name       string
}

// HasAttribute reports whether the descriptor carries the given attribute
// token. Attribute tokens are matched exactly.
func (d Descriptor) HasAttribute(attr string) bool {
	for _, a := range d.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

var listLineRe = regexp.MustCompile(`^\(([^)]*)\)\s+"[^"]*"\s+(.+)$`)

// ParseListLine decodes one listing line of the form
// `(attributes) "delimiter" name` into a Descriptor. Lines that do not match
// that shape are reported as unusable rather than failing the whole listing.
// Bytes that are not valid text are replaced with U+FFFD.
func ParseListLine(line string) (Descriptor, bool) {
	line = strings.ToValidUTF8(line, string(utf8.RuneError))
	m := listLineRe.FindStringSubmatch(line)
	if m == nil {
		return Descriptor{}, false
	}
	name := strings.TrimSpace(m[2])
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		name = unescape(name[1 : len(name)-1])
	}
	return Descriptor{Attributes: strings.Fields(m[1]), Name: name}, true
}

// FormatListLine renders a descriptor back into the canonical listing form
// that ParseListLine accepts. Names carrying quotes, backslashes or spaces
// are quoted.
func FormatListLine(d Descriptor, delimiter string) string {
	name := d.Name
	if name == "" || strings.ContainsAny(name, " \"\\") {
		name = Quote(name)
	}
	return fmt.Sprintf("(%s) %q %s", strings.Join(d.Attributes, " "), delimiter, name)
}

// Quote wraps a mailbox name in quotes for the wire, escaping embedded
// quotes and backslashes.
func Quote(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return `"` + escaped + `"`
}

// unescape removes exactly one level of backslash escaping.
func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}
