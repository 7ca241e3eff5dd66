package emotion

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/carecam/internal/config"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Überrascht" -> "Uberrascht").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Catalog maps backend spellings onto canonical emotion labels.
type Catalog struct {
	names   []string
	aliases map[string]string
}

func NewCatalog(entries []config.EmotionEntry) *Catalog {
	c := &Catalog{aliases: make(map[string]string)}
	for _, e := range entries {
		name := foldLabel(e.Name)
		if name == "" {
			continue
		}
		c.names = append(c.names, name)
		c.aliases[name] = name
		for _, a := range e.Aliases {
			c.aliases[foldLabel(a)] = name
		}
	}
	return c
}

// Names returns the canonical labels in catalogue order.
func (c *Catalog) Names() []string {
	if c == nil {
		return []string{}
	}
	return append([]string{}, c.names...)
}

// Normalize folds a raw label and maps it to its canonical name. Labels the
// catalogue does not know are returned folded rather than rejected.
func (c *Catalog) Normalize(raw string) string {
	folded := foldLabel(raw)
	if c == nil {
		return folded
	}
	if name, ok := c.aliases[folded]; ok {
		return name
	}
	return folded
}

// foldLabel lowercases, strips diacritics and collapses separators to single spaces.
func foldLabel(s string) string {
	s = strings.ToLower(RemoveDiacritics(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
