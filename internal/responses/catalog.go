// Package responses holds the static reply catalog the resolver draws from.
package responses

import (
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category names an intent with its own reply set
type Category string

// Intent categories, plus Default for unmatched input and Math for the
// arithmetic path (which is computed, not drawn from the catalog).
const (
	Greeting    Category = "greeting"
	Farewell    Category = "farewell"
	Thanks      Category = "thanks"
	Help        Category = "help"
	Name        Category = "name"
	About       Category = "about"
	Emotions    Category = "emotions"
	Jokes       Category = "jokes"
	Hobbies     Category = "hobbies"
	Time        Category = "time"
	Compliments Category = "compliments"
	Default     Category = "default"
	Math        Category = "math"
	Advice      Category = "advice"
)

// DefaultBotName is substituted for {{bot}} when no name is configured
const DefaultBotName = "ChatBot"

const botPlaceholder = "{{bot}}"

//go:embed catalog.yaml
var catalogYAML []byte

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// Catalog maps categories to their fixed reply variants. It is built once
// and never mutated; accessors hand out copies.
type Catalog struct {
	variants map[Category][]string
}

// textCategories lists every category the catalog file must provide
var textCategories = []Category{
	Greeting, Farewell, Thanks, Help, Name, About, Emotions,
	Jokes, Hobbies, Time, Compliments, Default,
}

// New parses the embedded catalog, substituting botName into the replies
// that mention the bot by name.
func New(botName string) (*Catalog, error) {
	return Parse(catalogYAML, botName)
}

// Parse builds a catalog from YAML data shaped as category -> list of replies
func Parse(data []byte, botName string) (*Catalog, error) {
	if botName == "" {
		botName = DefaultBotName
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse reply catalog: %w", err)
	}

	c := &Catalog{variants: make(map[Category][]string, len(raw))}
	for key, list := range raw {
		rendered := make([]string, 0, len(list))
		for _, v := range list {
			if strings.TrimSpace(v) == "" {
				return nil, fmt.Errorf("category %q has an empty reply", key)
			}
			rendered = append(rendered, strings.ReplaceAll(v, botPlaceholder, botName))
		}
		c.variants[Category(key)] = rendered
	}

	for _, cat := range textCategories {
		if len(c.variants[cat]) == 0 {
			return nil, fmt.Errorf("category %q has no replies", cat)
		}
	}

	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the embedded catalog with the default bot name.
// The embedded file is validated by tests, so a parse failure here is a
// build defect.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(DefaultBotName)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Variants returns a copy of the replies for cat, or nil for unknown categories
func (c *Catalog) Variants(cat Category) []string {
	list := c.variants[cat]
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Pick returns a uniformly random reply for cat. Unknown categories fall
// back to the default replies.
func (c *Catalog) Pick(cat Category, p Picker) string {
	list := c.variants[cat]
	if len(list) == 0 {
		list = c.variants[Default]
	}
	return list[p.Intn(len(list))]
}

// Addition formats the sum of a and b
func Addition(a, b float64) string {
	return fmt.Sprintf("The sum of %s and %s is %s", FormatNumber(a), FormatNumber(b), FormatNumber(a+b))
}

// Subtraction formats the difference of a and b
func Subtraction(a, b float64) string {
	return fmt.Sprintf("%s minus %s equals %s", FormatNumber(a), FormatNumber(b), FormatNumber(a-b))
}

// Multiplication formats the product of a and b
func Multiplication(a, b float64) string {
	return fmt.Sprintf("%s multiplied by %s equals %s", FormatNumber(a), FormatNumber(b), FormatNumber(a*b))
}

// FormatNumber renders v in its shortest decimal form: 5, 2.5, -1.25.
// Overflowed values read Infinity, -Infinity or NaN.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
