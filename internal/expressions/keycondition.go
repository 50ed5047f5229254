// Package expressions parses the DynamoDB expressions declared on
// store-backed endpoints.
package expressions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// KeyCondition is a parsed key-condition expression
type KeyCondition struct {
	Conditions []*Condition `parser:"@@ ( 'AND' @@ )*"`
}

// Condition is one term of a key condition
type Condition struct {
	BeginsWith *BeginsWith `parser:"  @@"`
	Comparison *Comparison `parser:"| @@"`
}

// BeginsWith is begins_with(attribute, prefix)
type BeginsWith struct {
	Attribute *Operand `parser:"'begins_with' '(' @@"`
	Prefix    *Operand `parser:"',' @@ ')'"`
}

// Comparison is either a binary comparison or a BETWEEN range
type Comparison struct {
	Left  *Operand   `parser:"@@"`
	Right *RightSide `parser:"@@"`
}

// RightSide holds whatever follows the left operand of a comparison
type RightSide struct {
	Between *Between `parser:"  @@"`
	Binary  *Binary  `parser:"| @@"`
}

// Between is BETWEEN lower AND upper
type Between struct {
	Lower *Operand `parser:"'BETWEEN' @@"`
	Upper *Operand `parser:"'AND' @@"`
}

// Binary is a comparison operator and its right operand
type Binary struct {
	Operator string   `parser:"@Operator"`
	Right    *Operand `parser:"@@"`
}

// Operand is a name placeholder, a value placeholder or a literal attribute
type Operand struct {
	Name      string `parser:"  @Name"`
	Value     string `parser:"| @Value"`
	Attribute string `parser:"| @Ident"`
}

var keyConditionParser = participle.MustBuild[KeyCondition](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Name", Pattern: `#[A-Za-z0-9_]+`},
		{Name: "Value", Pattern: `:[A-Za-z0-9_]+`},
		{Name: "Operator", Pattern: `<=|>=|=|<|>`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},
		{Name: "Punct", Pattern: `[(),]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)

// ParseKeyCondition parses a key-condition expression
func ParseKeyCondition(expr string) (*KeyCondition, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("key condition expression is empty")
	}
	kc, err := keyConditionParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("invalid key condition expression %q: %w", expr, err)
	}
	return kc, nil
}

// Refs are the placeholders an expression references, in first-use order
type Refs struct {
	Names  []string
	Values []string
}

func (r *Refs) add(op *Operand) {
	if op == nil {
		return
	}
	switch {
	case op.Name != "":
		r.Names = appendUnique(r.Names, op.Name)
	case op.Value != "":
		r.Values = appendUnique(r.Values, op.Value)
	}
}

// Placeholders lists the #name and :value references of the key condition
func (kc *KeyCondition) Placeholders() Refs {
	var refs Refs
	for _, cond := range kc.Conditions {
		for _, op := range cond.operands() {
			refs.add(op)
		}
	}
	return refs
}

func (c *Condition) operands() []*Operand {
	switch {
	case c.BeginsWith != nil:
		return []*Operand{c.BeginsWith.Attribute, c.BeginsWith.Prefix}
	case c.Comparison != nil && c.Comparison.Right != nil:
		if b := c.Comparison.Right.Between; b != nil {
			return []*Operand{c.Comparison.Left, b.Lower, b.Upper}
		}
		if b := c.Comparison.Right.Binary; b != nil {
			return []*Operand{c.Comparison.Left, b.Right}
		}
	}
	return nil
}

// Placeholders parses a key condition and returns its references
func Placeholders(expr string) (Refs, error) {
	kc, err := ParseKeyCondition(expr)
	if err != nil {
		return Refs{}, err
	}
	return kc.Placeholders(), nil
}

var (
	namePlaceholder  = regexp.MustCompile(`#[A-Za-z0-9_]+`)
	valuePlaceholder = regexp.MustCompile(`:[A-Za-z0-9_]+`)
)

// FilterPlaceholders scans a filter expression for references. Filter
// expressions support far more syntax than key conditions, so they are
// matched by pattern only.
func FilterPlaceholders(expr string) Refs {
	var refs Refs
	for _, name := range namePlaceholder.FindAllString(expr, -1) {
		refs.Names = appendUnique(refs.Names, name)
	}
	for _, value := range valuePlaceholder.FindAllString(expr, -1) {
		refs.Values = appendUnique(refs.Values, value)
	}
	return refs
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
