// Package statement turns raw declarative build-description text into
// structured statements. The rest of the engine treats the parser as opaque:
// it consumes statements, never HCL bodies.
package statement

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Statement is one structured declaration. Attribute statements carry an
// expression; block statements carry labels and a nested body.
type Statement struct {
	Name   string
	Labels []string
	Expr   hcl.Expression
	Body   []Statement
	Range  hcl.Range
}

// IsBlock reports whether the statement is a block rather than an attribute.
func (s Statement) IsBlock() bool { return s.Expr == nil }

// Parse reads declarative source into statements, in source order.
func Parse(filename string, src []byte) ([]Statement, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parse %s: unexpected body type", filename)
	}
	return fromBody(body), nil
}

func fromBody(body *hclsyntax.Body) []Statement {
	stmts := make([]Statement, 0, len(body.Attributes)+len(body.Blocks))
	for _, attr := range body.Attributes {
		stmts = append(stmts, Statement{
			Name:  attr.Name,
			Expr:  attr.Expr,
			Range: attr.SrcRange,
		})
	}
	for _, block := range body.Blocks {
		stmts = append(stmts, Statement{
			Name:   block.Type,
			Labels: block.Labels,
			Body:   fromBody(block.Body),
			Range:  block.Range(),
		})
	}
	sort.Slice(stmts, func(i, j int) bool {
		return stmts[i].Range.Start.Byte < stmts[j].Range.Start.Byte
	})
	return stmts
}
