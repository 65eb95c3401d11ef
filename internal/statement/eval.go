package statement

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/grist-build/grist/internal/macro"
	"github.com/grist-build/grist/internal/version"
)

// Eval evaluates an attribute statement's expression and expands %{name}
// placeholders in every string of the result through the macro map at the
// requested syntax version.
func Eval(s Statement, ver version.Version, m macro.Map) (cty.Value, error) {
	if s.IsBlock() {
		return cty.NilVal, fmt.Errorf("statement %q at %s is a block, not an expression", s.Name, s.Range)
	}

	val, diags := s.Expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}

	return cty.Transform(val, func(_ cty.Path, v cty.Value) (cty.Value, error) {
		if v.IsNull() || v.Type() != cty.String {
			return v, nil
		}
		expanded, err := macro.ExpandString(v.AsString(), ver, m, s.Expr.Range())
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(expanded), nil
	})
}
