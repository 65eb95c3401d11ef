package buildctx

import (
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// LoadFile reads a build-context description from an HCL file. The toolchain
// block's entries are preserved in source order.
func LoadFile(path string) (*Context, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context file: %w", err)
	}
	return parse(path, src)
}

func parse(filename string, src []byte) (*Context, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("context file %s: unexpected body type", filename)
	}

	ctx := &Context{}
	for name, attr := range body.Attributes {
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			return nil, valDiags
		}
		if val.Type() != cty.String {
			return nil, fmt.Errorf("context file %s: attribute %q must be a string", filename, name)
		}
		s := val.AsString()
		switch name {
		case "name":
			ctx.Name = s
		case "language_version":
			ctx.LangVersion = s
		case "profile":
			ctx.Profile = s
		case "generated_root":
			ctx.GeneratedRoot = s
		case "runtime_include":
			ctx.RuntimeInclude = s
		case "bin_dir":
			ctx.BinDir = s
		case "stdlib_dir":
			ctx.StdlibDir = s
		default:
			return nil, fmt.Errorf("context file %s: unknown attribute %q", filename, name)
		}
	}

	for _, block := range body.Blocks {
		if block.Type != "toolchain" {
			return nil, fmt.Errorf("context file %s: unknown block %q", filename, block.Type)
		}
		attrs := make([]*hclsyntax.Attribute, 0, len(block.Body.Attributes))
		for _, attr := range block.Body.Attributes {
			attrs = append(attrs, attr)
		}
		// The attribute map is unordered; the declaration order is the
		// source order.
		sort.Slice(attrs, func(i, j int) bool {
			return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
		})
		for _, attr := range attrs {
			val, valDiags := attr.Expr.Value(nil)
			if valDiags.HasErrors() {
				return nil, valDiags
			}
			if val.Type() != cty.String {
				return nil, fmt.Errorf("context file %s: toolchain entry %q must be a string", filename, attr.Name)
			}
			ctx.Toolchain = append(ctx.Toolchain, Pair{Key: attr.Name, Value: val.AsString()})
		}
	}

	if ctx.Name == "" {
		return nil, fmt.Errorf("context file %s: \"name\" is required", filename)
	}
	return ctx, nil
}
