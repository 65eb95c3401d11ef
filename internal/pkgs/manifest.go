package pkgs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ReadManifest reads a <name>.pkg manifest into a Package record. The package
// name is the manifest file's stem and the owning directory is the manifest's
// directory.
func ReadManifest(path string) (*Package, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	file, diags := hclsyntax.ParseConfig(src, path, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("manifest %s: unexpected body type", path)
	}

	pkg := &Package{
		Name:         strings.TrimSuffix(filepath.Base(path), ManifestExt),
		Dir:          filepath.Dir(path),
		ManifestPath: path,
	}
	for name, attr := range body.Attributes {
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			return nil, valDiags
		}
		switch name {
		case "version":
			if val.Type() != cty.String {
				return nil, fmt.Errorf("manifest %s: \"version\" must be a string", path)
			}
			pkg.Version = val.AsString()
		case "requires":
			list, err := stringList(val)
			if err != nil {
				return nil, fmt.Errorf("manifest %s: \"requires\": %w", path, err)
			}
			pkg.Requires = list
		case "archives":
			list, err := stringList(val)
			if err != nil {
				return nil, fmt.Errorf("manifest %s: \"archives\": %w", path, err)
			}
			pkg.Archives = list
		default:
			// Manifests may carry fields consumed by other parts of the
			// toolchain; only the fields above matter here.
		}
	}
	return pkg, nil
}

func stringList(val cty.Value) ([]string, error) {
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("expected a list of strings, got %s", val.Type().FriendlyName())
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.Type() != cty.String {
			return nil, fmt.Errorf("expected a list of strings, got element of type %s", elem.Type().FriendlyName())
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
