package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grist-build/grist/internal/buildctx"
)

// GenerateWrapper synthesizes the wrapper program for a script. The wrapper
// neutralizes the require directive (the extraction pass already consumed
// it), makes source insertion fail (build scripts must be self-contained),
// embeds a read-only namespace of build-context facts, defines the send
// entry point that writes its argument verbatim in binary mode to the
// output path, and finally replays the unmodified script text under a line
// directive pointing back at the original file.
func GenerateWrapper(scriptPath string, src []byte, outputPath string, bctx *buildctx.Context) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "// Generated for build context %s; do not edit.\n\n", bctx.Name)

	b.WriteString("#define require(...)\n")
	b.WriteString("#define insert(...) static_assert(0, \"build scripts must be self-contained; insert is not available\")\n\n")

	b.WriteString("namespace grist {\n")
	fmt.Fprintf(&b, "const char *context = %s;\n", strconv.Quote(bctx.Name))
	fmt.Fprintf(&b, "const char *language_version = %s;\n", strconv.Quote(bctx.LangVersion))
	fmt.Fprintf(&b, "const char *toolchain[][2] = {\n")
	for _, p := range bctx.Toolchain {
		fmt.Fprintf(&b, "    {%s, %s},\n", strconv.Quote(p.Key), strconv.Quote(p.Value))
	}
	b.WriteString("};\n")
	fmt.Fprintf(&b, "const char *output_path = %s;\n", strconv.Quote(outputPath))
	b.WriteString("}\n\n")

	b.WriteString("static void send(const char *text) {\n")
	b.WriteString("    FILE *out = fopen(grist::output_path, \"wb\");\n")
	b.WriteString("    fwrite(text, 1, strlen(text), out);\n")
	b.WriteString("    fclose(out);\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "#line 1 %s\n", strconv.Quote(scriptPath))
	b.Write(src)

	return []byte(b.String())
}
