// ABOUTME: Tests for glob compilation and matching
// ABOUTME: Covers star and double star, ?, alternation, non-ASCII paths and malformed patterns

package workspace

import "testing"

func TestGlob_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**/*.{yaml,yml,json}", "openapi.yaml", true},
		{"**/*.{yaml,yml,json}", "api/v1/petstore.yml", true},
		{"**/*.{yaml,yml,json}", "package.json", true},
		{"**/*.{yaml,yml,json}", "README.md", false},
		{"**/*.{yaml,yml,json}", "spec.yaml.bak", false},
		{"**/node_modules/**", "node_modules/x/package.json", true},
		{"**/node_modules/**", "web/node_modules/y.json", true},
		{"**/node_modules/**", "my_node_modules/y.json", false},
		{".vscode/**", ".vscode/settings.json", true},
		{".vscode/**", "sub/.vscode/settings.json", false},
		{"*.json", "a.json", true},
		{"*.json", "dir/a.json", false},
		{"spec?.yaml", "spec1.yaml", true},
		{"spec?.yaml", "spec/.yaml", false},
		{"docs/**", "docs/a/b/c.yaml", true},
		{`a\*b`, "a*b", true},
		{`a\*b`, "axb", false},
		{"**/café/*.json", "api/café/x.json", true},
		{"**/café/*.json", "api/cafe/x.json", false},
		{"données/?.yaml", "données/é.yaml", true},
		{"v[12]/*.yaml", "v2/pets.yaml", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.path, func(t *testing.T) {
			t.Parallel()
			g := MustCompileGlob(tt.pattern)
			if got := g.Match(tt.path); got != tt.want {
				t.Errorf("%q.Match(%q) = %v; want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestCompileGlob_Malformed(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"{a,b", "[ab"} {
		if _, err := CompileGlob(p); err == nil {
			t.Errorf("CompileGlob(%q) succeeded; want error", p)
		}
	}
}
