package buildconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration should validate: %v", err)
	}
}

func TestResolveImport(t *testing.T) {
	cfg := Config{Resolve: Resolve{Alias: map[string]string{
		"@":           "./src",
		"@components": "./src/components",
	}}}
	root := filepath.FromSlash("/app")

	cases := []struct {
		spec   string
		want   string
		wantOK bool
	}{
		{spec: "@", want: filepath.Join(root, "src"), wantOK: true},
		{spec: "@/pages/Home", want: filepath.Join(root, "src", "pages", "Home"), wantOK: true},
		{spec: "@components/Button", want: filepath.Join(root, "src", "components", "Button"), wantOK: true},
		{spec: "@mui/material", want: "@mui/material", wantOK: false},
		{spec: "react", want: "react", wantOK: false},
		{spec: "./local", want: "./local", wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.spec, func(t *testing.T) {
			got, ok := cfg.ResolveImport(tc.spec, root)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("ResolveImport(%q) = (%q, %v), want (%q, %v)", tc.spec, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestDefault_ResolvesAliasToSource(t *testing.T) {
	got, ok := Default().ResolveImport("@/main.tsx", "project")
	if !ok || got != filepath.Join("project", "src", "main.tsx") {
		t.Fatalf("expected alias to resolve into src, got (%q, %v)", got, ok)
	}
}

func TestSilenced_OnlyNamedDeprecations(t *testing.T) {
	cfg := Default()

	for _, id := range []string{"mixed-decls", "color-functions", "global-builtin", "import"} {
		if !cfg.Silenced("scss", id) {
			t.Fatalf("expected %s to be silenced for scss", id)
		}
	}
	for _, id := range []string{"legacy-js-api", "slash-div", "abs-percent"} {
		if cfg.Silenced("scss", id) {
			t.Fatalf("expected %s to stay visible", id)
		}
	}
	if cfg.Silenced("sass", "import") || cfg.Silenced("less", "import") {
		t.Fatal("suppressions must not leak to other preprocessors")
	}

	warnings := []string{"import", "slash-div", "mixed-decls", "legacy-js-api"}
	got := cfg.FilterDeprecations("scss", warnings)
	if !reflect.DeepEqual(got, []string{"slash-div", "legacy-js-api"}) {
		t.Fatalf("unexpected filtered warnings: %v", got)
	}
	if got := cfg.FilterDeprecations("less", warnings); !reflect.DeepEqual(got, warnings) {
		t.Fatalf("expected no filtering for other preprocessors, got %v", got)
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := `
plugins: [react]
resolve:
  alias:
    "@": ./src
    "~assets": ./src/assets
css:
  preprocessorOptions:
    scss:
      silenceDeprecations: [import, legacy-js-api]
`
		cfg, err := Load(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Resolve.Alias["~assets"] != "./src/assets" {
			t.Fatalf("unexpected aliases: %v", cfg.Resolve.Alias)
		}
		if !cfg.Silenced("scss", "legacy-js-api") {
			t.Fatal("expected legacy-js-api to be silenced")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(strings.NewReader("plugins: [react]\nserver:\n  port: 3000\n"))
		if err == nil {
			t.Fatal("expected unknown field to be rejected")
		}
	})

	t.Run("unknown deprecation", func(t *testing.T) {
		doc := "css:\n  preprocessorOptions:\n    scss:\n      silenceDeprecations: [everything]\n"
		_, err := Load(strings.NewReader(doc))
		if err == nil || !strings.Contains(err.Error(), `unknown deprecation "everything"`) {
			t.Fatalf("expected unknown deprecation error, got %v", err)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		if _, err := Load(strings.NewReader("")); err == nil {
			t.Fatal("expected error for empty document")
		}
	})
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Resolve: Resolve{Alias: map[string]string{"": "./src", "@/x": "./x", "@": " "}},
		CSS: CSS{PreprocessorOptions: map[string]PreprocessorOptions{
			"scss": {SilenceDeprecations: []string{"import", "import"}},
		}},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, part := range []string{"empty alias symbol", "must not contain '/'", "has no target directory", `duplicate deprecation "import"`} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("expected %q in %v", part, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.yaml")
	if err := os.WriteFile(path, []byte("plugins: [react]\nresolve:\n  alias:\n    \"@\": ./web/src\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := cfg.ResolveImport("@/App", ""); got != filepath.Join("web", "src", "App") {
		t.Fatalf("unexpected resolution %q", got)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestJSON(t *testing.T) {
	data, err := Default().JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(data)
	for _, part := range []string{`"plugins"`, `"alias"`, `"@": "./src"`, `"preprocessorOptions"`, `"silenceDeprecations"`} {
		if !strings.Contains(out, part) {
			t.Fatalf("expected %s in %s", part, out)
		}
	}

	empty, err := Config{}.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(empty), `"plugins": []`) {
		t.Fatalf("expected empty collections instead of null, got %s", empty)
	}
}
