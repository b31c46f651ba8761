// Package buildconfig models the declarative configuration a frontend build
// tool reads at startup: the plugin list, import path aliases, and
// stylesheet preprocessor options that silence named deprecation warnings.
//
// The value has no behaviour of its own. ResolveImport and Silenced answer
// the two questions the build tool asks of it, so the configuration can be
// checked without running the tool.
package buildconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/drblury/pingcheck/jsonutil"
)

// Config is the build tool configuration object.
type Config struct {
	Plugins []string `json:"plugins" yaml:"plugins"`
	Resolve Resolve  `json:"resolve" yaml:"resolve"`
	CSS     CSS      `json:"css" yaml:"css"`
}

// Resolve holds module resolution settings.
type Resolve struct {
	// Alias maps an import symbol such as "@" to a directory relative to the
	// project root.
	Alias map[string]string `json:"alias" yaml:"alias"`
}

// CSS holds stylesheet settings keyed by preprocessor language.
type CSS struct {
	PreprocessorOptions map[string]PreprocessorOptions `json:"preprocessorOptions" yaml:"preprocessorOptions"`
}

// PreprocessorOptions are passed to one stylesheet preprocessor.
type PreprocessorOptions struct {
	SilenceDeprecations []string `json:"silenceDeprecations,omitempty" yaml:"silenceDeprecations"`
}

// Default returns the configuration shipped with the frontend: React, the
// "@" alias for ./src, and the Sass deprecations raised by third-party
// stylesheets under the modern compiler API.
func Default() Config {
	return Config{
		Plugins: []string{"react"},
		Resolve: Resolve{
			Alias: map[string]string{"@": "./src"},
		},
		CSS: CSS{
			PreprocessorOptions: map[string]PreprocessorOptions{
				"scss": {
					SilenceDeprecations: []string{"mixed-decls", "color-functions", "global-builtin", "import"},
				},
			},
		},
	}
}

// Load decodes a YAML configuration. Unknown fields are rejected and the
// result is validated.
func Load(r io.Reader) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, errors.New("buildconfig: empty document")
		}
		return Config{}, fmt.Errorf("buildconfig: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and validates the YAML configuration at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("buildconfig: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Validate checks aliases and deprecation ids.
func (c Config) Validate() error {
	var errs []error

	for symbol, target := range c.Resolve.Alias {
		switch {
		case strings.TrimSpace(symbol) == "":
			errs = append(errs, errors.New("resolve.alias: empty alias symbol"))
		case strings.Contains(symbol, "/"):
			errs = append(errs, fmt.Errorf("resolve.alias: symbol %q must not contain '/'", symbol))
		}
		if strings.TrimSpace(target) == "" {
			errs = append(errs, fmt.Errorf("resolve.alias: %q has no target directory", symbol))
		}
	}

	for _, lang := range sortedKeys(c.CSS.PreprocessorOptions) {
		seen := make(map[string]struct{})
		for _, id := range c.CSS.PreprocessorOptions[lang].SilenceDeprecations {
			if _, dup := seen[id]; dup {
				errs = append(errs, fmt.Errorf("css.preprocessorOptions.%s: duplicate deprecation %q", lang, id))
				continue
			}
			seen[id] = struct{}{}
			if !IsKnownDeprecation(id) {
				errs = append(errs, fmt.Errorf("css.preprocessorOptions.%s: unknown deprecation %q", lang, id))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("buildconfig: %w", errors.Join(errs...))
	}
	return nil
}

// ResolveImport rewrites an aliased import specifier into a path below
// root. The longest alias matching a whole leading path segment wins.
// Imports that use no alias are returned unchanged with ok=false.
func (c Config) ResolveImport(spec, root string) (resolved string, ok bool) {
	best := ""
	for symbol := range c.Resolve.Alias {
		if spec != symbol && !strings.HasPrefix(spec, symbol+"/") {
			continue
		}
		if len(symbol) > len(best) {
			best = symbol
		}
	}
	if best == "" {
		return spec, false
	}

	rest := strings.TrimPrefix(strings.TrimPrefix(spec, best), "/")
	target := filepath.FromSlash(path.Clean(c.Resolve.Alias[best]))
	return filepath.Join(root, target, filepath.FromSlash(rest)), true
}

// Silenced reports whether the deprecation id is suppressed for lang.
func (c Config) Silenced(lang, id string) bool {
	opts, ok := c.CSS.PreprocessorOptions[lang]
	if !ok {
		return false
	}
	return slices.Contains(opts.SilenceDeprecations, id)
}

// FilterDeprecations drops the ids silenced for lang and keeps every other
// warning in order.
func (c Config) FilterDeprecations(lang string, ids []string) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if !c.Silenced(lang, id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// JSON encodes the object consumed by the build tool.
func (c Config) JSON() ([]byte, error) {
	out := c
	if out.Plugins == nil {
		out.Plugins = []string{}
	}
	if out.Resolve.Alias == nil {
		out.Resolve.Alias = map[string]string{}
	}
	if out.CSS.PreprocessorOptions == nil {
		out.CSS.PreprocessorOptions = map[string]PreprocessorOptions{}
	}
	return jsonutil.MarshalIndent(out, "", "  ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
