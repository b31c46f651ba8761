package buildconfig

// Deprecation ids accepted by the Sass compiler's silenceDeprecations option.
var knownDeprecations = map[string]struct{}{
	"call-string":                 {},
	"elseif":                      {},
	"moz-document":                {},
	"relative-canonical":          {},
	"new-global":                  {},
	"color-module-compat":         {},
	"slash-div":                   {},
	"bogus-combinators":           {},
	"strict-unary":                {},
	"function-units":              {},
	"duplicate-var-flags":         {},
	"null-alpha":                  {},
	"abs-percent":                 {},
	"fs-importer-cwd":             {},
	"css-function-mixin":          {},
	"mixed-decls":                 {},
	"feature-exists":              {},
	"color-4-api":                 {},
	"color-functions":             {},
	"legacy-js-api":               {},
	"import":                      {},
	"global-builtin":              {},
	"type-function":               {},
	"compile-string-relative-url": {},
}

// IsKnownDeprecation reports whether id names a Sass deprecation.
func IsKnownDeprecation(id string) bool {
	_, ok := knownDeprecations[id]
	return ok
}
