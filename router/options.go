package router

import (
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

type middleware func(http.Handler) http.Handler

// Option configures New.
type Option func(*options)

type options struct {
	config   Config
	logger   *slog.Logger
	swagger  *openapi3.T
	validate bool
}

func defaultOptions() *options {
	return &options{
		config:   DefaultConfig(),
		logger:   slog.Default(),
		validate: true,
	}
}

// chain returns the middlewares outermost first: request validation, CORS,
// the request timeout, and the access log closest to the handler.
func (o *options) chain() []middleware {
	var chain []middleware
	if o.validate && o.swagger != nil {
		chain = append(chain, oapiMiddleware(o.swagger))
	}
	if len(o.config.CORS.Origins) > 0 {
		chain = append(chain, corsMiddleware(o.config.CORS))
	}
	if o.config.Timeout > 0 {
		chain = append(chain, timeoutMiddleware(o.config.Timeout))
	}
	if o.logger != nil {
		chain = append(chain, loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders))
	}
	return chain
}

// WithConfig replaces DefaultConfig. The slices are copied.
func WithConfig(cfg Config) Option {
	cfg.QuietdownRoutes = cloneStrings(cfg.QuietdownRoutes)
	cfg.HideHeaders = cloneStrings(cfg.HideHeaders)
	cfg.CORS.Origins = cloneStrings(cfg.CORS.Origins)
	cfg.CORS.Methods = cloneStrings(cfg.CORS.Methods)
	cfg.CORS.Headers = cloneStrings(cfg.CORS.Headers)
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the access log. A nil logger disables it.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSwagger validates requests against the OpenAPI document. The
// document is copied; the caller's value is not modified.
func WithSwagger(swagger *openapi3.T) Option {
	return func(o *options) {
		o.swagger = swagger
	}
}

// WithoutOpenAPIValidation serves every route without request validation.
func WithoutOpenAPIValidation() Option {
	return func(o *options) {
		o.validate = false
	}
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return append([]string(nil), values...)
}
