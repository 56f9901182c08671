package apicall

// Option is a functional option for configuring a CallBuilder.
type Option func(*CallBuilder) error

// WithDispatcher sets the HTTP client calls are sent through.
func WithDispatcher(d Dispatcher) Option {
	return func(b *CallBuilder) error {
		b.dispatcher = d
		return nil
	}
}

// WithRouter sets the router that resolves route names to URLs.
func WithRouter(r Router) Option {
	return func(b *CallBuilder) error {
		b.router = r
		return nil
	}
}

// WithIDCodec sets the codec used for encoded URL parameters. Without one,
// BasexCodec is used.
func WithIDCodec(c IDCodec) Option {
	return func(b *CallBuilder) error {
		b.codec = c
		return nil
	}
}

// WithHashIDs turns identifier encoding on or off for every InjectURLParam call.
func WithHashIDs(enabled bool) Option {
	return func(b *CallBuilder) error {
		b.hashIDs = enabled
		return nil
	}
}

// WithPrincipalProvider sets where the bearer token for protected calls comes from.
func WithPrincipalProvider(p PrincipalProvider) Option {
	return func(b *CallBuilder) error {
		b.principals = p
		return nil
	}
}

// WithEndpoint sets the default endpoint descriptor, used when no override is set.
func WithEndpoint(descriptor string) Option {
	return func(b *CallBuilder) error {
		b.endpoint = descriptor
		return nil
	}
}

// WithAuth sets whether calls require auth when no override is set. Defaults to true.
func WithAuth(required bool) Option {
	return func(b *CallBuilder) error {
		b.auth = required
		return nil
	}
}

// WithConfig applies a loaded Config. A JWT secret installs a JWTPrincipalProvider
// and BaseURL is used by the default HTTPDispatcher.
func WithConfig(cfg Config) Option {
	return func(b *CallBuilder) error {
		b.hashIDs = cfg.HashIDs
		b.auth = cfg.Auth
		b.baseURL = cfg.BaseURL
		if cfg.JWTSecret != "" {
			p, err := NewJWTPrincipalProvider([]byte(cfg.JWTSecret), cfg.JWTSubject, cfg.JWTTTL)
			if err != nil {
				return err
			}
			b.principals = p
		}
		return nil
	}
}
