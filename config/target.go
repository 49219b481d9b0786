package config

// TargetAuthMode selects how target calls are authenticated.
type TargetAuthMode string

const (
	// TargetAuthBasic authenticates each call with the record user's basic credentials.
	TargetAuthBasic TargetAuthMode = "basic"
	// TargetAuthOAuth2 authenticates calls with a shared client-credentials bearer token.
	TargetAuthOAuth2 TargetAuthMode = "oauth2"
)

// TargetConfig contains target server configuration.
type TargetConfig struct {
	// BaseURL is the scheme://host[:port] of the target server.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// HelloPath is the web script path invoked for every record.
	HelloPath string `env:"HELLO_PATH" envDefault:"/service/sample/helloworld"`

	// AuthMode selects basic (per record user) or oauth2 (shared token).
	AuthMode TargetAuthMode `env:"AUTH_MODE" envDefault:"basic"`

	// OAuth2 client-credentials settings, used when AuthMode is oauth2.
	OAuth2ClientID     string   `env:"OAUTH2_CLIENT_ID"`
	OAuth2ClientSecret string   `env:"OAUTH2_CLIENT_SECRET"`
	OAuth2TokenURL     string   `env:"OAUTH2_TOKEN_URL"`
	OAuth2Scopes       []string `env:"OAUTH2_SCOPES" envSeparator:","`
}
