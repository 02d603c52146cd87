// internal/config/model.go
//
// Typed configuration model for Feleck.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `FELECK_`-prefixed environment overrides – highest precedence.
//
// Any string beginning with `vault:` is resolved through Vault before
// validation, so the model never keeps Vault URIs after Load returns.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
	// TrustedProxies lists CIDRs or IPs of reverse proxies whose forwarding
	// headers identify the client.  Empty trusts none.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
}

// Forms selects the login variant and opts into rules that ship disabled.
//
// EnableRules entries are “field.rule” keys, e.g. “password.digit”.
type Forms struct {
	Variant     string   `koanf:"variant"      validate:"oneof=email phone"`
	EnableRules []string `koanf:"enable_rules" validate:"dive,contains=."`
}

// Security holds the CSRF key for the web form: base64url, at least 32 bytes
// once decoded.  Empty means a random per-process key.
type Security struct {
	CSRFKey string `koanf:"csrf_key" validate:"omitempty,base64rawurl"`
}

// Database is optional.  An empty DSN disables the login attempt audit.
type Database struct {
	DSN string `koanf:"dsn"`
}

// GeoIP points at a GeoLite2-City database.  Empty disables country lookup.
type GeoIP struct {
	Path string `koanf:"path" validate:"omitempty,file"`
}

// Log tunes the zap logger.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // FELECK_ROOT or discovered parent
}

// Config is the immutable aggregate returned by Load().
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Forms    Forms    `koanf:"forms"`
	Security Security `koanf:"security"`
	Database Database `koanf:"database"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}

// FormID returns the login definition ID for the configured variant.
func (c *Config) FormID() string {
	if c.Forms.Variant == "phone" {
		return "auth/login-phone"
	}
	return "auth/login"
}

// applyDefaults fills values the YAML may omit.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Forms.Variant == "" {
		c.Forms.Variant = "email"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
