package accounts

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig is the concrete Config implementation, assembled once from
// the environment at startup and injected into every component.
type EnvConfig struct {
	ActivationSigningKey string        `env:"AUTH_ACTIVATION_SIGNING_KEY,required"`
	AccessSigningKey     string        `env:"AUTH_ACCESS_SIGNING_KEY,required"`
	RefreshSigningKey    string        `env:"AUTH_REFRESH_SIGNING_KEY,required"`
	ActivationTokenTTL   time.Duration `env:"AUTH_ACTIVATION_TOKEN_TTL" envDefault:"24h"`
	AccessTokenTTL       time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL      time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`
	OTPTTL               time.Duration `env:"AUTH_OTP_TTL" envDefault:"10m"`
	OTPMaxAttempts       int           `env:"AUTH_OTP_MAX_ATTEMPTS" envDefault:"3"`
	PasswordMinLength    int           `env:"AUTH_PASSWORD_MIN_LENGTH" envDefault:"6"`
	BaseURL              string        `env:"AUTH_BASE_URL" envDefault:"http://localhost:3000"`
	Issuer               string        `env:"AUTH_ISSUER" envDefault:"go-accounts"`
	Audience             []string      `env:"AUTH_AUDIENCE" envSeparator:","`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads the configuration from the environment
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse environment configuration")
	}
	return cfg, nil
}

func (c *EnvConfig) GetActivationSigningKey() string { return c.ActivationSigningKey }

func (c *EnvConfig) GetAccessSigningKey() string { return c.AccessSigningKey }

func (c *EnvConfig) GetRefreshSigningKey() string { return c.RefreshSigningKey }

func (c *EnvConfig) GetActivationTokenTTL() time.Duration { return c.ActivationTokenTTL }

func (c *EnvConfig) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

func (c *EnvConfig) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

func (c *EnvConfig) GetOTPTTL() time.Duration { return c.OTPTTL }

func (c *EnvConfig) GetOTPMaxAttempts() int { return c.OTPMaxAttempts }

func (c *EnvConfig) GetPasswordMinLength() int { return c.PasswordMinLength }

func (c *EnvConfig) GetBaseURL() string { return c.BaseURL }

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetAudience() []string { return c.Audience }
