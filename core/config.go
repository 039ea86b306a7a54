package core

import (
	"fmt"
	"strings"
	"time"
)

// DefaultRefreshLeadWindow is how far before expiry credentials refresh
// proactively.
const DefaultRefreshLeadWindow = 5 * time.Minute

type OzowConfig struct {
	SiteCode   string `koanf:"site_code" mapstructure:"site_code"`
	PrivateKey string `koanf:"private_key" mapstructure:"private_key"`
}

type PayFastConfig struct {
	MerchantID  string `koanf:"merchant_id" mapstructure:"merchant_id"`
	MerchantKey string `koanf:"merchant_key" mapstructure:"merchant_key"`
	Passphrase  string `koanf:"passphrase" mapstructure:"passphrase"`
}

type YocoConfig struct {
	SecretKey string `koanf:"secret_key" mapstructure:"secret_key"`
}

type WhatsAppConfig struct {
	WebhookToken string `koanf:"webhook_token" mapstructure:"webhook_token"`
}

type ProvidersConfig struct {
	Ozow     OzowConfig     `koanf:"ozow" mapstructure:"ozow"`
	PayFast  PayFastConfig  `koanf:"payfast" mapstructure:"payfast"`
	Yoco     YocoConfig     `koanf:"yoco" mapstructure:"yoco"`
	WhatsApp WhatsAppConfig `koanf:"whatsapp" mapstructure:"whatsapp"`
}

type Config struct {
	ServiceName       string          `koanf:"service_name" mapstructure:"service_name"`
	TokenURL          string          `koanf:"token_url" mapstructure:"token_url"`
	RefreshLeadWindow time.Duration   `koanf:"refresh_lead_window" mapstructure:"refresh_lead_window"`
	Providers         ProvidersConfig `koanf:"providers" mapstructure:"providers"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:       "gateways",
		RefreshLeadWindow: DefaultRefreshLeadWindow,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.RefreshLeadWindow < 0 {
		return fmt.Errorf("core: refresh_lead_window must not be negative")
	}
	return nil
}
