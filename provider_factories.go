package gateways

import (
	"github.com/goliatone/go-gateways/core"
	"github.com/goliatone/go-gateways/providers/ozow"
	"github.com/goliatone/go-gateways/providers/payfast"
	"github.com/goliatone/go-gateways/providers/whatsapp"
	"github.com/goliatone/go-gateways/providers/yoco"
)

func OzowRegistration(cfg ozow.Config) core.WebhookRegistration {
	return ozow.Registration(cfg)
}

func PayFastRegistration(cfg payfast.Config) core.WebhookRegistration {
	return payfast.Registration(cfg)
}

func YocoRegistration(cfg yoco.Config) core.WebhookRegistration {
	return yoco.Registration(cfg)
}

func WhatsAppRegistration(cfg whatsapp.Config) core.WebhookRegistration {
	return whatsapp.Registration(cfg)
}

// RegisterProviders wires every configured provider into the service
// registry. Providers without configuration are skipped, not failed: a
// deployment that only accepts Ozow notifications should not need Yoco
// secrets.
func RegisterProviders(service *core.Service, cfg core.ProvidersConfig) error {
	if cfg.Ozow != (core.OzowConfig{}) {
		reg := OzowRegistration(ozow.Config{
			SiteCode:   cfg.Ozow.SiteCode,
			PrivateKey: cfg.Ozow.PrivateKey,
		})
		if err := service.RegisterWebhook(reg); err != nil {
			return err
		}
	}
	if cfg.PayFast != (core.PayFastConfig{}) {
		reg := PayFastRegistration(payfast.Config{
			MerchantID:  cfg.PayFast.MerchantID,
			MerchantKey: cfg.PayFast.MerchantKey,
			Passphrase:  cfg.PayFast.Passphrase,
		})
		if err := service.RegisterWebhook(reg); err != nil {
			return err
		}
	}
	if cfg.Yoco != (core.YocoConfig{}) {
		reg := YocoRegistration(yoco.Config{SecretKey: cfg.Yoco.SecretKey})
		if err := service.RegisterWebhook(reg); err != nil {
			return err
		}
	}
	if cfg.WhatsApp != (core.WhatsAppConfig{}) {
		reg := WhatsAppRegistration(whatsapp.Config{WebhookToken: cfg.WhatsApp.WebhookToken})
		if err := service.RegisterWebhook(reg); err != nil {
			return err
		}
	}
	return nil
}

// Setup builds a service and registers every provider named in the
// resolved configuration.
func Setup(cfg Config, opts ...Option) (*Service, error) {
	service, err := NewService(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := RegisterProviders(service, service.Config().Providers); err != nil {
		return nil, err
	}
	return service, nil
}
