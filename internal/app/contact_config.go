package app

import (
	"strings"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/captcha"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
)

// VerifierConfig converts CaptchaConfig to the captcha package representation.
func (c CaptchaConfig) VerifierConfig() captcha.Config {
	return captcha.Config{
		TurnstileSecret:    strings.TrimSpace(c.TurnstileSecret),
		HCaptchaSecret:     strings.TrimSpace(c.HCaptchaSecret),
		RecaptchaSecret:    strings.TrimSpace(c.RecaptchaSecret),
		RecaptchaMinScore:  c.RecaptchaMinScore,
		RecaptchaAction:    c.RecaptchaAction,
		Timeout:            c.Timeout,
		TurnstileVerifyURL: c.TurnstileVerifyURL,
		HCaptchaVerifyURL:  c.HCaptchaVerifyURL,
		RecaptchaVerifyURL: c.RecaptchaVerifyURL,
	}
}

// SiteKey returns the public widget key for provider.
func (c CaptchaConfig) SiteKey(provider string) string {
	switch provider {
	case captcha.ProviderTurnstile:
		return strings.TrimSpace(c.TurnstileSiteKey)
	case captcha.ProviderHCaptcha:
		return strings.TrimSpace(c.HCaptchaSiteKey)
	case captcha.ProviderRecaptcha:
		return strings.TrimSpace(c.RecaptchaSiteKey)
	default:
		return ""
	}
}

// Settings converts ContactConfig into the contact service settings.
func (c ContactConfig) Settings(canonicalHost string) services.ContactSettings {
	return services.ContactSettings{
		MinMessageLength: c.MinMessageLength,
		Limits: services.ContactLimits{
			PerMinute: c.Limits.PerMinute,
			PerHour:   c.Limits.PerHour,
			PerDay:    c.Limits.PerDay,
		},
		Dev: services.DevLimits{
			Burst:        c.Dev.Burst,
			BurstWindow:  c.Dev.BurstWindow,
			PerHour:      c.Dev.PerHour,
			PerDay:       c.Dev.PerDay,
			DedupeWindow: c.Dev.DedupeWindow,
		},
		CanonicalHost:  canonicalHost,
		NotifyTo:       c.NotifyTo,
		FingerprintKey: []byte(c.FingerprintKey),
	}
}
