package providers

import (
	"github.com/samber/do/v2"

	"github.com/booknook/booknook-server/internal/auth"
	"github.com/booknook/booknook-server/internal/config"
	"github.com/booknook/booknook-server/internal/logger"
)

// AuthKey is the hex-encoded PASETO symmetric key.
type AuthKey string

// ProvideAuthKey loads or generates the token signing key under the data path.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return "", err
	}

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(keyHex), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(authKey), cfg.Auth.AccessTokenDuration)
}

// FederatedVerifierHandle wraps the federated verifier. Verifier is nil when
// no identity provider is configured, which disables the federated token path.
type FederatedVerifierHandle struct {
	Verifier *auth.FederatedVerifier
}

// ProvideFederatedVerifier provides the JWKS-backed provider token verifier.
func ProvideFederatedVerifier(i do.Injector) (*FederatedVerifierHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.FederatedEnabled() {
		log.Info("Federated identity disabled by configuration")
		return &FederatedVerifierHandle{Verifier: nil}, nil
	}

	verifier, err := auth.NewFederatedVerifier(auth.FederatedVerifierConfig{
		Issuer:   cfg.Federated.Issuer,
		Audience: cfg.Federated.Audience,
		JWKSURL:  cfg.Federated.JWKSURL,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Federated identity enabled",
		"provider", cfg.Federated.Provider,
		"issuer", cfg.Federated.Issuer,
	)

	return &FederatedVerifierHandle{Verifier: verifier}, nil
}
