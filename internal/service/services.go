package service

import (
	"fmt"

	"github.com/MKhiriev/go-cix-vault/internal/adapter"
	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/internal/store"
	"github.com/MKhiriev/go-cix-vault/models"
)

type Services struct {
	AppInfoService AppInfoService
	TokenService   TokenService
	Collections    *store.Collections
}

// NewServices wires the services over storages. Vault hooks are registered
// on every model with a default encryption spec before the collections are
// built, so each collection's schema gets them exactly once.
func NewServices(storages *store.Storages, vault adapter.VaultAdapter, cfg config.StructuredConfig, log *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, log)
	if err != nil {
		return nil, err
	}

	registry := store.NewPluginRegistry()
	encryptor := NewFieldEncryptor(vault, cfg.Vault, log)
	if err = RegisterVaultEncryption(registry, encryptor, cfg.Vault, models.DefaultEncryptionSpecs(), log); err != nil {
		return nil, fmt.Errorf("registering vault encryption: %w", err)
	}

	coordinator := secctx.NewRefreshCoordinator(cfg.OpenID.RefreshSkew, cfg.OpenID.Timeout)

	return &Services{
		AppInfoService: appInfo,
		TokenService:   NewTokenService(storages.Sessions, coordinator, NewOAuth2Refresher(cfg.OpenID), cfg.OpenID, log),
		Collections:    store.NewCollections(storages.Documents, registry),
	}, nil
}
