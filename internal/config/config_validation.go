// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "github.com/rs/zerolog"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if _, err := zerolog.ParseLevel(cfg.App.LogLevel); err != nil {
		return ErrInvalidAppConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout < 0 {
		return ErrInvalidServerConfigs
	}

	switch cfg.Storage.DB.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if cfg.Storage.DB.DSN == "" {
			return ErrInvalidStorageConfigs
		}
	default:
		return ErrInvalidStorageConfigs
	}

	if cfg.Vault.Timeout < 0 || cfg.Vault.BulkConcurrency < 0 {
		return ErrInvalidVaultConfigs
	}

	if cfg.OpenID.RefreshSkew < 0 || cfg.OpenID.Timeout < 0 {
		return ErrInvalidOpenIDConfigs
	}
	if cfg.OpenID.ReuseTokens && (cfg.OpenID.TokenURL == "" || cfg.OpenID.ClientID == "") {
		return ErrInvalidOpenIDConfigs
	}

	return nil
}
