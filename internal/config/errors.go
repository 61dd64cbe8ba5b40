package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid application settings
	// (for example, an unknown log level).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidServerConfigs indicates invalid server settings
	// (for example, missing listen address).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an unknown driver or an empty DSN for a SQL driver).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidVaultConfigs indicates invalid cipher service settings
	// (for example, a negative timeout).
	ErrInvalidVaultConfigs = errors.New("invalid vault configuration")
	// ErrInvalidOpenIDConfigs indicates invalid identity-provider settings
	// (for example, token reuse enabled without a token URL).
	ErrInvalidOpenIDConfigs = errors.New("invalid openid configuration")
)
