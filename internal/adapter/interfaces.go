// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport to the external cipher (vault)
// service.
//
// The primary abstraction is [VaultAdapter], which decouples the encryption
// hooks from the underlying protocol. The package ships an HTTP/JSON
// implementation ([NewHTTPVaultAdapter]) and a prometheus decorator
// ([NewVaultAdapterWithMetrics]).
//
// Error values defined in errors.go let callers tell configuration problems
// ([ErrVaultNotConfigured]) from transport failures ([ErrTransport]) and
// protocol violations ([ErrIntegrity]) with [errors.Is].
package adapter

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/vault_adapter_mock.go -package=mock

// VaultAdapter turns an ordered list of strings into their encrypted or
// decrypted counterparts with one call to the cipher service.
//
// The returned slice always has the same length and order as values. The
// bearer credential is taken from the security context carried by ctx.
type VaultAdapter interface {
	// EncryptBatch encrypts values. Returns [ErrEmptyBatch] for empty input,
	// [ErrVaultNotConfigured] when no service URL is set and
	// secctx.ErrNoCredential when ctx carries no credential, all before any
	// network call.
	EncryptBatch(ctx context.Context, values []string) ([]string, error)

	// DecryptBatch decrypts values. Same contract as EncryptBatch.
	DecryptBatch(ctx context.Context, values []string) ([]string, error)
}
