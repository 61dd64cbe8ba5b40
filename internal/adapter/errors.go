package adapter

import "errors"

var (
	ErrVaultNotConfigured = errors.New("cipher service is not configured")
	ErrEmptyBatch         = errors.New("empty cipher batch")
	ErrTransport          = errors.New("cipher service request failed")
	ErrIntegrity          = errors.New("cipher service response does not match request")
)
