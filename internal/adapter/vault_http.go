// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-cix-vault/internal/config"
	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"github.com/MKhiriev/go-cix-vault/internal/secctx"
	"github.com/MKhiriev/go-cix-vault/internal/utils"
	"github.com/MKhiriev/go-cix-vault/models"
	"github.com/go-resty/resty/v2"
)

const (
	encryptPath = "/encrypt"
	decryptPath = "/decrypt"
)

type httpVaultAdapter struct {
	client  *utils.HTTPClient
	baseURL string
	timeout time.Duration

	logger *logger.Logger
}

// NewHTTPVaultAdapter constructs an HTTP/JSON implementation of
// [VaultAdapter]. An empty vaultCfg.URL is accepted: the adapter is then
// built but every call fails with [ErrVaultNotConfigured].
//
// Returns an error if vaultCfg.URL is set but cannot be parsed as a valid
// URL.
func NewHTTPVaultAdapter(vaultCfg config.Vault, logger *logger.Logger) (VaultAdapter, error) {
	timeout := vaultCfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultVaultTimeout
	}

	var baseURL string
	if strings.TrimSpace(vaultCfg.URL) != "" {
		var err error
		baseURL, err = normalizeBaseURL(vaultCfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid vault url: %w", err)
		}
	}

	return &httpVaultAdapter{
		client:  utils.NewJSONClient(baseURL, 0),
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// EncryptBatch implements [VaultAdapter]. It POSTs values to {base}/encrypt.
func (h *httpVaultAdapter) EncryptBatch(ctx context.Context, values []string) ([]string, error) {
	return h.call(ctx, encryptPath, values)
}

// DecryptBatch implements [VaultAdapter]. It POSTs values to {base}/decrypt.
func (h *httpVaultAdapter) DecryptBatch(ctx context.Context, values []string) ([]string, error) {
	return h.call(ctx, decryptPath, values)
}

func (h *httpVaultAdapter) call(ctx context.Context, path string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, ErrEmptyBatch
	}
	if h.baseURL == "" {
		return nil, ErrVaultNotConfigured
	}
	token, err := secctx.RequireCredential(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.logger.Debug().Str("path", path).Int("count", len(values)).Msg("calling cipher service")

	resp, err := h.authedRequest(ctx, token).
		SetBody(models.CipherRequest{Values: values}).
		Post(path)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %s: %w", ErrTransport, path, h.timeout, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("%w: %s request: %w", ErrTransport, path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var out models.CipherResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", ErrTransport, path, err)
	}
	if !out.OK || out.Values == nil {
		msg := out.Error
		if msg == "" {
			msg = out.Message
		}
		if msg == "" {
			msg = "invalid response"
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrTransport, path, msg)
	}
	if len(out.Values) != len(values) {
		return nil, fmt.Errorf("%w: %s sent %d values, got %d", ErrIntegrity, path, len(values), len(out.Values))
	}

	return out.Values, nil
}

func (h *httpVaultAdapter) authedRequest(ctx context.Context, token string) *resty.Request {
	return h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token)
}
