// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package secctx

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-cix-vault/internal/logger"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRefreshSkew is how long before expiry a credential is refreshed.
	DefaultRefreshSkew = 30 * time.Second

	// DefaultRefreshTimeout bounds a single refresh call.
	DefaultRefreshTimeout = 5 * time.Second
)

// RefreshFunc obtains a new access token. It receives a context that is not
// cancelled when the caller that started the refresh goes away, but that
// carries the coordinator's timeout.
type RefreshFunc func(ctx context.Context) (string, error)

// RefreshCoordinator runs at most one refresh per key at a time.
//
// The in-flight map is a [singleflight.Group]: the lookup and insert happen
// under one lock, and the entry is dropped as soon as the refresh returns,
// whatever its outcome. A later near-expiry check therefore starts a fresh
// refresh.
type RefreshCoordinator struct {
	group   singleflight.Group
	skew    time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewRefreshCoordinator builds a coordinator. Non-positive skew or timeout
// fall back to [DefaultRefreshSkew] and [DefaultRefreshTimeout].
func NewRefreshCoordinator(skew, timeout time.Duration) *RefreshCoordinator {
	if skew <= 0 {
		skew = DefaultRefreshSkew
	}
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &RefreshCoordinator{
		skew:    skew,
		timeout: timeout,
		now:     time.Now,
	}
}

// NeedsRefresh reports whether a credential expiring at expiresAt is inside
// the skew window (or already expired).
func (c *RefreshCoordinator) NeedsRefresh(expiresAt time.Time) bool {
	return !c.now().Add(c.skew).Before(expiresAt)
}

// RefreshIfNeeded refreshes the credential identified by key when it is
// near expiry.
//
// If expiresAt is further away than the skew window it returns
// ("", false, nil) without doing anything. Otherwise it joins the in-flight
// refresh for key, or starts fn if there is none, and returns the new token
// with refreshed set to true. A failed refresh is returned to every waiter
// wrapped in [ErrRefreshFailed].
//
// ctx only bounds how long this caller waits: cancelling it does not cancel
// the refresh other callers may be waiting on.
func (c *RefreshCoordinator) RefreshIfNeeded(ctx context.Context, key string, expiresAt time.Time, fn RefreshFunc) (string, bool, error) {
	if !c.NeedsRefresh(expiresAt) {
		return "", false, nil
	}

	log := logger.FromContext(ctx)
	fp := keyFingerprint(key)

	ch := c.group.DoChan(key, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		log.Debug().Str("refresh_key", fp).Time("expires_at", expiresAt).Msg("starting credential refresh")
		return fn(rctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("refresh_key", fp).Bool("shared", res.Shared).Msg("credential refresh failed")
			return "", false, fmt.Errorf("%w: %w", ErrRefreshFailed, res.Err)
		}
		token, _ := res.Val.(string)
		log.Debug().Str("refresh_key", fp).Bool("shared", res.Shared).Msg("credential refreshed")
		return token, true, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}
