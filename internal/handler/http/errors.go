// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrInvalidBody is returned when a request body is not the JSON shape
	// the route expects.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrRouteNotFound is reported for paths no route matches.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMethodNotAllowed is reported when the path matches but the method
	// does not.
	ErrMethodNotAllowed = errors.New("method not allowed")
)
