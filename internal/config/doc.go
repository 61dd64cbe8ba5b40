// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// Unset fields receive defaults (vault timeout 2s, refresh skew 30s, ...)
// before validation. The main entry point is [GetStructuredConfig].
package config
