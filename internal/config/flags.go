package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-driver database driver (sqlite3, pgx, memory)
//	-c/-config json file path with configs
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-vault-url cipher service base URL
//	-vault-timeout cipher call timeout
//	-vault-trace log every encryption hook invocation
//	-vault-bulk-concurrency documents encrypted in parallel on bulk insert
//	-openid-reuse-tokens use the session access token as credential
//	-openid-refresh-skew refresh session tokens this long before expiry
//	-openid-token-url identity provider token endpoint
//	-openid-client-id identity provider client id
//	-openid-client-secret identity provider client secret
//	-openid-timeout token refresh timeout
//	-app-version application version
//	-log-level log level (trace, debug, info, warn, error)
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN, databaseDriver string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var vault Vault
	var openID OpenID
	var app App

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&databaseDriver, "driver", "", "Database driver: sqlite3, pgx or memory")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")

	flag.StringVar(&vault.URL, "vault-url", "", "Cipher service base URL")
	flag.DurationVar(&vault.Timeout, "vault-timeout", 0, "Cipher service call timeout")
	flag.BoolVar(&vault.Trace, "vault-trace", false, "Log encryption hook invocations")
	flag.IntVar(&vault.BulkConcurrency, "vault-bulk-concurrency", 0, "Documents encrypted in parallel on bulk insert")

	flag.BoolVar(&openID.ReuseTokens, "openid-reuse-tokens", false, "Use session access token as credential")
	flag.DurationVar(&openID.RefreshSkew, "openid-refresh-skew", 0, "Refresh session tokens this long before expiry")
	flag.StringVar(&openID.TokenURL, "openid-token-url", "", "Identity provider token endpoint")
	flag.StringVar(&openID.ClientID, "openid-client-id", "", "Identity provider client id")
	flag.StringVar(&openID.ClientSecret, "openid-client-secret", "", "Identity provider client secret")
	flag.DurationVar(&openID.Timeout, "openid-timeout", 0, "Token refresh timeout")

	flag.StringVar(&app.Version, "app-version", "", "Application version")
	flag.StringVar(&app.LogLevel, "log-level", "", "Log level: trace, debug, info, warn or error")

	flag.Parse()

	return &StructuredConfig{
		App:    app,
		Vault:  vault,
		OpenID: openID,
		Storage: Storage{
			DB: DB{
				DSN:    databaseDSN,
				Driver: databaseDriver,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the default server address.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
