package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Version  string `json:"version"`
		LogLevel string `json:"log_level"`
	} `json:"app,omitempty"`

	Vault struct {
		URL             string   `json:"url"`
		Timeout         Duration `json:"timeout"`
		Trace           bool     `json:"trace"`
		BulkConcurrency int      `json:"bulk_concurrency"`
	} `json:"vault,omitempty"`

	OpenID struct {
		ReuseTokens  bool     `json:"reuse_tokens"`
		RefreshSkew  Duration `json:"refresh_skew"`
		TokenURL     string   `json:"token_url"`
		ClientID     string   `json:"client_id"`
		ClientSecret string   `json:"client_secret"`
		Timeout      Duration `json:"timeout"`
	} `json:"openid,omitempty"`

	Storage struct {
		DB struct {
			DSN    string `json:"dsn"`
			Driver string `json:"driver"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Version:  jsonCfg.App.Version,
			LogLevel: jsonCfg.App.LogLevel,
		},
		Vault: Vault{
			URL:             jsonCfg.Vault.URL,
			Timeout:         time.Duration(jsonCfg.Vault.Timeout),
			Trace:           jsonCfg.Vault.Trace,
			BulkConcurrency: jsonCfg.Vault.BulkConcurrency,
		},
		OpenID: OpenID{
			ReuseTokens:  jsonCfg.OpenID.ReuseTokens,
			RefreshSkew:  time.Duration(jsonCfg.OpenID.RefreshSkew),
			TokenURL:     jsonCfg.OpenID.TokenURL,
			ClientID:     jsonCfg.OpenID.ClientID,
			ClientSecret: jsonCfg.OpenID.ClientSecret,
			Timeout:      time.Duration(jsonCfg.OpenID.Timeout),
		},
		Storage: Storage{
			DB: DB{
				DSN:    jsonCfg.Storage.DB.DSN,
				Driver: jsonCfg.Storage.DB.Driver,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
