package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "30s" or integer nanoseconds. Keys absent from the file keep their current
// value.
type JsonConfig struct {
	EndpointAddrGRPC         string         `json:"endpoint_addr_grpc"`
	MetricsAddr              string         `json:"metrics_addr"`
	StoreDriver              string         `json:"store_driver"`
	DatabaseDSN              string         `json:"database_dsn"`
	PasswordHashAlgorithm    string         `json:"password_hash_algorithm"`
	BcryptCost               int            `json:"bcrypt_cost"`
	TokenBytes               int            `json:"token_bytes"`
	LogLevel                 string         `json:"log_level"`
	LogFormat                string         `json:"log_format"`
	ConcealUnknownResetEmail bool           `json:"conceal_unknown_reset_email"`
	RevokeSessionOnReset     bool           `json:"revoke_session_on_reset"`
	DBConnectTimeout         timex.Duration `json:"db_connect_timeout"`
}

// parseJSON overlays the file named by -c/-config or GOPHAUTH_CONFIG.
func parseJSON(config *Config) error {
	path := flagx.ConfigFilePath()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return applyJSON(config, file)
}

func applyJSON(config *Config, data []byte) error {
	// seeding with current values keeps absent keys untouched
	c := &JsonConfig{
		EndpointAddrGRPC:         config.EndpointAddrGRPC,
		MetricsAddr:              config.MetricsAddr,
		StoreDriver:              config.StoreDriver,
		DatabaseDSN:              config.DatabaseDSN,
		PasswordHashAlgorithm:    config.PasswordHashAlgorithm,
		BcryptCost:               config.BcryptCost,
		TokenBytes:               config.TokenBytes,
		LogLevel:                 config.LogLevel,
		LogFormat:                config.LogFormat,
		ConcealUnknownResetEmail: config.ConcealUnknownResetEmail,
		RevokeSessionOnReset:     config.RevokeSessionOnReset,
		DBConnectTimeout:         timex.Duration{Duration: config.DBConnectTimeout},
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.MetricsAddr = c.MetricsAddr
	config.StoreDriver = c.StoreDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.PasswordHashAlgorithm = c.PasswordHashAlgorithm
	config.BcryptCost = c.BcryptCost
	config.TokenBytes = c.TokenBytes
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.ConcealUnknownResetEmail = c.ConcealUnknownResetEmail
	config.RevokeSessionOnReset = c.RevokeSessionOnReset
	config.DBConnectTimeout = c.DBConnectTimeout.Duration
	return nil
}
