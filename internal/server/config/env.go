package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const envPrefix = "GOPHAUTH_"

// parseEnv overlays GOPHAUTH_* variables that are set and non-empty.
func parseEnv(config *Config) error {
	strs := map[string]*string{
		"GRPC_ADDR":     &config.EndpointAddrGRPC,
		"METRICS_ADDR":  &config.MetricsAddr,
		"STORE_DRIVER":  &config.StoreDriver,
		"DATABASE_DSN":  &config.DatabaseDSN,
		"PASSWORD_HASH": &config.PasswordHashAlgorithm,
		"LOG_LEVEL":     &config.LogLevel,
		"LOG_FORMAT":    &config.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"BCRYPT_COST": &config.BcryptCost,
		"TOKEN_BYTES": &config.TokenBytes,
	}
	for name, dst := range ints {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"CONCEAL_RESET_EMAIL":     &config.ConcealUnknownResetEmail,
		"REVOKE_SESSION_ON_RESET": &config.RevokeSessionOnReset,
	}
	for name, dst := range bools {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = b
		}
	}

	if v, ok := lookup("DB_CONNECT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sDB_CONNECT_TIMEOUT: %w", envPrefix, err)
		}
		config.DBConnectTimeout = d
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	return v, ok && v != ""
}
