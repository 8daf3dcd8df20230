package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var serverFlags = []string{
	"-a", "-m", "-s", "-d", "-k", "-b", "-t", "-l", "-f",
	"-conceal-reset-email", "-revoke-session-on-reset", "-connect-timeout",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-m string   metrics bind address, empty disables
//	-s string   store driver: postgres, sqlite, memory
//	-d string   database DSN
//	-k string   password hash algorithm: bcrypt, argon2id
//	-b int      bcrypt cost
//	-t int      random bytes per token
//	-l string   log level
//	-f string   log format: json, text
//	-conceal-reset-email       hide unknown emails on reset requests
//	-revoke-session-on-reset   log the user out when a reset is redeemed
//	-connect-timeout duration  database connect retry budget
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// parsers (-c) do not collide.
func parseFlags(config *Config) error {
	return parseFlagArgs(config, flagx.FilterArgs(os.Args[1:], serverFlags))
}

func parseFlagArgs(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.StoreDriver, "s", config.StoreDriver, "store driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PasswordHashAlgorithm, "k", config.PasswordHashAlgorithm, "password hash algorithm")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.TokenBytes, "t", config.TokenBytes, "random bytes per token")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	fs.BoolVar(&config.ConcealUnknownResetEmail, "conceal-reset-email", config.ConcealUnknownResetEmail, "hide unknown emails on reset requests")
	fs.BoolVar(&config.RevokeSessionOnReset, "revoke-session-on-reset", config.RevokeSessionOnReset, "clear the session when a reset is redeemed")
	fs.DurationVar(&config.DBConnectTimeout, "connect-timeout", config.DBConnectTimeout, "database connect retry budget")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
