package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string     HTTP bind address (":8080")
//	-g string     gRPC health bind address (":50051")
//	-r string     storage driver: postgres | mongo
//	-d string     PostgreSQL DSN
//	-m string     MongoDB URI
//	-s string     JWT HMAC secret
//	-t duration   access token lifetime ("24h")
//	-o duration   OTP lifetime ("10m")
//	-origin string  allowed CORS origin
//	-l string     log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-r", "-d", "-m", "-s", "-t", "-o", "-origin", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrHealth, "g", config.EndpointAddrHealth, "gRPC health address and port")
	fs.StringVar(&config.StorageDriver, "r", config.StorageDriver, "storage driver (postgres|mongo)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.DurationVar(&config.OTPValidityDuration, "o", config.OTPValidityDuration, "otp validity")
	fs.StringVar(&config.CORSAllowedOrigin, "origin", config.CORSAllowedOrigin, "allowed CORS origin")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
