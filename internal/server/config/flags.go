package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/avelmore/deckvault/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-o string   comma-separated list of allowed CORS origins
//	-n int      price cache size (entries)
//	-l int      price cache TTL, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-o", "-n", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	corsOrigins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "allowed CORS origins (comma-separated)")

	fs.IntVar(&config.PriceCacheSize, "n", config.PriceCacheSize, "price cache size (entries)")
	priceCacheTTL := fs.Int("l", int(config.PriceCacheTTL.Minutes()), "price cache TTL (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.PriceCacheTTL = time.Duration(*priceCacheTTL) * time.Minute

	if *corsOrigins == "" {
		config.CORSAllowedOrigins = nil
	} else {
		config.CORSAllowedOrigins = strings.Split(*corsOrigins, ",")
	}
}
