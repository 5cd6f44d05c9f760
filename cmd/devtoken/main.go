// Command devtoken prints a CUSTOMER access token signed with JWT_SECRET,
// for exercising the API locally without a login service. Only JWT_SECRET
// and ACCESS_TOKEN_TTL_MIN are read.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/session"
	"github.com/iliyamo/cinema-seat-booking/internal/utils"
)

func main() {
	cfg, err := config.LoadAuth()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	user := flag.Uint64("user", 1, "user id to put in sub")
	role := flag.String("role", session.RoleCustomer, "role claim")
	ttl := flag.Duration("ttl", cfg.AccessTTL, "token lifetime")
	flag.Parse()

	tok, err := utils.NewAccessToken(cfg.JWTSecret, *user, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
