// Command token issues a bearer token for a chat party, for local testing
// and service-to-service setup.
package main

import (
	"MarketChat/entity"
	"MarketChat/internal/config"
	"MarketChat/internal/service/auth"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	partyType := flag.String("type", "USER", "party type: USER or BUSINESS")
	partyID := flag.String("id", "", "party id")
	flag.Parse()

	conf := config.MustLoad(*configPath)

	t, err := entity.ParseSenderType(*partyType)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	authService, err := auth.NewAuthService(conf, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := authService.Issue(entity.Party{ID: *partyID, Type: t})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
