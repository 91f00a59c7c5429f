package main

import (
	"flag"
	"fmt"
	"os"

	"VolunteerHub/pkg/logger"
	"VolunteerHub/pkg/token"
)

// tokenctl mints and inspects volunteer access tokens, for local
// development and support work.
//
//	tokenctl -uid 123456
//	tokenctl -parse eyJhbGciOi...
func main() {
	uid := flag.Int64("uid", 0, "volunteer public ID to mint a token for")
	parse := flag.String("parse", "", "token string to validate and decode")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	if err := token.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "tokenctl: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *parse != "":
		userID, err := token.ParseToken(*parse)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tokenctl: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("uid=%d\n", userID)

	case *uid > 0:
		accessToken, expiresIn, err := token.GenerateToken(*uid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tokenctl: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n", accessToken)
		fmt.Fprintf(os.Stderr, "expires in %ds\n", expiresIn)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
