// Command lifetoken manages the API token the server reads when
// LIFE_API_TOKEN is unset.
//
//	lifetoken generate     store a fresh random token and print it
//	lifetoken set TOKEN    store TOKEN
//	lifetoken show         print the stored token
//	lifetoken clear        remove the stored token
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/MJE43/life-tick-go/internal/appdata"
	"github.com/MJE43/life-tick-go/internal/authtoken"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lifetoken: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	fallback, err := appdata.Path(appdata.TokenFileName)
	if err != nil {
		log.Printf("appdata mkdir failed: %v; using %s", err, fallback)
	}
	store := authtoken.NewStore(authtoken.DefaultService, fallback)

	switch os.Args[1] {
	case "generate":
		token := authtoken.NewToken()
		if err := store.Set(token); err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
	case "set":
		if len(os.Args) != 3 {
			usage()
			os.Exit(2)
		}
		if err := store.Set(os.Args[2]); err != nil {
			log.Fatal(err)
		}
	case "show":
		token, err := store.Get()
		if errors.Is(err, authtoken.ErrNotFound) {
			log.Fatal("no token stored")
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
	case "clear":
		if err := store.Clear(); err != nil {
			log.Fatal(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: lifetoken generate | set TOKEN | show | clear")
}
