// Command hashpw reads a password from the terminal without echo and prints
// its bcrypt hash, for seeding user rows by hand.
//
// Usage:
//
//	hashpw [-w cost]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/DmytroLysachenko/safe-vault/internal/server/auth"
)

// readPassword is a seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {

	cost := flag.Int("w", auth.DefaultCost, "bcrypt work factor")
	flag.Parse()

	hasher, err := auth.NewHasher(*cost)
	if err != nil {
		log.Fatalf("hasher init error: %v", err)
	}

	fmt.Fprint(os.Stderr, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("error reading password: %v", err)
	}

	hash, err := hasher.Hash(string(pw))
	if err != nil {
		log.Fatalf("error hashing password: %v", err)
	}

	fmt.Println(hash)
}
