// One-off: go run scripts/genhash.go [password] [cost]
// Prints a bcrypt digest usable as a users.password_hash value.
package main

import (
	"fmt"
	"os"
	"strconv"

	"Tasker/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := "admin"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	cost := bcrypt.DefaultCost
	if len(os.Args) > 2 {
		c, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid cost %q: %v\n", os.Args[2], err)
			os.Exit(2)
		}
		cost = c
	}
	h, err := auth.NewBcryptHasher(cost).Hash(password)
	if err != nil {
		panic(err)
	}
	fmt.Print(h)
}
