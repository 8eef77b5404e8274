// cmd/genhash prints a bcrypt hash for the password given as first argument.
// Uso: go run ./cmd/genhash <password> [cost]
package main

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <password> [cost]")
		os.Exit(2)
	}
	cost := bcrypt.DefaultCost
	if len(os.Args) > 2 {
		c, err := strconv.Atoi(os.Args[2])
		if err != nil || c < bcrypt.MinCost || c > bcrypt.MaxCost {
			fmt.Fprintf(os.Stderr, "cost invalido: %s\n", os.Args[2])
			os.Exit(2)
		}
		cost = c
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), cost)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(h))
}
