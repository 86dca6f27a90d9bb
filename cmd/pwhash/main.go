// Command pwhash prints a bcrypt hash for a users table row.
//
//	pwhash            prompts for the password without echo
//	pwhash -stdin     reads the password from the first line of stdin
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/machinewatch/internal/common"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
	"golang.org/x/term"
)

func main() {
	fromStdin := flag.Bool("stdin", false, "read the password from stdin")
	flag.Parse()

	password, err := readPassword(*fromStdin)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	defer common.WipeByteArray(password)

	if len(password) == 0 {
		log.Fatal("empty password")
	}

	hash, err := credentials.HashPassword(string(password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}

func readPassword(fromStdin bool) ([]byte, error) {
	if fromStdin || !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return pw, err
}
