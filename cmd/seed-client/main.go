// Command seed-client provisions an API client row so callers can
// authenticate against the service. It prints the generated key once;
// the key is not recoverable afterwards.
package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	var (
		name        = flag.String("name", "", "client name (required)")
		permissions = flag.String("permissions", "sessions:read,sessions:write,questions:read", "comma-separated permission list")
		dsn         = flag.String("dsn", os.Getenv("DATABASE_DSN"), "postgres connection string")
	)
	flag.Parse()

	if *name == "" {
		log.Fatal("-name is required")
	}
	if *dsn == "" {
		log.Fatal("-dsn or DATABASE_DSN is required")
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		log.Fatalf("failed to generate api key: %v", err)
	}

	perms := []string{}
	for _, p := range strings.Split(*permissions, ",") {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		log.Fatalf("failed to encode permissions: %v", err)
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	var id int
	err = db.QueryRow(
		`INSERT INTO api_clients (name, api_key, permissions) VALUES ($1, $2, $3) RETURNING id`,
		*name, apiKey, permsJSON,
	).Scan(&id)
	if err != nil {
		log.Fatalf("failed to insert client: %v", err)
	}

	fmt.Printf("created client %d (%s)\n", id, *name)
	fmt.Printf("api key: %s\n", apiKey)
	fmt.Printf("permissions: %s\n", strings.Join(perms, ", "))
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "ik_" + hex.EncodeToString(buf), nil
}
