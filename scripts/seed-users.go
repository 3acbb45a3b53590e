package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Seeds the users read model with sample students and parents. Account
// registration lives in a separate service, so local development needs this
// to exercise the linking flow. Safe to run repeatedly.

type seedUser struct {
	role     string
	fullName string
	email    string
}

var seedUsers = []seedUser{
	{"student", "Sana Kim", "sana@example.com"},
	{"student", "Haru Lee", "haru@example.com"},
	{"parent", "Minho Kim", "minho@example.com"},
	{"parent", "Jiwoo Park", "jiwoo@example.com"},
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: DATABASE_URL=postgres://... go run scripts/seed-users.go\n")
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	for _, u := range seedUsers {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (id, role, full_name, email)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name
			RETURNING id
		`, uuid.NewString(), u.role, u.fullName, u.email).Scan(&id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: seed %s: %v\n", u.email, err)
			os.Exit(1)
		}
		fmt.Printf("%-8s %s  %s <%s>\n", u.role, id, u.fullName, u.email)
	}
}
