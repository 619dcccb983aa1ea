// Command createadmin registers a back-office principal from the console.
// Admin accounts are never created through the HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/lumapay/paylink/internal/config"
	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/repository"
)

func main() {
	name := flag.String("name", "", "admin user name")
	password := flag.String("password", "", "password (prefer the interactive prompt)")
	email := flag.String("email", "", "email address")
	phone := flag.String("phone", "", "phone number")
	noInteractive := flag.Bool("no-interactive", false, "fail instead of prompting for missing fields")
	flag.Parse()

	// .env keeps DATABASE_URL out of the shell history
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	userName := strings.TrimSpace(*name)
	if userName == "" {
		if *noInteractive {
			fmt.Fprintln(os.Stderr, "Error: -name is required in non-interactive mode")
			os.Exit(1)
		}
		fmt.Print("Name: ")
		fmt.Scanln(&userName)
		userName = strings.TrimSpace(userName)
	}

	pass := *password
	if pass == "" {
		if *noInteractive {
			fmt.Fprintln(os.Stderr, "Error: -password is required in non-interactive mode")
			os.Exit(1)
		}
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			log.Fatalf("Failed to read password: %v", err)
		}
		pass = string(raw)
	}

	if userName == "" || pass == "" {
		fmt.Fprintln(os.Stderr, "Error: name and password are required")
		os.Exit(2)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		Name:         userName,
		Email:        strings.TrimSpace(*email),
		Phone:        strings.TrimSpace(*phone),
		PasswordHash: string(hash),
	}

	if err := repository.NewAdminRepository(db).Create(ctx, admin); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating admin: %v\n", err)
		os.Exit(3)
	}

	fmt.Printf("Admin registered: %s\n", admin.Name)
}
