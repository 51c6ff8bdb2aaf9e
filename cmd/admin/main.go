// Command admin bootstraps the first admin account directly against the
// store, bypassing the HTTP registration flow which only creates regular
// users.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/evaluatorhub/backend/internal/domain"
	"github.com/evaluatorhub/backend/internal/infrastructure/logger"
	"github.com/evaluatorhub/backend/internal/repository"
	"github.com/evaluatorhub/backend/pkg/config"
	"github.com/evaluatorhub/backend/pkg/database"
)

func main() {
	name := flag.String("name", "", "display name for the admin account")
	email := flag.String("email", "", "email address for the admin account")
	password := flag.String("password", "", "password for the admin account (min 6 characters)")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: admin -name NAME -email EMAIL -password PASSWORD")
		os.Exit(1)
	}
	if len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "password must be at least 6 characters long")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	users := repository.NewPostgresUserRepository(pool.GetDB(), log)

	normalized := strings.ToLower(strings.TrimSpace(*email))
	if existing, err := users.GetByEmail(ctx, normalized); err == nil && existing != nil {
		fmt.Fprintf(os.Stderr, "account %s already exists\n", normalized)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	admin := &domain.User{
		Name:         strings.TrimSpace(*name),
		Email:        normalized,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
	}

	if err := users.Create(ctx, admin); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin account: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin account created: %s (%s)\n", admin.Email, admin.ID)
}
