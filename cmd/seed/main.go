// Command seed creates demo users with wallets and prints development
// tokens for them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"walletledger/internal/config"
	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/utils"

	"go.uber.org/zap"
)

type seedUser struct {
	email string
	name  string
	role  string
}

func defaultUsers(adminEmail string) []seedUser {
	return []seedUser{
		{email: adminEmail, name: "Ledger Admin", role: models.RoleAdmin},
		{email: "alice@example.com", name: "Alice", role: models.RoleUser},
		{email: "bob@example.com", name: "Bob", role: models.RoleUser},
	}
}

func main() {
	reset := flag.Bool("reset", false, "drop and recreate every ledger table first")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed development tokens")
	flag.Parse()

	config.LoadEnv()
	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to seed a production environment")
	}

	db, err := repositories.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if *reset {
		if err := repositories.ResetDatabase(db); err != nil {
			log.Fatal("failed to reset database", zap.Error(err))
		}
		log.Info("database reset")
	} else if err := repositories.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	users := repositories.NewUserRepository(db)
	wallets := repositories.NewWalletRepository(db)

	adminEmail := config.GetEnv("ADMIN_EMAIL", "admin@example.com")
	for _, su := range defaultUsers(adminEmail) {
		u, err := ensureUser(ctx, users, su)
		if err != nil {
			log.Fatal("failed to seed user", zap.String("email", su.email), zap.Error(err))
		}
		if _, err := wallets.GetOrCreate(ctx, u.ID); err != nil {
			log.Fatal("failed to create wallet", zap.Uint("user_id", u.ID), zap.Error(err))
		}

		line := fmt.Sprintf("%-6s %-22s id=%d", u.Role, u.Email, u.ID)
		if cfg.Auth.JWTSecret != "" {
			tok, err := utils.GenerateToken(cfg.Auth.JWTSecret, &models.UserClaims{
				UserID: u.ID, Email: u.Email, Role: u.Role,
			}, *tokenTTL)
			if err != nil {
				log.Fatal("failed to sign token", zap.Error(err))
			}
			line += " token=" + tok
		}
		fmt.Println(line)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, no tokens printed")
	}
}

func ensureUser(ctx context.Context, users repositories.UserRepository, su seedUser) (*models.User, error) {
	existing, err := users.GetByEmail(ctx, su.email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}
	u := &models.User{Email: strings.ToLower(su.email), Name: su.name, Role: su.role}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
