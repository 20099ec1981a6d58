package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"storefront-admin/database"
	"storefront-admin/models"
	"storefront-admin/repository"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "create-admin",
		Usage: "create an admin account for the storefront panel",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, Usage: "admin email"},
			&cli.StringFlag{Name: "password", EnvVars: []string{"ADMIN_PASSWORD"}, Usage: "admin password (min 8 characters)"},
			&cli.StringFlag{Name: "db-host", EnvVars: []string{"POSTGRES_HOST"}, Value: "localhost"},
			&cli.StringFlag{Name: "db-port", EnvVars: []string{"POSTGRES_PORT"}, Value: "5432"},
			&cli.StringFlag{Name: "db-user", EnvVars: []string{"POSTGRES_USER"}},
			&cli.StringFlag{Name: "db-password", EnvVars: []string{"POSTGRES_PASSWORD"}},
			&cli.StringFlag{Name: "db-name", EnvVars: []string{"POSTGRES_DB"}},
			&cli.StringFlag{Name: "db-sslmode", EnvVars: []string{"POSTGRES_SSLMODE"}, Value: "disable"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.Connect(database.Config{
		Host:     c.String("db-host"),
		Port:     c.String("db-port"),
		User:     c.String("db-user"),
		Password: c.String("db-password"),
		Name:     c.String("db-name"),
		SSLMode:  c.String("db-sslmode"),
	}, logger, database.Options{Attempts: 1}, &models.AdminUser{})
	if err != nil {
		return err
	}
	defer database.Close(db)

	user, err := createAdmin(c.Context, repository.NewGormUserRepository(db), c.String("email"), c.String("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s created (id %s)\n", user.Email, user.ID)
	return nil
}

var errWeakPassword = errors.New("password must be at least 8 characters")

// createAdmin hashes password and stores an active admin account.
func createAdmin(ctx context.Context, users repository.UserRepository, email, password string, cost int) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < 8 {
		return nil, errWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}
