package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/local-auth/pkg/config"
	"github.com/tendant/local-auth/pkg/identity"
	"github.com/tendant/local-auth/pkg/login"
	"github.com/tendant/local-auth/pkg/provision"
)

type Config struct {
	DbConfig       config.DatabaseConfig
	PasswordConfig config.PasswordConfig
}

func main() {
	// Parse command line arguments
	user := flag.String("user", "", "Email or id of the existing user whose password will be reset. Either -user or -create must be given.")
	create := flag.String("create", "", "Create a new user with this email before setting the password. Either -user or -create must be given.")
	password := flag.String("password", "", "Optional. The password to set. A random password is generated when omitted.")
	displayName := flag.String("display-name", "", "Optional, valid with -create. Defaults to the email address.")
	isAdmin := flag.Bool("is-admin", false, "Optional, valid with -create. Create the user as an admin user.")
	cost := flag.Int("cost", 0, "Optional. Hash cost factor, must be >= 10. Default is 12. Cost grows exponentially with the factor.")
	flag.Parse()

	// an explicit -cost value, even an invalid one like 0, must go through
	// validation; only an absent flag means the default
	var costFactor *int
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "cost" {
			costFactor = cost
		}
	})

	if *user == "" && *create == "" {
		fmt.Println("Error: either -user or -create is required")
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration from environment variables
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	// Connect to the database
	dbConfig := cfg.DbConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(1)
	}

	repo := identity.NewPostgresRepository(pool)
	service := provision.NewService(repo, login.BcryptHasher{}, provision.Options{
		DefaultCostFactor:       cfg.PasswordConfig.DefaultCostFactor,
		MinCostFactor:           cfg.PasswordConfig.MinCostFactor,
		MinPasswordLength:       cfg.PasswordConfig.MinPasswordLength,
		GeneratedPasswordLength: cfg.PasswordConfig.GeneratedPasswordLength,
	}).WithTxBeginner(pool)

	result, err := service.SetPassword(context.Background(), provision.Params{
		User:        *user,
		Create:      *create,
		DisplayName: *displayName,
		IsAdmin:     *isAdmin,
		Password:    *password,
		CostFactor:  costFactor,
	})
	if err != nil {
		slog.Error("Failed to set user password", "err", err)
		os.Exit(1)
	}

	fmt.Printf("Password for user (id: %s) has been set to: %s\n", result.UserID, result.Password)
}
