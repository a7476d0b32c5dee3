package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/local-auth/migrations"
	"github.com/tendant/local-auth/pkg/config"
	"github.com/tendant/local-auth/pkg/login"
)

type Config struct {
	DbConfig    config.DatabaseConfig
	AppConfig   app.AppConfig
	LoginConfig config.LoginConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.DbConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	if err := migrations.Up(context.Background(), cfg.DbConfig.ToDatabaseURL()); err != nil {
		slog.Error("Failed running migrations", "err", err)
		os.Exit(-1)
	}

	loginRepo := login.NewPostgresRepository(pool)
	loginService := login.NewService(loginRepo, login.BcryptHasher{})

	metadata := login.DefaultPluginMetadata()
	metadata.Key = cfg.LoginConfig.PluginKey
	metadata.Name = cfg.LoginConfig.PluginName
	metadata.IconURL = cfg.LoginConfig.PluginIconURL

	handle := login.NewHandle(loginService, cfg.LoginConfig.ExternalURL, cfg.LoginConfig.AuthPluginRedirectURL, metadata)
	server.R.Mount("/auth/login/internal", login.Routes(handle))

	server.Run()
}
