package main

import (
	"context"
	"log"

	"github.com/codeprogress/codeprogress-backend/config"
	"github.com/codeprogress/codeprogress-backend/internal/auth"
	"github.com/codeprogress/codeprogress-backend/internal/bootstrap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	sqlDB, err := bootstrap.OpenSQLDB(ctx, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "codeprogress-backend",
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             pool,
		SQLDB:          sqlDB,
		Redis:          rdb,
		Identity:       auth.NewFirebaseIdentity(authClient, &cfg.Firebase),
		Verifier:       auth.NewFirebaseVerifier(authClient),
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
