package main

import (
	"flag"
	"os"

	"daily-checkin/internal/config"
	"daily-checkin/internal/handler"
	"daily-checkin/internal/logger"
	"daily-checkin/internal/middleware"
	"daily-checkin/internal/model"
	"daily-checkin/internal/schema"
	"daily-checkin/internal/service"
	"daily-checkin/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("timezone load failed", "tz", cfg.Timezone, logger.Err(err))
		os.Exit(1)
	}
	db, err := cfg.OpenGormDB()
	if err != nil {
		logger.Error("db connect failed", logger.Err(err))
		os.Exit(1)
	}
	if err := store.Migrate(db, &model.User{}); err != nil {
		logger.Error("db migrate failed", logger.Err(err))
		os.Exit(1)
	}

	tokens := middleware.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	dailySvc := service.NewDailyService(store.NewGormEntries(db), schema.Default(), service.NewQueryCache(cfg.Cache.TTL), loc)
	authSvc := service.NewAuthService(db)

	r := gin.Default()
	handler.Register(r, handler.NewAuthHandler(authSvc, tokens), handler.NewEntryHandler(dailySvc), tokens, cfg.Server.AllowOrigins)

	logger.Info("server starting", "addr", cfg.Addr(), "db", cfg.Database.Driver, "tz", loc.String())
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Error("server failed", logger.Err(err))
	}
}
