package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/simmer-dev/simmer/internal/apiclient"
	"github.com/simmer-dev/simmer/internal/comments"
	"github.com/simmer-dev/simmer/internal/config"
	"github.com/simmer-dev/simmer/internal/credentials"
	"github.com/simmer-dev/simmer/internal/handler"
	"github.com/simmer-dev/simmer/internal/logger"
	"github.com/simmer-dev/simmer/internal/render"
	"github.com/simmer-dev/simmer/internal/router"
	"github.com/simmer-dev/simmer/internal/store"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 15 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger.Initialize(cfg.LogLevel, cfg.LogJSON)

	tokens := credentials.NewTokenStore(cfg.CredentialsPath)
	reader := credentials.NewReader(tokens)

	api := apiclient.New(cfg.ApiBaseUrl, cfg.RequestTimeout, tokens)
	threadStore := store.New(api, reader)
	commentCache := comments.NewCache(api, threadStore)
	threadStore.OnDelete(commentCache.Evict)

	h := handler.New(api, threadStore, commentCache, reader, tokens, render.New())

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router.New(h, cfg.AllowedOrigins),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logger.Log.Info("starting gateway",
		"addr", cfg.ListenAddr,
		"api", cfg.ApiBaseUrl,
		"authenticated", reader.AuthState().Authenticated)
	if err := server.ListenAndServe(); err != nil {
		logger.Log.Error("server stopped", "error", err)
	}
}
