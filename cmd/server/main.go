package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andr3olli/bubbly-word-wars/config"
	"github.com/andr3olli/bubbly-word-wars/game"
	"github.com/andr3olli/bubbly-word-wars/migrations"
	"github.com/andr3olli/bubbly-word-wars/storage"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	if len(allowedOrigins) == 0 {
		return r
	}

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	var recorder game.Recorder
	if cfg.PostgresURL != "" {
		if err := migrations.Migrate(cfg.PostgresURL); err != nil {
			log.Fatal(err)
		}
		pg, err := storage.NewPostgres(context.Background(), cfg.PostgresURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		recorder = pg
	}

	registry := game.NewRegistry()
	tickerGen := game.NewTickerGen()
	gateway := game.NewGateway(registry, recorder, &tickerGen, cfg.ClaimMaxIdle, cfg.EmptyRoomGrace)
	go gateway.Run(context.Background())

	r := CreateServer(cfg.AllowedOrigins)
	wsHandler := game.NewHandler(gateway, cfg.AllowedOrigins)
	r.GET("/ws", wsHandler.ServeWS)

	slog.Info("server listening", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
