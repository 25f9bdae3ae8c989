package main

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/Ohjackson/Aj-ruKaisen/config"
	"github.com/Ohjackson/Aj-ruKaisen/crypto"
	"github.com/Ohjackson/Aj-ruKaisen/game"
	"github.com/Ohjackson/Aj-ruKaisen/hint"
	"github.com/Ohjackson/Aj-ruKaisen/shared/logger"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})))

	return r
}

func main() {
	cfg := config.Load()
	logger.SetDebug(cfg.Debug)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	rules, err := hint.LoadRules(cfg.RulesPath)
	if err != nil {
		logger.Fatalf("cannot load rules from %s: %v", cfg.RulesPath, err)
	}
	corpus, err := hint.LoadCorpus(cfg.CorpusPath)
	if err != nil {
		logger.Fatalf("cannot load corpus from %s: %v", cfg.CorpusPath, err)
	}
	logger.Infof("corpus loaded: %d keywords", corpus.Len())

	var external hint.Agent
	if cfg.AIEnabled && cfg.AIEndpoint != "" {
		external = hint.NewExternalProvider(cfg.AIEndpoint, cfg.AIKey, cfg.AIModel, cfg.AITimeout)
		logger.Infof("external hint provider enabled: %s", cfg.AIEndpoint)
	} else {
		logger.Info("external hint provider disabled, using local corpus only")
	}
	local := hint.NewLocalProvider(corpus, rules)
	hinter := hint.NewCoordinator(external, local, rules, cfg.AITimeout)

	tokenKey := cfg.ReconnectTokenKey
	if tokenKey == "" {
		// ephemeral key: restarting the server invalidates old tokens
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			logger.Fatalf("cannot generate token key: %v", err)
		}
		tokenKey = hex.EncodeToString(raw)
		logger.Warning("RECONNECT_TOKEN_KEY not set, using an ephemeral key")
	}
	tokenManager := crypto.NewTokenManager(tokenKey, cfg.TokenMaxAge)

	settings := game.Settings{
		Mode:                 string(cfg.Mode),
		MaxRounds:            cfg.MaxRounds,
		MaxPlayers:           cfg.MaxPlayers,
		MinPlayers:           cfg.MinPlayers,
		SubmissionDuration:   cfg.SubmissionDuration,
		DiscussionDuration:   cfg.DiscussionDuration,
		TransitionDuration:   cfg.TransitionDuration,
		ResolutionTimeout:    cfg.AITimeout,
		ForbiddenFloor:       cfg.ForbiddenScoreFloor,
		ResetScoresOnRematch: cfg.ResetScoresOnRematch,
	}

	filter := game.NewWordFilter(rules, corpus)
	idGen := game.NewIdGen()
	room := game.NewRoom(settings, hinter, filter, tokenManager, idGen)
	go room.GameLoop()

	tickerGen := game.NewTickerGen()
	go func() {
		for now := range tickerGen.Create(time.Second) {
			room.Tick(now)
		}
	}()

	gameHandler := game.NewHandler(room)

	r := CreateServer(cfg.AllowedOrigins)
	r.GET("/ws", gameHandler.WebsocketHandler)
	r.GET("/db", gameHandler.DebugStateHandler)
	r.GET("/config", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{
			"mode":              cfg.Mode,
			"maxRounds":         cfg.MaxRounds,
			"maxPlayers":        cfg.MaxPlayers,
			"minPlayers":        cfg.MinPlayers,
			"submissionSeconds": int(cfg.SubmissionDuration.Seconds()),
			"discussionSeconds": int(cfg.DiscussionDuration.Seconds()),
			"transitionSeconds": int(cfg.TransitionDuration.Seconds()),
			"aiEnabled":         cfg.AIEnabled && cfg.AIEndpoint != "",
		})
	})
	r.StaticFile("/docs/rules.json", cfg.RulesPath)
	r.StaticFile("/docs/corpus.txt", cfg.CorpusPath)

	logger.Infof("listening on :%s (mode=%s)", cfg.Port, cfg.Mode)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
