package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	aicore "github.com/signalworks/claimcheck/src/ai/core"
	_ "github.com/signalworks/claimcheck/src/ai/providers"
	"github.com/signalworks/claimcheck/src/cache"
	"github.com/signalworks/claimcheck/src/data"
	"github.com/signalworks/claimcheck/src/investigator/config"
	"github.com/signalworks/claimcheck/src/investigator/engine"
	"github.com/signalworks/claimcheck/src/investigator/webserver"
	"github.com/signalworks/claimcheck/src/quota"
	"github.com/signalworks/claimcheck/src/ratelimit"
	"github.com/signalworks/claimcheck/src/verify"
)

func main() {
	cfg := config.Load()

	// Shared state: Redis when configured, in-process otherwise. The
	// component contracts are identical across both backends.
	var (
		limitStore ratelimit.Store = ratelimit.NewMemoryStore()
		quotaStore quota.Store     = quota.NewMemoryStore()
		cacheStore cache.Store     = cache.NewMemoryStore()
	)
	if cfg.RedisURL != "" {
		rdb := data.MustRedis(cfg.RedisURL)
		limitStore = ratelimit.NewRedisStore(rdb)
		quotaStore = quota.NewRedisStore(rdb)
		cacheStore = cache.NewRedisStore(rdb)
		log.Printf("using redis-backed stores")
	}

	var history *data.History
	if cfg.MySQLDSN != "" {
		history = data.NewHistory(data.MustMySQL(cfg.MySQLDSN))
		log.Printf("investigation history enabled")
	}

	model, err := aicore.NewClient(aicore.FactoryConfig{
		Provider:  cfg.AIProvider,
		Model:     cfg.Model,
		GeminiKey: cfg.GeminiKey,
	})
	if err != nil {
		log.Fatalf("ai client: %v", err)
	}

	fetcher := verify.NewFetcher()
	archive := verify.NewArchiveResolver(cfg.ArchiveBase, fetcher)
	batch := verify.NewBatch(verify.NewVerifier(fetcher, archive), cfg.MaxConcurrentVerify)

	eng := engine.New(model, batch,
		cache.New(cacheStore, time.Duration(cfg.CacheTTLSeconds)*time.Second),
		history,
	)

	router := webserver.New(cfg, webserver.Deps{
		Engine:  eng,
		Limiter: ratelimit.New(limitStore, cfg.PerMinuteCeiling),
		Tracker: quota.New(quotaStore, cfg.DailyCeiling),
		History: history,
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("ClaimCheck API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
