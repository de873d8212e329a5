package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	v1 "go-sketchy/cmd/api/router/v1"
	cacheAdapter "go-sketchy/internal/infrastructure/cache/adapter"
	cacheport "go-sketchy/internal/infrastructure/cache/port"
	"go-sketchy/internal/infrastructure/database"
	queueAdapter "go-sketchy/internal/infrastructure/queue/adapter"
	qport "go-sketchy/internal/infrastructure/queue/port"
	"go-sketchy/internal/infrastructure/realtime"
	"go-sketchy/internal/pkg/board/application/registry"
	"go-sketchy/internal/pkg/board/application/store"
	"go-sketchy/internal/pkg/board/application/task"
	httpHandler "go-sketchy/internal/pkg/board/presentation/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Core components, constructed once and injected everywhere.
	reg := registry.New()
	st := store.New()
	defer st.Close()
	rt := realtime.NewRouter()
	defer rt.Close()

	defaultRoom := strings.TrimSpace(os.Getenv("DEFAULT_ROOM"))
	if defaultRoom == "" {
		defaultRoom = "lobby"
	}
	capacity := 0
	if v := strings.TrimSpace(os.Getenv("ROOM_CAPACITY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			capacity = n
		}
	}
	reg.CreateRoom(defaultRoom, capacity)

	// Redis cache is optional; without it canvas loads hit the DB directly.
	var cache cacheport.Cache
	if c, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Printf("Warning: redis cache disabled: %v", err)
	} else {
		cache = c
		defer c.Close()
	}

	// Queue client/worker are optional; without them canvas saves run inline.
	var queueClient qport.Client
	if client, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		log.Printf("Warning: queue client disabled: %v", err)
	} else {
		queueClient = client
		defer client.Close()
	}
	if srv, err := queueAdapter.NewAsynqServer(); err != nil {
		log.Printf("Warning: queue worker disabled: %v", err)
	} else {
		task.RegisterPersistSnapshotTask(srv, pool, st)
		workerCtx, stopWorker := context.WithCancel(context.Background())
		defer stopWorker()
		go func() {
			if err := srv.Run(workerCtx); err != nil {
				log.Printf("queue worker stopped: %v", err)
			}
		}()
	}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Pool:        pool,
		Cache:       cache,
		Queue:       queueClient,
		Registry:    reg,
		Store:       st,
		Router:      rt,
		DefaultRoom: defaultRoom,
	})

	// Start HTTP server (blocks until shutdown)
	_ = r.Run()
}
