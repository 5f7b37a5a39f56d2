package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "FormCraft-Backend/docs"
	"FormCraft-Backend/src/config"
	"FormCraft-Backend/src/controllers"
	"FormCraft-Backend/src/database"
	"FormCraft-Backend/src/jobs"
	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/routes"
	"FormCraft-Backend/src/seeder"
	"FormCraft-Backend/src/services/auth"
	"FormCraft-Backend/src/services/forms"
	"FormCraft-Backend/src/services/submission"
	"FormCraft-Backend/src/services/uploads"
	"FormCraft-Backend/src/services/users"
	"FormCraft-Backend/src/utils"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// @title FormCraft API
// @version 1.0
// @description Form builder backend: design forms, publish them and collect submissions.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx := context.Background()

	store, storeName, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}

	rdb, err := database.InitRedis(ctx, cfg.RedisURI)
	if err != nil {
		log.Println("⚠️", err)
		rdb = nil
	}
	asynqClient := database.InitAsynq(rdb)

	uploadService, err := uploads.NewService(store, cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		log.Fatalf("❌ Failed to prepare upload directory: %v", err)
	}

	var queue jobs.Enqueuer
	if asynqClient != nil {
		queue = asynqClient
	}
	purger := jobs.NewPurger(queue, uploadService)

	var worker *asynq.Server
	if rdb != nil {
		worker = startWorker(rdb, purger)
	}

	userService := users.NewService(store)
	authService := auth.NewService(userService, utils.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry), utils.NewTokenBlacklist(rdb))
	formService := forms.NewService(store, purger)
	submissionService := submission.NewService(store, uploadService, purger)

	root, err := userService.EnsureSuperAdmin(ctx, cfg.DefaultAdminUsername, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword)
	if err != nil {
		log.Fatalf("❌ Failed to ensure super admin: %v", err)
	}
	if cfg.SeedSampleForms {
		if _, err := seeder.SeedSampleForms(ctx, store, root); err != nil {
			log.Println("⚠️ Sample forms not seeded:", err)
		}
	}

	app := routes.NewApp(routes.Handlers{
		Auth:        middleware.NewAuth(authService),
		AuthCtl:     controllers.NewAuthController(authService),
		Users:       controllers.NewUserController(userService),
		Forms:       controllers.NewFormController(formService, cfg.PublicBaseURL),
		Submissions: controllers.NewSubmissionController(submissionService),
		Uploads:     controllers.NewUploadController(uploadService),
		Health:      controllers.NewHealthController(storeName, rdb),
	}, routes.Options{
		AllowOrigins: cfg.AllowOrigins,
		// a submission may carry several files
		BodyLimit:  int(cfg.MaxUploadBytes()) * 5,
		Metrics:    true,
		AccessLog:  true,
		LoginLimit: cfg.LoginRateLimit,
	})

	go func() {
		log.Println("Server is running on port " + cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Println("⚠️ Server shutdown:", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if asynqClient != nil {
		_ = asynqClient.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		log.Println("⚠️ Store close:", err)
	}
	log.Println("✅ Server stopped")
}

// openStore connects the configured backend. A mongo deployment that cannot
// be reached falls back to the in-memory store so the API still comes up.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, string, error) {
	switch cfg.StoreType {
	case config.StoreMongo:
		db, err := database.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err == nil {
			var store *repository.MongoStore
			store, err = repository.NewMongoStore(ctx, db)
			if err == nil {
				return store, config.StoreMongo, nil
			}
		}
		log.Printf("⚠️ MongoDB unavailable (%v). Falling back to in-memory storage; data will not survive a restart.", err)
		return repository.NewMemoryStore(), config.StoreMemory, nil

	case config.StoreSQL:
		db, err := database.ConnectSQL(cfg)
		if err != nil {
			return nil, "", err
		}
		store, err := repository.NewSQLStore(db)
		if err != nil {
			return nil, "", err
		}
		return store, config.StoreSQL, nil

	case config.StoreMemory:
		log.Println("ℹ️ Using in-memory storage")
		return repository.NewMemoryStore(), config.StoreMemory, nil
	}
	return nil, "", errors.New("unsupported store type: " + cfg.StoreType)
}

// startWorker runs the asynq server that purges deleted uploads.
func startWorker(rdb *redis.Client, purger *jobs.Purger) *asynq.Server {
	srv := asynq.NewServer(database.AsynqRedisOpt(rdb.Options()), asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{"default": 1},
	})
	if err := srv.Start(jobs.NewServeMux(purger)); err != nil {
		log.Println("❌ Asynq worker not started:", err)
		return nil
	}
	log.Println("✅ Asynq worker started")
	return srv
}
