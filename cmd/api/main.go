package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"eduforms/internal/config"
	"eduforms/internal/database"
	"eduforms/internal/engine"
	"eduforms/internal/middleware"
	"eduforms/internal/modules/form"
	"eduforms/internal/modules/lead"
	"eduforms/internal/modules/submission"
	jwtsvc "eduforms/internal/pkg/jwt"
	"eduforms/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	formRepo := repository.NewFormRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	// show-once markers survive restarts only with redis; dev falls back
	// to the in-process store
	var markers engine.MarkerStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		markers = repository.NewRedisMarkerStore(client, cfg.MarkerTTL)
	} else {
		markers = engine.NewMemoryMarkerStore()
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := lead.NewHub()
	defer hub.Close()

	leadService := lead.NewService(leadRepo, hub)
	leadHandler := lead.NewHandler(leadService, hub)

	formService := form.NewService(formRepo)
	formHandler := form.NewHandler(formService, markers)

	submissionService := submission.NewService(formRepo, submissionRepo, leadService)
	submissionHandler := submission.NewHandler(submissionService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		form.RegisterPublicRoutes(v1, formHandler)

		// submits carry the user when a token is present, and stay open
		// to anonymous visitors
		public := v1.Group("/")
		public.Use(middleware.OptionalAuth(j))
		{
			submission.RegisterPublicRoutes(public, submissionHandler)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(j), middleware.AdminOnly())
		{
			form.RegisterAdminRoutes(admin, formHandler)
			submission.RegisterAdminRoutes(admin, submissionHandler)
			lead.RegisterAdminRoutes(admin, leadHandler)
		}
	}

	log.Printf("listening port=%s env=%s", cfg.Port, cfg.AppEnv)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
