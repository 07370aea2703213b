// This is the main entry point of the Bazaar application.
// It initializes configuration, the database pool, the AWS-backed services,
// the feature services and handlers, sets up the HTTP router and middleware,
// and starts the HTTP server with graceful shutdown.
//
// @title Bazaar API
// @version 1.0
// @description Multi-tenant e-commerce backend: auth, catalog, uploads, email.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/auth"
	"github.com/user/bazaar-go/categories"
	"github.com/user/bazaar-go/config"
	"github.com/user/bazaar-go/db"
	_ "github.com/user/bazaar-go/docs" // Generated Swagger docs
	"github.com/user/bazaar-go/email"
	"github.com/user/bazaar-go/products"
	"github.com/user/bazaar-go/types"
	"github.com/user/bazaar-go/uploads"
	"github.com/user/bazaar-go/users"
)

func main() {
	// A missing .env file is fine; in production variables are set directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbPool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer dbPool.Close()

	// pg_trgm must exist before the migrations create trigram indexes.
	if err := db.EnableExtensions(dbPool); err != nil {
		log.Fatalf("Failed to enable extensions: %v", err)
	}
	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	// Services encapsulate the business logic; dependencies are injected by
	// hand here. Handlers are the controller layer on top of them.
	authService := auth.NewAuthService(dbPool, *cfg.Auth)
	authHandlers := auth.NewHandlers(authService)

	uploadService, err := uploads.NewS3Service(ctx, cfg.AWS, cfg.Upload)
	if err != nil {
		log.Fatalf("Failed to create upload service: %v", err)
	}
	uploadHandlers := uploads.NewHandlers(uploadService)

	emailService, err := email.NewEmailService(ctx, cfg.AWS, cfg.Email)
	if err != nil {
		log.Fatalf("Failed to create email service: %v", err)
	}
	emailHandlers := email.NewHandlers(emailService)

	productHandlers := products.NewHandlers(products.NewProductService(dbPool))
	categoryHandlers := categories.NewHandlers(categories.NewCategoryService(dbPool))
	typeHandlers := types.NewHandlers(types.NewTypeService(dbPool))
	userHandlers := users.NewHandlers(users.NewUserService(dbPool))

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		// Restrict in production.
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that renders through the uniform error envelope.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, r, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/otp", authHandlers.HandleSendOtp())
		r.Post("/verify-otp", authHandlers.HandleVerifyOtp())

		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware(cfg.Auth))
			r.Post("/change-password", authHandlers.HandleChangePassword())
			r.Get("/me", authHandlers.HandleMe())
		})
	})

	r.Route("/upload", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		r.Post("/file", uploadHandlers.HandleUpload())
		r.Get("/presign/*", uploadHandlers.HandlePresign())
		r.Delete("/*", uploadHandlers.HandleDelete())
	})

	r.Route("/email", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		r.Post("/send", emailHandlers.HandleSend())
		r.Post("/send-templated", emailHandlers.HandleSendTemplated())
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productHandlers.HandleList())
		r.Get("/popular", productHandlers.HandlePopular())
		r.Get("/best-selling", productHandlers.HandleBestSelling())
		r.Get("/{slug}", productHandlers.HandleGetBySlug())

		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware(cfg.Auth))
			r.Post("/", productHandlers.HandleCreate())
			r.Get("/stock", productHandlers.HandleLowStock())
			r.Get("/draft", productHandlers.HandleDrafts())
			r.Delete("/{id}", productHandlers.HandleDelete())
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryHandlers.HandleList())
		r.Get("/{idOrSlug}", categoryHandlers.HandleGet())

		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware(cfg.Auth))
			r.Post("/", categoryHandlers.HandleCreate())
			r.Put("/{id}", categoryHandlers.HandleUpdate())
			r.Delete("/{id}", categoryHandlers.HandleDelete())
		})
	})

	r.Route("/types", func(r chi.Router) {
		r.Get("/", typeHandlers.HandleList())
		r.Get("/{slug}", typeHandlers.HandleGetBySlug())

		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware(cfg.Auth))
			r.Post("/", typeHandlers.HandleCreate())
			r.Put("/{id}", typeHandlers.HandleUpdate())
			r.Delete("/{id}", typeHandlers.HandleDelete())
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		r.Get("/", userHandlers.HandleList())
		r.Get("/{id}", userHandlers.HandleGet())
		r.Post("/block-user", userHandlers.HandleBlock())
		r.Post("/unblock-user", userHandlers.HandleUnblock())
	})

	r.Route("/profiles", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		r.Put("/{id}", userHandlers.HandleUpdateProfile())
		r.Delete("/{id}", userHandlers.HandleDeleteProfile())
	})

	// Role-scoped listings for the dashboard; administrators only.
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTMiddleware(cfg.Auth))
		r.Use(auth.RequirePermission(auth.PermissionSuperAdmin))
		r.Get("/admin/list", userHandlers.HandleAdmins())
		r.Get("/vendors/list", userHandlers.HandleVendors())
		r.Get("/customers/list", userHandlers.HandleCustomers())
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware; regular
// handlers render through auth.WriteError instead.
func writeError(w http.ResponseWriter, r *http.Request, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse(r.URL.Path, r.Method)); err != nil {
		http.Error(w, `{"error":"Failed to encode error response"}`, http.StatusInternalServerError)
	}
}
