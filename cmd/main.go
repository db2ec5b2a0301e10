// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_5_onboard_keep/internal/config"
	"go_5_onboard_keep/internal/handlers"
	"go_5_onboard_keep/internal/middleware"
	"go_5_onboard_keep/internal/repository"
	"go_5_onboard_keep/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	// Configを読み込み
	if err := config.LoadConfig("../configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}
	// 開発環境ではtint、それ以外はJSON形式でログを出す
	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	log.Println("Log Config Loaded...")

	slog.SetDefault(logger)

	slog.Info("Application starting...")

	// 2. Initialize Database Connection (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// 3. Dependency Injection
	tenantRepo := repository.NewGormTenantRepository()
	userRepo := repository.NewGormUserRepository()
	flowRepo := repository.NewGormFlowRepository()
	moduleRepo := repository.NewGormModuleRepository()
	assignmentRepo := repository.NewGormAssignmentRepository()
	progressRepo := repository.NewGormProgressRepository()
	categoryRepo := repository.NewGormCategoryRepository()
	blockRepo := repository.NewGormContentBlockRepository()
	emailLogRepo := repository.NewGormEmailLogRepository()

	mailer := service.NewMailer(&config.Cfg)
	dispatcher := service.NewNotificationDispatcher(db, mailer, emailLogRepo, &config.Cfg)

	tenantService := service.NewTenantService(db, tenantRepo, userRepo, flowRepo, assignmentRepo)
	userService := service.NewUserService(db, userRepo, tenantRepo, dispatcher, &config.Cfg)
	flowService := service.NewFlowService(db, flowRepo, moduleRepo, progressRepo)
	assignmentService := service.NewAssignmentService(db, assignmentRepo, progressRepo, flowRepo, moduleRepo, userRepo, tenantRepo, dispatcher)
	analyticsService := service.NewAnalyticsService(db, assignmentRepo, progressRepo, flowRepo, moduleRepo, userRepo)
	contentService := service.NewContentService(db, categoryRepo, blockRepo)
	notificationService := service.NewNotificationService(db, mailer, emailLogRepo)

	authHandler := handlers.NewAuthHandler(userService, logger)
	tenantHandler := handlers.NewTenantHandler(tenantService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	flowHandler := handlers.NewFlowHandler(flowService, logger)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, logger)
	contentHandler := handlers.NewContentHandler(contentService, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger)

	// 4. Setup Router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	// CORS 設定と適用 (設定ファイルから読み込んだ値を使用)
	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/auth/login", authHandler.Login)
		r.Post("/tenants", tenantHandler.PostTenant)
		r.Get("/tenants/resolve/{identifier}", tenantHandler.ResolveTenant)

		// サブドメインまたは X-Tenant ヘッダーでテナントが決まる公開ルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.TenantResolveMiddleware(tenantService))
			r.Get("/tenants/current", tenantHandler.GetCurrentTenant)
		})

		// --- Protected routes (require JWT) ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(&config.Cfg))

			// 自テナント情報・自分のダッシュボード
			r.Get("/tenants/me", tenantHandler.GetTenant)
			r.Get("/users", userHandler.GetUsers)
			r.Get("/users/{user_id}", userHandler.GetUser)
			r.Get("/flows", flowHandler.GetFlows)
			r.Get("/flows/{flow_id}", flowHandler.GetFlow)
			r.Get("/dashboard/me", assignmentHandler.GetMyDashboard)

			// アサインメントの閲覧と進捗報告(従業員本人のみ操作可能。所有チェックはサービス層で実施)
			r.Route("/assignments/{assignment_id}", func(r chi.Router) {
				r.Get("/", assignmentHandler.GetAssignment)
				r.Post("/modules/{module_id}/complete", assignmentHandler.PostCompleteModule)
				r.Post("/modules/{module_id}/quiz", assignmentHandler.PostSubmitQuiz)
			})

			// コンテンツライブラリの閲覧
			r.Get("/content/categories", contentHandler.GetCategories)
			r.Get("/content/blocks", contentHandler.GetContentBlocks)
			r.Get("/content/blocks/{block_id}", contentHandler.GetContentBlock)

			// --- Admin routes (tenant_admin / super_admin) ---
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Patch("/tenants/me", tenantHandler.PatchTenant)
				r.Get("/tenants/me/stats", tenantHandler.GetTenantStats)
				r.Delete("/tenants/me", tenantHandler.DeleteTenant)

				r.Post("/users", userHandler.PostUser)
				r.Patch("/users/{user_id}", userHandler.PatchUser)
				r.Delete("/users/{user_id}", userHandler.DeleteUser)

				r.Post("/flows", flowHandler.PostFlow)
				r.Route("/flows/{flow_id}", func(r chi.Router) {
					r.Patch("/", flowHandler.PatchFlow)
					r.Delete("/", flowHandler.DeleteFlow)
					r.Post("/clone", flowHandler.CloneFlow)
					r.Post("/modules", flowHandler.PostModule)
					r.Put("/modules/order", flowHandler.PutModuleOrder)
					r.Patch("/modules/{module_id}", flowHandler.PatchModule)
					r.Delete("/modules/{module_id}", flowHandler.DeleteModule)
				})

				r.Get("/assignments", assignmentHandler.GetAssignments)
				r.Post("/assignments", assignmentHandler.PostAssignment)
				r.Post("/assignments/bulk", assignmentHandler.PostBulkAssign)
				r.Delete("/assignments/{assignment_id}", assignmentHandler.DeleteAssignment)

				r.Route("/analytics", func(r chi.Router) {
					r.Get("/overview", analyticsHandler.GetDashboardOverview)
					r.Get("/flows", analyticsHandler.GetAllFlowsAnalytics)
					r.Get("/flows/{flow_id}", analyticsHandler.GetFlowAnalytics)
					r.Get("/trends", analyticsHandler.GetCompletionTrends)
					r.Get("/users/{user_id}", analyticsHandler.GetUserProgressReport)
				})

				r.Post("/content/categories", contentHandler.PostCategory)
				r.Delete("/content/categories/{category_id}", contentHandler.DeleteCategory)
				r.Post("/content/blocks", contentHandler.PostContentBlock)
				r.Patch("/content/blocks/{block_id}", contentHandler.PatchContentBlock)
				r.Delete("/content/blocks/{block_id}", contentHandler.DeleteContentBlock)

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/email-logs", notificationHandler.GetEmailLogs)
					r.Get("/email-stats", notificationHandler.GetEmailStats)
					r.Post("/email-logs/{log_id}/retry", notificationHandler.PostRetryEmail)
				})
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		// DB接続チェック
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		err = sqlDB.PingContext(r.Context())
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
