package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/account-api/internal/config"
	"github.com/yourusername/account-api/internal/handler"
	"github.com/yourusername/account-api/internal/middleware"
	pgRepo "github.com/yourusername/account-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/account-api/internal/repository/redis"
	"github.com/yourusername/account-api/internal/service"
	"github.com/yourusername/account-api/internal/service/provider"
	ws "github.com/yourusername/account-api/internal/websocket"
	"github.com/yourusername/account-api/pkg/auth"
	"github.com/yourusername/account-api/pkg/auth/manager"
	"github.com/yourusername/account-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	socialAccountRepo := pgRepo.NewSocialAccountRepo(db)
	deviceTokenRepo := pgRepo.NewDeviceTokenRepo(db)
	faqRepo := pgRepo.NewFAQRepo(db)
	blogRepo := pgRepo.NewBlogRepo(db)
	ticketRepo := pgRepo.NewSupportTicketRepo(db)

	refreshTokenRepo, err := pgRepo.NewRefreshTokenRepo(db)
	if err != nil {
		log.Printf("Failed to initialize RefreshTokenRepo: %v", err)
		os.Exit(1)
	}

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// --- Инициализация JWTService и TokenManager ---
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationMins)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	tokenManager, err := manager.NewTokenManager(jwtService, refreshTokenRepo, userRepo)
	if err != nil {
		log.Printf("Failed to initialize TokenManager: %v", err)
		os.Exit(1)
	}
	tokenManager.SetRefreshTokenExpiry(time.Duration(cfg.Auth.RefreshTokenLifetime) * 24 * time.Hour)
	tokenManager.SetMaxRefreshTokensPerUser(cfg.Auth.SessionLimit)

	// Создаем контекст с отменой для корректного завершения работы горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Провайдеры внешнего входа: собираем только включенные в конфигурации ---
	var verifiers []provider.Verifier
	if cfg.Providers.Google.Enabled {
		verifiers = append(verifiers, provider.NewGoogleVerifier(cfg.Providers.Google))
		log.Println("Провайдер google включен")
	}
	if cfg.Providers.Facebook.Enabled {
		verifiers = append(verifiers, provider.NewFacebookVerifier(cfg.Providers.Facebook))
		log.Println("Провайдер facebook включен")
	}
	if cfg.Providers.FirebasePhone.Enabled {
		firebaseVerifier, errFirebase := provider.NewFirebasePhoneVerifier(cfg.Providers.FirebasePhone)
		if errFirebase != nil {
			log.Printf("Failed to initialize firebase_phone verifier: %v", errFirebase)
			os.Exit(1)
		}
		verifiers = append(verifiers, firebaseVerifier)
		log.Println("Провайдер firebase_phone включен")
	}
	providerRegistry := provider.NewRegistry(verifiers...)

	// --- Email: Resend если есть API ключ, иначе пишем в лог ---
	var emailService service.EmailService
	if cfg.Email.ResendAPIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
	} else {
		log.Println("RESEND_API_KEY не задан, исходящие письма отключены")
		emailService = &service.NoopEmailService{}
	}

	otpPepper := cfg.OTP.Pepper
	if otpPepper == "" {
		otpPepper = cfg.JWT.Secret
	}
	otpService, err := service.NewOTPService(
		cacheRepo,
		emailService,
		time.Duration(cfg.OTP.TTLMinutes)*time.Minute,
		time.Duration(cfg.OTP.ResendCooldownSec)*time.Second,
		cfg.OTP.MaxAttempts,
		otpPepper,
	)
	if err != nil {
		log.Printf("Failed to initialize OTPService: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, jwtService, tokenManager, otpService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	socialLoginService, err := service.NewSocialLoginService(userRepo, socialAccountRepo, providerRegistry, tokenManager)
	if err != nil {
		log.Printf("Failed to initialize SocialLoginService: %v", err)
		os.Exit(1)
	}
	deviceTokenService, err := service.NewDeviceTokenService(deviceTokenRepo, nil)
	if err != nil {
		log.Printf("Failed to initialize DeviceTokenService: %v", err)
		os.Exit(1)
	}
	faqService, err := service.NewFAQService(faqRepo)
	if err != nil {
		log.Printf("Failed to initialize FAQService: %v", err)
		os.Exit(1)
	}
	blogService, err := service.NewBlogService(blogRepo)
	if err != nil {
		log.Printf("Failed to initialize BlogService: %v", err)
		os.Exit(1)
	}
	ticketService, err := service.NewSupportTicketService(ticketRepo, userRepo)
	if err != nil {
		log.Printf("Failed to initialize SupportTicketService: %v", err)
		os.Exit(1)
	}

	// Запускаем фоновую задачу для очистки истекших refresh-токенов
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Запуск механизма периодической очистки истекших refresh-токенов (каждый час)")

		for {
			select {
			case <-ticker.C:
				if err := tokenManager.CleanupExpiredTokens(); err != nil {
					log.Printf("Ошибка при очистке токенов: %v", err)
				}
			case <-ctx.Done():
				log.Println("Завершение работы горутины очистки токенов")
				return
			}
		}
	}()

	// Инициализация WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, wsHub)
	socialAuthHandler := handler.NewSocialAuthHandler(socialLoginService, wsHub)
	userHandler := handler.NewUserHandler(authService)
	deviceTokenHandler := handler.NewDeviceTokenHandler(deviceTokenService)
	faqHandler := handler.NewFAQHandler(faqService)
	blogHandler := handler.NewBlogHandler(blogService)
	ticketHandler := handler.NewSupportTicketHandler(ticketService)
	wsHandler := handler.NewWSHandler(wsHub, jwtService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:8000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.LimitByIP(middleware.DefaultAuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)

			// Код подбирается перебором, поэтому лимит жестче
			strictGroup := authGroup.Group("/")
			strictGroup.Use(rateLimiter.LimitByIP(middleware.StrictAuthRateLimitConfig()))
			{
				strictGroup.POST("/forgot-password", authHandler.ForgotPassword)
				strictGroup.POST("/reset-password", authHandler.ResetPassword)
				strictGroup.POST("/confirm-email", authHandler.ConfirmEmail)
			}

			// Вход через внешних провайдеров
			socialGroup := authGroup.Group("/social")
			socialGroup.Use(rateLimiter.LimitByIP(middleware.SocialLoginRateLimitConfig()))
			{
				socialGroup.POST("/login", socialAuthHandler.Login)
			}

			// Маршруты, требующие аутентификации
			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.POST("/logout", authHandler.Logout)
				authedAuth.POST("/logout-all", authHandler.LogoutAllDevices)
				authedAuth.GET("/sessions", authHandler.GetActiveSessions)
				authedAuth.POST("/revoke-session", authHandler.RevokeSession)
				authedAuth.POST("/change-password", authHandler.ChangePassword)
				authedAuth.POST("/send-verification", authHandler.SendEmailVerification)
			}
		}

		// Профиль и привязанные аккаунты
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetMe)
			users.PUT("/me", userHandler.UpdateMe)

			users.GET("/me/social", socialAuthHandler.ListLinked)
			users.POST("/me/social/link", socialAuthHandler.Link)
			users.DELETE("/me/social/:provider", socialAuthHandler.Unlink)

			users.POST("/me/devices", deviceTokenHandler.Register)
			users.GET("/me/devices", deviceTokenHandler.List)
			users.DELETE("/me/devices/:provider/:device_id", deviceTokenHandler.Unregister)
		}

		// FAQ (публичные маршруты)
		faq := api.Group("/faq")
		{
			faq.GET("/categories", faqHandler.ListCategories)
			faq.GET("/categories/:id", faqHandler.ListByCategory)
		}

		// Блог (публичные маршруты)
		blog := api.Group("/blog")
		{
			blog.GET("/posts", blogHandler.ListPosts)
			blog.GET("/posts/:slug", blogHandler.GetPost)
			blog.GET("/categories", blogHandler.ListCategories)
			blog.GET("/tags", blogHandler.ListTags)
		}

		// Поддержка
		support := api.Group("/support")
		support.Use(authMiddleware.RequireAuth())
		{
			support.GET("/categories", ticketHandler.ListCategories)
			support.POST("/tickets", ticketHandler.Create)
			support.GET("/tickets", ticketHandler.ListMine)
			support.GET("/tickets/:reference", ticketHandler.Get)
			support.GET("/tickets/:reference/comments", ticketHandler.ListComments)
			support.POST("/tickets/:reference/comments", ticketHandler.AddComment)
		}

		// Администрирование
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/users", userHandler.ListUsers)

			admin.POST("/faq", faqHandler.Create)
			admin.PUT("/faq/:id", faqHandler.Update)
			admin.DELETE("/faq/:id", faqHandler.Delete)

			admin.POST("/blog/posts", blogHandler.CreatePost)
			admin.PUT("/blog/posts/:id", blogHandler.UpdatePost)
			admin.DELETE("/blog/posts/:id", blogHandler.DeletePost)

			admin.GET("/support/tickets", ticketHandler.ListAll)
			admin.PUT("/support/tickets/:reference/status", ticketHandler.UpdateStatus)
			admin.GET("/support/tickets/export", ticketHandler.Export)
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.Connect)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// После получения сигнала SIGINT или SIGTERM вызываем cancel() для завершения горутин
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()
	wsHub.Stop()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
