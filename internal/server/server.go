package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"elimufund.com/backend/internal/config"
	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/middleware"
	"elimufund.com/backend/internal/projection"
	"elimufund.com/backend/internal/session"
	"elimufund.com/backend/pkg/credential"
	"elimufund.com/backend/pkg/ratelimit"
	"elimufund.com/backend/pkg/storage"

	adminHttp "elimufund.com/backend/internal/modules/admin/delivery/http"
	adminService "elimufund.com/backend/internal/modules/admin/service"

	donationHttp "elimufund.com/backend/internal/modules/donation/delivery/http"
	donationRepo "elimufund.com/backend/internal/modules/donation/repository"
	donationService "elimufund.com/backend/internal/modules/donation/service"

	studentHttp "elimufund.com/backend/internal/modules/student/delivery/http"
	studentRepo "elimufund.com/backend/internal/modules/student/repository"
	studentService "elimufund.com/backend/internal/modules/student/service"

	supporterHttp "elimufund.com/backend/internal/modules/supporter/delivery/http"
	supporterRepo "elimufund.com/backend/internal/modules/supporter/repository"
	supporterService "elimufund.com/backend/internal/modules/supporter/service"

	userHttp "elimufund.com/backend/internal/modules/user/delivery/http"
	userRepo "elimufund.com/backend/internal/modules/user/repository"
	userService "elimufund.com/backend/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

// NewServer wires every module against db. redisClient may be nil, in which
// case sessions live in process memory and donation throttling is off.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	imageStorage, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		if !errors.Is(err, storage.ErrNotConfigured) {
			return nil, err
		}
		slog.Warn("cloudinary credentials missing, profile image uploads are disabled")
		imageStorage = nil
	}

	var sessionStore session.Store
	if redisClient != nil {
		sessionStore = session.NewRedisStore(redisClient)
	} else {
		slog.Warn("REDIS_URL not set, sessions are kept in memory")
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, session.Options{
		Name:   cfg.SessionName,
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	})

	userRepository := userRepo.NewUserRepository(db)
	studentRepository := studentRepo.NewStudentRepository(db)
	donationRepository := donationRepo.NewDonationRepository(db)
	supporterRepository := supporterRepo.NewSupporterRepository(db)

	projector := projection.NewProjector(supporterRepository)

	studentSvc := studentService.NewStudentService(studentRepository, donationRepository, projector, imageStorage)
	studentHandler := studentHttp.NewStudentHandler(studentSvc)

	authSvc := userService.NewAuthService(userRepository, credential.NewBcryptHasher(cfg.BcryptCost), studentSvc)
	authHandler := userHttp.NewAuthHandler(authSvc, sessions)

	donationSvc := donationService.NewDonationService(
		donationRepository,
		projector,
		ratelimit.New(redisClient, cfg.RateLimitDonation),
		donationService.Policy{
			AllowOverfunding: cfg.AllowOverfunding,
			CancelWindow:     cfg.CancelWindow,
			Now:              time.Now,
		},
	)
	donationHandler := donationHttp.NewDonationHandler(donationSvc)

	supporterSvc := supporterService.NewSupporterService(supporterRepository, studentRepository, projector)
	supporterHandler := supporterHttp.NewSupporterHandler(supporterSvc)

	adminSvc := adminService.NewAdminService(studentRepository, userRepository, donationRepository, donationSvc, projector)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/health"},
	}))

	authMiddleware := middleware.NewAuthMiddleware(sessions, authSvc)

	api := router.Group("/api")
	api.Use(authMiddleware.Session())

	api.GET("/health", healthCheck(db))

	// Public routes
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.DELETE("/logout", authHandler.Logout)
	api.GET("/check-session", authHandler.CheckSession)

	api.GET("/students", studentHandler.List)
	api.GET("/students/:id", studentHandler.Get)

	// Any signed-in user; ownership is checked by the service
	authed := api.Group("")
	authed.Use(authMiddleware.RequireAuth())
	{
		authed.PATCH("/student-profiles/:id", studentHandler.Update)
		authed.POST("/student-profiles/:id/image", studentHandler.UploadImage)
		authed.GET("/students/:id/supporters", supporterHandler.Supporters)
		authed.GET("/students/:id/following-status", supporterHandler.Status)
	}

	studentGroup := api.Group("")
	studentGroup.Use(authMiddleware.RequireRole(entity.RoleStudent))
	{
		studentGroup.POST("/student-profiles", studentHandler.Create)
		studentGroup.GET("/my-profile", studentHandler.MyProfile)
	}

	donorGroup := api.Group("")
	donorGroup.Use(authMiddleware.RequireRole(entity.RoleDonor))
	{
		donorGroup.POST("/donations", donationHandler.Create)
		donorGroup.GET("/donations", donationHandler.MyDonations)
		donorGroup.DELETE("/donations/:id", donationHandler.Cancel)
		donorGroup.GET("/my-students", donationHandler.MyStudents)

		donorGroup.POST("/students/:id/follow", supporterHandler.Follow)
		donorGroup.DELETE("/students/:id/unfollow", supporterHandler.Unfollow)
		donorGroup.GET("/my-followed-students", supporterHandler.Followed)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.GET("/students/pending", adminHandler.PendingStudents)
		adminGroup.PATCH("/students/:id/verify", adminHandler.VerifyStudent)
		adminGroup.GET("/dashboard-stats", adminHandler.DashboardStats)
		adminGroup.GET("/donations", adminHandler.Donations)
		adminGroup.GET("/users", adminHandler.Users)
		adminGroup.GET("/ledger/reconcile", adminHandler.LedgerReport)
		adminGroup.POST("/ledger/reconcile", adminHandler.LedgerRepair)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
