package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"learnhub/api/internal/cleanup"
	"learnhub/api/internal/config"
	"learnhub/api/internal/middleware"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
	"learnhub/api/internal/storage"
	"learnhub/api/internal/videohost"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	db    *pgxpool.Pool
	cache *redis.Client
	store *storage.ObjectStore

	authService     *service.AuthService
	paymentService  *service.PaymentService
	catalogService  *service.CatalogService
	videoService    *service.VideoService
	pdfService      *service.PDFService
	progressService *service.ProgressService

	users         *repository.UserRepository
	sessions      *repository.SessionRepository
	categories    *repository.CategoryRepository
	subcategories *repository.SubcategoryRepository
	videos        *repository.VideoRepository
	pdfs          *repository.PDFRepository
	books         *repository.BookRepository
	support       *repository.SupportRepository
	progress      *repository.ProgressRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	host *videohost.Client,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	subcategoryRepo := repository.NewSubcategoryRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	pdfRepo := repository.NewPDFRepository(db)
	bookRepo := repository.NewBookRepository(db)
	supportRepo := repository.NewSupportRepository(db)

	cleanupQueue := cleanup.NewQueue(cache, log)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	payments := service.NewPaymentService(
		paymentRepo, progressRepo, userRepo,
		categoryRepo, subcategoryRepo, videoRepo, pdfRepo, bookRepo, log)
	catalog := service.NewCatalogService(categoryRepo, subcategoryRepo, videoRepo)
	videos := service.NewVideoService(videoRepo, subcategoryRepo, host, payments, cleanupQueue, log)
	pdfs := service.NewPDFService(pdfRepo, categoryRepo, subcategoryRepo, store, payments, cleanupQueue, log)
	progress := service.NewProgressService(progressRepo, videoRepo)

	return HandlerSet{
		log:             log,
		cfg:             cfg,
		db:              db,
		cache:           cache,
		store:           store,
		authService:     auth,
		paymentService:  payments,
		catalogService:  catalog,
		videoService:    videos,
		pdfService:      pdfs,
		progressService: progress,
		users:           userRepo,
		sessions:        sessionRepo,
		categories:      categoryRepo,
		subcategories:   subcategoryRepo,
		videos:          videoRepo,
		pdfs:            pdfRepo,
		books:           bookRepo,
		support:         supportRepo,
		progress:        progressRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authed := middleware.Auth(h.cfg, h.users, h.sessions)
	admin := middleware.RequireRoles(models.UserRoleAdmin)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)

		auth.POST("/logout", authed, h.Logout)
		auth.POST("/logout-all-devices", authed, h.LogoutAllDevices)
		auth.GET("/me", authed, h.Me)
		auth.GET("/sessions/:userId/active", authed, middleware.RequireSelfOrAdmin("userId"), h.ActiveDevice)
	}

	users := v1.Group("/users", authed)
	{
		users.GET("", admin, h.ListUsers)
		users.GET("/:id", middleware.RequireSelfOrAdmin("id"), h.GetUser)
		users.PUT("/:id", middleware.RequireSelfOrAdmin("id"), h.UpdateUser)
		users.DELETE("/:id", admin, h.DeleteUser)
		users.GET("/:id/courses", middleware.RequireSelfOrAdmin("id"), h.GetUserCourses)
		users.GET("/:id/pdfs", middleware.RequireSelfOrAdmin("id"), h.GetUserPDFs)
		users.GET("/:id/payments", middleware.RequireSelfOrAdmin("id"), h.GetUserPayments)
	}

	payments := v1.Group("/payments")
	{
		payments.POST("", authed, h.SubmitPayment)
		payments.GET("", authed, admin, h.ListPayments)
		payments.PATCH("/:id/status", authed, admin, h.UpdatePaymentStatus)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.GET("/:id/subcategories", h.ListCategorySubcategories)
		categories.POST("", authed, admin, h.CreateCategory)
		categories.PUT("/:id", authed, admin, h.UpdateCategory)
		categories.DELETE("/:id", authed, admin, h.DeleteCategory)
	}

	subcategories := v1.Group("/subcategories")
	{
		subcategories.GET("", h.ListSubcategories)
		subcategories.GET("/check-duplicate", h.CheckDuplicateSubcategory)
		subcategories.GET("/:id", h.GetSubcategory)
		subcategories.GET("/:id/videos", h.ListSubcategoryVideos)
		subcategories.POST("", authed, admin, h.CreateSubcategory)
		subcategories.PUT("/:id", authed, admin, h.UpdateSubcategory)
		subcategories.DELETE("/:id", authed, admin, h.DeleteSubcategory)
	}

	videos := v1.Group("/videos")
	{
		videos.GET("", h.ListVideos)
		videos.POST("", authed, admin, h.CreateVideo)
		videos.DELETE("/:id", authed, admin, h.DeleteVideo)
		videos.GET("/:id/playback", authed, h.VideoPlayback)
		videos.POST("/:id/watched", authed, h.MarkVideoWatched)
	}

	pdfs := v1.Group("/pdfs")
	{
		pdfs.GET("", h.ListPDFs)
		pdfs.GET("/:id", h.GetPDF)
		pdfs.POST("", authed, admin, h.CreatePDF)
		pdfs.PUT("/:id", authed, admin, h.UpdatePDF)
		pdfs.DELETE("/:id", authed, admin, h.DeletePDF)
		pdfs.GET("/:id/download", authed, h.DownloadPDF)
	}

	books := v1.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/:id", h.GetBook)
		books.POST("", authed, admin, h.CreateBook)
		books.PUT("/:id", authed, admin, h.UpdateBook)
		books.DELETE("/:id", authed, admin, h.DeleteBook)
	}

	support := v1.Group("/support", authed)
	{
		support.POST("", h.CreateSupport)
		support.GET("", admin, h.ListSupport)
		support.GET("/user/:id", middleware.RequireSelfOrAdmin("id"), h.ListUserSupport)
		support.PATCH("/:id/status", admin, h.UpdateSupportStatus)
	}
}
