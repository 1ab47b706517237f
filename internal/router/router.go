package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/openboard/backend/internal/handlers"
	"github.com/openboard/backend/internal/middleware"
	"github.com/openboard/backend/internal/repositories"
	"github.com/openboard/backend/pkg/config"
	"github.com/openboard/backend/pkg/storage"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Static("/", "public")
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *config.DB, uploader storage.Uploader, cfg *config.Config) {
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db.Database)
	postRepo := repositories.NewMongoPostRepository(db.Database)
	commentRepo := repositories.NewMongoCommentRepository(db.Database)

	// --- Initialize Handlers ---
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(userRepo, uploader, cfg)
	userHandler := handlers.NewUserHandler(userRepo, postRepo, commentRepo, uploader)
	postHandler := handlers.NewPostHandler(postRepo, commentRepo, uploader)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo)

	requireAuth := middleware.JWTAuthMiddleware(cfg.AccessTokenSecret)
	authLimiter := middleware.AuthLimiter()
	uploadLimiter := middleware.UploadLimiter()

	api := e.Group("/api", middleware.GeneralLimiter())

	// Health - always accessible
	api.GET("/", healthHandler.Welcome)
	api.GET("", healthHandler.Welcome)
	api.GET("/health", healthHandler.Check)

	// User routes
	users := api.Group("/users")
	users.POST("/register", authHandler.Register, authLimiter)
	users.POST("/login", authHandler.Login, authLimiter)
	users.POST("/logout", authHandler.Logout, requireAuth)
	users.GET("/profile/me", userHandler.GetMyProfile, requireAuth)
	users.PUT("/profile", userHandler.UpdateProfile, requireAuth)
	users.PUT("/profile/avatar", userHandler.UpdateAvatar, requireAuth, uploadLimiter)
	users.GET("/:userId", userHandler.GetUserByID)
	log.Println("User routes configured.")

	// Post routes
	posts := api.Group("/posts")
	posts.GET("", postHandler.GetAllPosts)
	posts.GET("/leaderboard", postHandler.GetLeaderboard)
	posts.GET("/user/:userId", postHandler.GetUserPosts)
	posts.GET("/:id", postHandler.GetPostByID)
	posts.POST("", postHandler.CreatePost, requireAuth, uploadLimiter)
	posts.PUT("/:id", postHandler.UpdatePost, requireAuth, uploadLimiter)
	posts.DELETE("/:id", postHandler.DeletePost, requireAuth)
	posts.POST("/:id/like", postHandler.ToggleLike, requireAuth)
	posts.POST("/:id/vote", postHandler.VotePost, requireAuth)
	log.Println("Post routes configured.")

	// Comment routes
	comments := api.Group("/comments")
	comments.GET("/post/:postId", commentHandler.GetCommentsByPost)
	comments.GET("/user/:userId", commentHandler.GetUserComments)
	comments.POST("", commentHandler.CreateComment, requireAuth)
	comments.PUT("/:id", commentHandler.UpdateComment, requireAuth)
	comments.DELETE("/:id", commentHandler.DeleteComment, requireAuth)
	comments.POST("/:id/vote", commentHandler.VoteComment, requireAuth)
	log.Println("Comment routes configured.")

	log.Println("All routes configured.")
}
