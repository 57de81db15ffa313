// Package server contains the HTTP handlers and routing of the blog.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "yatube/docs" // swagger docs
	"yatube/internal/bootstrap"
	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	sessions       *middleware.Sessions
	rateLimiter    *middleware.RateLimiter
	pageCache      *cache.PageCache

	groupRepo repository.GroupRepository

	feedService    *service.FeedService
	followService  *service.FollowService
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
	imageService   *service.ImageService

	appOnce sync.Once
	app     *fiber.App
}

// NewServer connects to the database and Redis and creates a server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedGroups: !cfg.IsProduction()})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client selects the in-process page cache and disables session revocation.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	imageRepo := repository.NewImageRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: InitMetrics("yatube"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		sessions:       middleware.NewSessions(cfg.JWTSecret, cfg.SessionTTL(), redisClient, cfg.IsProduction()),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env != "test" && cfg.Env != "development"),
		pageCache:      cache.NewPageCache(cache.NewStore(redisClient)),
		groupRepo:      groupRepo,
	}

	s.feedService = service.NewFeedService(postRepo, groupRepo, userRepo, cfg.PostsPerPage)
	s.followService = service.NewFollowService(followRepo)
	s.imageService = service.NewImageService(imageRepo, cfg.MaxUploadMB)
	s.postService = service.NewPostService(postRepo, groupRepo, commentRepo, s.imageService, s.feedService, s.featureFlags)
	s.commentService = service.NewCommentService(commentRepo, postRepo)
	s.userService = service.NewUserService(userRepo, postRepo)

	return s, nil
}

// PageCache exposes the global feed cache.
func (s *Server) PageCache() *cache.PageCache {
	return s.pageCache
}

// App returns the configured Fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	s.appOnce.Do(func() {
		app := fiber.New(fiber.Config{
			AppName:      "Yatube",
			BodyLimit:    s.config.MaxUploadBytes() + 1024*1024,
			ErrorHandler: s.errorHandler,
		})
		s.SetupMiddleware(app)
		s.SetupRoutes(app)
		s.app = app
	})
	return s.app
}

const (
	// defaultOrigins is used when ALLOWED_ORIGINS is empty.
	defaultOrigins  = "http://localhost:8000,http://127.0.0.1:8000"
	tooManyRequests = "Too many requests, please try again later."
)

// SetupMiddleware installs the request pipeline. Order matters: the session is
// loaded before ContextMiddleware so the logger sees the user id.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New(), requestid.New(), middleware.TracingMiddleware())
	app.Use(s.sessions.Load(), middleware.ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}
	app.Use(helmet.New(), middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           int((24 * time.Hour).Seconds()),
	}))

	// Coarse per-IP ceiling; the per-action limits sit on the routes.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.config.Env == "test" || c.Method() == fiber.MethodOptions
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": tooManyRequests})
		},
	}))
}

// SetupRoutes registers the pages, probes and docs. Unmatched paths get the JSON 404.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Feeds
	app.Get("/", s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/search/", s.Search)
	app.Get("/follow/", middleware.LoginRequired(), s.FollowIndex)

	// Profiles; specific /:username/:action routes BEFORE the generic one
	profiles := app.Group("/profile")
	profiles.Get("/:username/follow/", middleware.LoginRequired(), s.ProfileFollow)
	profiles.Get("/:username/unfollow/", middleware.LoginRequired(), s.ProfileUnfollow)
	profiles.Get("/:username/", s.Profile)

	// Posts
	app.Get("/create/", middleware.LoginRequired(), s.PostCreateForm)
	app.Post("/create/", middleware.LoginRequired(),
		s.rateLimiter.Limit("create_post", 10, time.Minute), s.PostCreate)

	posts := app.Group("/posts")
	posts.Get("/:id/edit/", middleware.LoginRequired(), s.PostEditForm)
	posts.Post("/:id/edit/", middleware.LoginRequired(), s.PostEdit)
	posts.Post("/:id/comment/", middleware.LoginRequired(),
		s.rateLimiter.Limit("create_comment", 20, time.Minute), s.AddComment)
	posts.Get("/:id/", s.PostDetail)

	// Accounts
	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupForm)
	auth.Post("/signup/", s.rateLimiter.Limit("signup", 3, 10*time.Minute), s.Signup)
	auth.Get("/login/", s.LoginForm)
	auth.Post("/login/", s.rateLimiter.Limit("login", 10, 5*time.Minute), s.Login)
	auth.Post("/logout/", s.Logout)

	// Static pages and media
	app.Get("/about/author/", s.AboutAuthor)
	app.Get("/about/tech/", s.AboutTech)
	app.Get("/media/:hash", s.Media)

	app.Use(s.NotFound)
}

// Start serves HTTP on the configured port until the app is shut down.
func (s *Server) Start() error {
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env,
		"feature_flags", s.featureFlags.String())
	return s.App().Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and releases the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}
