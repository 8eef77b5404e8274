package router

import (
	"fmt"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/handler"
	"taskmanager/internal/middleware"
	"taskmanager/internal/model"
	"taskmanager/internal/policy"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
	"taskmanager/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer needs. New builds it from live
// connections; tests build it from in-memory repositories.
type Services struct {
	Tokens     *auth.TokenManager
	Auth       service.AuthService
	Tasks      service.TaskService
	Groups     service.GroupService
	GroupTasks service.GroupTaskService
	Users      service.UserService
	Health     gin.HandlerFunc
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Postgres/Mongo/Redis
func New(cfg *config.Config, db *gorm.DB, mdb *mongo.Database, rdb *redis.Client) (*gin.Engine, error) {
	roles, err := policy.Load(cfg.RolePolicyFile, config.SplitList(cfg.AdminEmails), config.SplitList(cfg.MasterEmails))
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	credRepo := repository.NewCredentialRepository(db)
	userRepo := repository.NewUserRepository(mdb)
	taskRepo := repository.NewTaskRepository(mdb)
	groupRepo := repository.NewGroupRepository(mdb)
	groupTaskRepo := repository.NewGroupTaskRepository(mdb)

	// ── Services ─────────────────────────────────────────────────────────────
	tokens := auth.NewTokenManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationMinutes)*time.Minute,
		auth.NewRedisRevoker(rdb),
	)
	// Worker dispatcher, injected into services that enqueue e-mail jobs
	dispatcher := worker.NewDispatcher(rdb)

	svcs := Services{
		Tokens:     tokens,
		Auth:       service.NewAuthService(credRepo, userRepo, tokens, roles, dispatcher, cfg.BcryptCost),
		Tasks:      service.NewTaskService(taskRepo, userRepo),
		Groups:     service.NewGroupService(groupRepo, groupTaskRepo, userRepo),
		GroupTasks: service.NewGroupTaskService(groupRepo, groupTaskRepo, userRepo, dispatcher),
		Users:      service.NewUserService(userRepo, taskRepo, groupRepo, credRepo),
		Health:     handler.Health(db, mdb.Client(), rdb),
	}
	return Engine(cfg, svcs), nil
}

// Engine registers middleware and routes on a new Gin engine.
func Engine(cfg *config.Config, s Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(config.SplitList(cfg.CORSAllowedOrigins)))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(s.Auth)
	tasksH := handler.NewTasksHandler(s.Tasks)
	groupsH := handler.NewGroupsHandler(s.Groups)
	groupTasksH := handler.NewGroupTasksHandler(s.GroupTasks)
	usersH := handler.NewUsersHandler(s.Users)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	if s.Health != nil {
		r.GET("/health", s.Health)
	}
	loginRL := middleware.LoginRateLimiter(cfg.LoginRateLimit)
	r.POST("/register", loginRL, authH.Register)
	r.POST("/login", loginRL, authH.Login)

	// Protected routes
	jwtMW := middleware.JWTAuth(s.Tokens)
	api := r.Group("", jwtMW)
	{
		api.POST("/logout", authH.Logout)

		api.GET("/tasks", tasksH.List)
		api.POST("/tasks", tasksH.Create)
		api.PUT("/tasks/:taskId", tasksH.Update)
		api.DELETE("/tasks/:taskId", tasksH.Delete)

		// Group role and membership checks live in the services.
		api.GET("/groups", groupsH.List)
		api.POST("/groups", groupsH.Create)
		api.GET("/groups/:groupId", groupsH.Get)
		api.DELETE("/groups/:groupId", groupsH.Delete)
		api.GET("/groups/:groupId/users", groupsH.Members)
		api.POST("/groups/:groupId/users", groupsH.AddMember)
		api.DELETE("/groups/:groupId/users/:userId", groupsH.RemoveMember)

		api.GET("/groups/:groupId/tasks", groupTasksH.List)
		api.POST("/groups/:groupId/tasks", groupTasksH.Assign)
		api.GET("/groups/:groupId/tasks/stats", groupTasksH.Stats)
		api.PUT("/groups/:groupId/tasks/:taskId", groupTasksH.UpdateStatus)
		api.PATCH("/groups/:groupId/tasks/:taskId", groupTasksH.UpdateStatus)
		api.DELETE("/groups/:groupId/tasks/:taskId", groupTasksH.Delete)
		api.GET("/groups/:groupId/report", groupTasksH.Report)

		users := api.Group("/users", middleware.RequireRole(model.RoleAdmin, model.RoleMaster))
		{
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Delete)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
