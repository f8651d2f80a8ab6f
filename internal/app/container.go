package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	courseworkCommands "github.com/edusense/edusense/internal/coursework/application/commands"
	courseworkQueries "github.com/edusense/edusense/internal/coursework/application/queries"
	courseworkServices "github.com/edusense/edusense/internal/coursework/application/services"
	courseworkSubscribers "github.com/edusense/edusense/internal/coursework/application/subscribers"
	"github.com/edusense/edusense/internal/coursework/domain/task"
	identityApplication "github.com/edusense/edusense/internal/identity/application"
	identityDomain "github.com/edusense/edusense/internal/identity/domain"
	sharedApplication "github.com/edusense/edusense/internal/shared/application"
	"github.com/edusense/edusense/internal/shared/infrastructure/cache"
	"github.com/edusense/edusense/internal/shared/infrastructure/database"
	_ "github.com/edusense/edusense/internal/shared/infrastructure/database/postgres" // register Postgres driver
	_ "github.com/edusense/edusense/internal/shared/infrastructure/database/sqlite"   // register SQLite driver
	"github.com/edusense/edusense/internal/shared/infrastructure/eventbus"
	"github.com/edusense/edusense/internal/shared/infrastructure/migrations"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	"github.com/edusense/edusense/internal/shared/infrastructure/security"
	studyplanCommands "github.com/edusense/edusense/internal/studyplan/application/commands"
	studyplanQueries "github.com/edusense/edusense/internal/studyplan/application/queries"
	studyplanServices "github.com/edusense/edusense/internal/studyplan/application/services"
	studyplanDomain "github.com/edusense/edusense/internal/studyplan/domain"
	"github.com/edusense/edusense/internal/studyplan/infrastructure/groq"
	"github.com/edusense/edusense/pkg/config"
	"github.com/edusense/edusense/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	UserRepo     identityDomain.UserRepository
	TaskRepo     task.Repository
	ScheduleRepo studyplanDomain.Repository
	OutboxRepo   outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Publishers
	EventPublisher eventbus.Publisher

	// Report cache
	ReportCache cache.ReportCache

	// Auth
	TokenManager   *security.TokenManager
	PasswordHasher security.PasswordHasher
	AuthService    *identityApplication.AuthService

	// Scoring Engines
	PriorityEngine   *courseworkServices.PriorityEngine
	WorkloadAnalyzer *courseworkServices.WorkloadAnalyzer

	// Schedule Drafter (nil without an API key; planning falls back to rules)
	Drafter studyplanServices.Drafter

	// Task Command Handlers
	CreateTaskHandler   *courseworkCommands.CreateTaskHandler
	UpdateTaskHandler   *courseworkCommands.UpdateTaskHandler
	StartTaskHandler    *courseworkCommands.StartTaskHandler
	CompleteTaskHandler *courseworkCommands.CompleteTaskHandler
	DeleteTaskHandler   *courseworkCommands.DeleteTaskHandler

	// Task Query Handlers
	GetTaskHandler        *courseworkQueries.GetTaskHandler
	ListTasksHandler      *courseworkQueries.ListTasksHandler
	PriorityReportHandler *courseworkQueries.GetPriorityReportHandler
	WorkloadReportHandler *courseworkQueries.GetWorkloadReportHandler

	// Schedule Command Handlers
	GenerateScheduleHandler *studyplanCommands.GenerateScheduleHandler
	CompleteScheduleHandler *studyplanCommands.CompleteScheduleHandler
	DeleteScheduleHandler   *studyplanCommands.DeleteScheduleHandler

	// Schedule Query Handlers
	GetScheduleHandler   *studyplanQueries.GetScheduleHandler
	ListSchedulesHandler *studyplanQueries.ListSchedulesHandler

	// Outbox Processor
	OutboxProcessor *outbox.Processor

	// Health
	Health *observability.HealthRegistry
}

// NewContainer creates and wires all dependencies. The database is
// required; migrations run on startup. Redis, RabbitMQ, and Groq are
// optional: without them the container falls back to in-memory report
// caching, the in-process event bus, and rule-based planning. Outside
// development a configured-but-unreachable Redis or RabbitMQ is fatal.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Connect to the database
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect to Redis (optional)
	if cfg.HasRedis() {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				_ = conn.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, report cache falls back to memory", "error", err)
		} else {
			client := redis.NewClient(opt)
			if err := client.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					_ = client.Close()
					_ = conn.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, report cache falls back to memory", "error", err)
				_ = client.Close()
			} else {
				c.RedisClient = client
				logger.Info("connected to Redis")
			}
		}
	}
	if c.RedisClient != nil {
		c.ReportCache = cache.NewRedisCache(c.RedisClient, logger)
	} else {
		c.ReportCache = cache.NewMemoryCache()
	}

	// Create repositories
	factory := NewRepositoryFactory(conn)
	c.UserRepo = factory.UserRepository()
	c.TaskRepo = factory.TaskRepository()
	c.ScheduleRepo = factory.ScheduleRepository()
	c.OutboxRepo = factory.OutboxRepository()

	// Unit of work
	c.UnitOfWork = database.NewUnitOfWork(conn)

	// Create event publisher. Without a broker the in-process bus keeps
	// outbox delivery working inside a single binary.
	if cfg.HasRabbitMQ() {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
			c.EventPublisher = eventbus.NewInProcessEventBus(logger)
		} else {
			c.EventPublisher = publisher
		}
	} else {
		c.EventPublisher = eventbus.NewInProcessEventBus(logger)
	}

	// On the in-process bus, task changes clear the owner's cached reports
	// as soon as the outbox relays the event. With a broker, the worker
	// process runs the same subscriber against the shared cache.
	if bus, ok := c.EventPublisher.(*eventbus.InProcessEventBus); ok {
		bus.RegisterConsumer(courseworkSubscribers.NewReportCacheSubscriber(c.ReportCache, logger))
	}

	// Create auth services
	tokens, err := security.NewTokenManager(cfg.JWTSecret, "edusense", cfg.TokenTTL)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}
	c.TokenManager = tokens
	c.PasswordHasher = security.NewBcryptHasher(cfg.BcryptCost)
	c.AuthService = identityApplication.NewAuthService(c.UserRepo, c.OutboxRepo, c.UnitOfWork, c.PasswordHasher, c.TokenManager)

	// Create scoring engines
	c.PriorityEngine = courseworkServices.NewPriorityEngine(courseworkServices.DefaultPriorityConfig())
	c.WorkloadAnalyzer = courseworkServices.NewWorkloadAnalyzer(courseworkServices.DefaultWorkloadConfig())

	// Create AI drafter when configured
	if cfg.HasAI() {
		c.Drafter = groq.NewDrafter(groq.Config{
			BaseURL:          cfg.GroqBaseURL,
			APIKey:           cfg.GroqAPIKey,
			Model:            cfg.GroqModel,
			Timeout:          cfg.AITimeout,
			BreakerThreshold: uint32(cfg.AIBreakerThreshold),
			BreakerReset:     cfg.AIBreakerReset,
		}, logger)
		logger.Info("AI schedule drafting enabled", "model", cfg.GroqModel)
	}

	// Create task command handlers
	c.CreateTaskHandler = courseworkCommands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateTaskHandler = courseworkCommands.NewUpdateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.StartTaskHandler = courseworkCommands.NewStartTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.CompleteTaskHandler = courseworkCommands.NewCompleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteTaskHandler = courseworkCommands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)

	// Create task query handlers
	c.GetTaskHandler = courseworkQueries.NewGetTaskHandler(c.TaskRepo)
	c.ListTasksHandler = courseworkQueries.NewListTasksHandler(c.TaskRepo)
	c.PriorityReportHandler = courseworkQueries.NewGetPriorityReportHandler(c.TaskRepo, c.PriorityEngine, c.ReportCache, cfg.ReportCacheTTL, logger)
	c.WorkloadReportHandler = courseworkQueries.NewGetWorkloadReportHandler(c.TaskRepo, c.WorkloadAnalyzer, c.ReportCache, cfg.ReportCacheTTL, logger)

	// Create schedule command handlers
	c.GenerateScheduleHandler = studyplanCommands.NewGenerateScheduleHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork, c.Drafter, logger)
	c.CompleteScheduleHandler = studyplanCommands.NewCompleteScheduleHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteScheduleHandler = studyplanCommands.NewDeleteScheduleHandler(c.ScheduleRepo, c.OutboxRepo, c.UnitOfWork)

	// Create schedule query handlers
	c.GetScheduleHandler = studyplanQueries.NewGetScheduleHandler(c.ScheduleRepo)
	c.ListSchedulesHandler = studyplanQueries.NewListSchedulesHandler(c.ScheduleRepo)

	// Create outbox processor (the caller decides whether to start it)
	processorConfig := outbox.DefaultProcessorConfig()
	processorConfig.PollInterval = cfg.OutboxPollInterval
	processorConfig.BatchSize = cfg.OutboxBatchSize
	processorConfig.MaxRetries = cfg.OutboxMaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)

	// Register health checks
	c.Health = observability.NewHealthRegistry()
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	if c.RedisClient != nil {
		client := c.RedisClient
		c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}
	if rabbit, ok := c.EventPublisher.(*eventbus.RabbitMQPublisher); ok {
		c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(func(context.Context) error {
			if rabbit.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}))
	}

	return c, nil
}

// NewLocalContainer creates a container for zero-config local use:
// SQLite storage, in-memory report cache, in-process events. External
// service settings in the environment are ignored.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	local := *cfg
	local.LocalMode = true
	local.DatabaseDriver = string(database.DriverSQLite)
	local.DatabaseURL = ""
	local.RedisURL = ""
	local.RabbitMQURL = ""
	return NewContainer(ctx, &local, logger)
}

// localUserEmail identifies the account CLI commands run as when nobody
// registered explicitly.
const localUserEmail = "local@edusense.local"

// EnsureLocalUser finds or creates the local CLI account and returns its
// ID. The account gets a random password; it exists only to own the tasks
// and schedules created from the terminal.
func (c *Container) EnsureLocalUser(ctx context.Context) (uuid.UUID, error) {
	email, err := identityDomain.NewEmail(localUserEmail)
	if err != nil {
		return uuid.Nil, err
	}

	existing, err := c.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return existing.ID(), nil
	}
	if !errors.Is(err, identityDomain.ErrUserNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up local user: %w", err)
	}

	result, err := c.AuthService.Register(ctx, identityApplication.RegisterCommand{
		FullName: "Local Student",
		Email:    localUserEmail,
		Password: uuid.NewString(),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create local user: %w", err)
	}
	c.Logger.Info("created local user", "user_id", result.User.ID)
	return result.User.ID, nil
}

// Close cleans up all resources in reverse initialization order.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
		c.RedisClient = nil
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
		c.DBConn = nil
	}
}
