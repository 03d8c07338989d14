package router

import (
	"time"

	"attendance/internal/clock"
	"attendance/internal/config"
	"attendance/internal/event"
	"attendance/internal/handler"
	"attendance/internal/infra"
	"attendance/internal/middleware"
	"attendance/internal/model"
	"attendance/internal/repository"
	"attendance/internal/service"
	"attendance/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the pieces owned by the composition root and shared with the
// background workers. Nil fields get working defaults.
type Deps struct {
	Clock  clock.Clock
	Bus    *event.Bus
	SMTPCB *infra.CircuitBreaker
	Queue  service.EmailQueue
	DLQ    *worker.RedisDLQ
}

const (
	admin    = model.RoleAdministrator
	manager  = model.RoleManager
	crewBoss = model.RoleCrewBoss
	employee = model.RoleEmployee
	client   = model.RoleClient
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Bus == nil {
		deps.Bus = event.NewBus()
	}
	if deps.Queue == nil {
		deps.Queue = worker.NewDispatcher(rdb)
	}
	if deps.DLQ == nil {
		deps.DLQ = worker.NewRedisDLQ(rdb)
	}
	clk := deps.Clock

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	tx := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewJobOrderRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	jobRepo := repository.NewJobRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	rateRepo := repository.NewEmployeeRateRepository(db)
	itemRepo := repository.NewServiceItemRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)
	emailRepo := repository.NewEmailLogRepository(db)
	seqRepo := repository.NewSequenceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	service.NewOrderOrchestrator(orderRepo, clk).Register(deps.Bus)

	seqSvc := service.NewSequenceService(seqRepo, tx, clk)
	userSvc := service.NewUserService(userRepo, seqSvc, tx, clk)
	orderSvc := service.NewJobOrderService(orderRepo, userRepo, seqSvc, clk)
	rateSvc := service.NewRateService(rateRepo, userRepo, itemRepo, tx,
		infra.NewRedisCache(rdb, "attendance:"), cfg.RateCacheTTL, clk)
	itemSvc := service.NewServiceItemService(itemRepo, clk)
	quoteSvc := service.NewQuoteService(quoteRepo, orderRepo, itemRepo, rateSvc, seqSvc, tx, deps.Bus, clk)
	jobSvc := service.NewJobService(jobRepo, orderRepo, userRepo, seqSvc, tx, deps.Bus, clk)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, quoteRepo, seqSvc, tx, clk)
	entrySvc := service.NewTimeEntryService(entryRepo, userRepo, jobRepo, tx, clk)
	notifySvc := service.NewNotificationService(emailRepo, quoteRepo, invoiceRepo, userRepo,
		deps.Queue, cfg.SMTPFrom, cfg.CompanyName, clk)

	// ── Handlers ─────────────────────────────────────────────────────────────
	docs := handler.DocumentConfig{Company: cfg.CompanyName, StoragePath: cfg.PDFStoragePath}
	usersH := handler.NewUsersHandler(userSvc)
	ordersH := handler.NewJobOrdersHandler(orderSvc)
	quotesH := handler.NewQuotesHandler(quoteSvc, orderSvc, notifySvc, docs)
	jobsH := handler.NewJobsHandler(jobSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc, notifySvc, docs)
	ratesH := handler.NewRatesHandler(rateSvc)
	itemsH := handler.NewServiceItemsHandler(itemSvc)
	entriesH := handler.NewTimeEntriesHandler(entrySvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.SMTPCB, deps.DLQ))

	staff := middleware.RequireRole(manager, admin)
	anyone := middleware.RequireRole(admin, manager, crewBoss, employee, client)
	workforce := middleware.RequireRole(admin, manager, crewBoss, employee)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		users := v1.Group("/users", middleware.RequireRole(admin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.GET("/:id", usersH.Get)
			users.DELETE("/:id", usersH.Deactivate)
		}

		orders := v1.Group("/job-orders")
		{
			orders.POST("", staff, ordersH.Create)
			orders.GET("", anyone, ordersH.List)
			orders.GET("/:id", anyone, ordersH.Get)
			orders.POST("/:id/cancel", staff, ordersH.Cancel)
			orders.GET("/:id/quotes", anyone, quotesH.ListByJobOrder)
		}

		quotes := v1.Group("/quotes")
		{
			quotes.POST("", staff, quotesH.Create)
			quotes.POST("/generate-from-changes", staff, quotesH.GenerateFromChanges)
			quotes.GET("/:id", anyone, quotesH.Get)
			quotes.PUT("/:id/status", anyone, quotesH.UpdateStatus)
			quotes.POST("/:id/line-items", staff, quotesH.AddLineItem)
			quotes.DELETE("/:id/line-items/:itemId", staff, quotesH.RemoveLineItem)
			quotes.DELETE("/:id", staff, quotesH.Delete)
			quotes.POST("/:id/send", staff, quotesH.Send)
			quotes.GET("/:id/pdf", staff, quotesH.PDF)
		}

		jobs := v1.Group("/jobs", workforce)
		{
			jobs.POST("/from-order/:jobOrderId", staff, jobsH.CreateFromOrder)
			jobs.GET("", jobsH.List)
			jobs.GET("/:id", jobsH.Get)
			jobs.GET("/:id/assignments", jobsH.Assignments)
			// Crew bosses are limited to their own jobs inside the handler.
			jobs.PUT("/:id/status", middleware.RequireRole(crewBoss, manager, admin), jobsH.UpdateStatus)
			jobs.POST("/:id/assign-employee", middleware.RequireRole(crewBoss, manager, admin), jobsH.AssignEmployee)
			jobs.DELETE("/:id/assignments/:employeeId", middleware.RequireRole(crewBoss, manager, admin), jobsH.UnassignEmployee)
		}

		invoices := v1.Group("/invoices", staff)
		{
			invoices.POST("/from-quote", invoicesH.CreateFromQuote)
			invoices.GET("/:id", invoicesH.Get)
			invoices.GET("/:id/pdf", invoicesH.PDF)
			invoices.PUT("/:id/status", invoicesH.UpdateStatus)
			invoices.DELETE("/:id", invoicesH.Delete)
			invoices.POST("/:id/send", invoicesH.Send)
		}
		v1.GET("/clients/:id/invoices", staff, invoicesH.ListByClient)

		rates := v1.Group("/employeerates", middleware.RequireRole(admin))
		{
			rates.POST("", ratesH.SetRate)
			rates.POST("/bulk-update", ratesH.BulkSetRates)
			rates.GET("/employee/:employeeId", ratesH.ListByEmployee)
			rates.GET("/active", ratesH.Active)
			rates.DELETE("/:id", ratesH.Delete)
		}

		items := v1.Group("/service-items")
		{
			items.GET("", anyone, itemsH.List)
			items.GET("/shift-hours", anyone, itemsH.ShiftHours)
			items.GET("/:id", anyone, itemsH.Get)
			items.POST("", middleware.RequireRole(admin), itemsH.Create)
			items.PUT("/:id", middleware.RequireRole(admin), itemsH.Update)
			items.DELETE("/:id", middleware.RequireRole(admin), itemsH.Deactivate)
		}

		entries := v1.Group("/timeentry", workforce)
		{
			entries.POST("/clock-in", entriesH.ClockIn)
			entries.POST("/clock-out", entriesH.ClockOut)
			entries.GET("/active", entriesH.Active)
			entries.GET("", entriesH.List)
			entries.GET("/report", entriesH.Report)
			entries.GET("/report/all", staff, entriesH.ReportAll)
			entries.GET("/report/all/export", staff, entriesH.ExportAll)

			manage := entries.Group("/manage", staff)
			{
				manage.POST("", entriesH.Create)
				manage.PUT("/:id", entriesH.Update)
				manage.DELETE("/:id", entriesH.Cancel)
				manage.GET("/user/:userId", entriesH.UserEntries)
			}
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
