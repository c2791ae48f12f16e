package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/penguin789456/rfid-attendance-system/internal/adapters/grpc/handler"
	"github.com/penguin789456/rfid-attendance-system/internal/adapters/repository/memory"
	"github.com/penguin789456/rfid-attendance-system/internal/adapters/repository/postgres"
	"github.com/penguin789456/rfid-attendance-system/internal/adapters/rest"
	"github.com/penguin789456/rfid-attendance-system/internal/core/attendance"
	"github.com/penguin789456/rfid-attendance-system/internal/core/department"
	"github.com/penguin789456/rfid-attendance-system/internal/core/employee"
	"github.com/penguin789456/rfid-attendance-system/internal/core/ruleconfig"
	"github.com/penguin789456/rfid-attendance-system/internal/core/schedule"
	"github.com/penguin789456/rfid-attendance-system/internal/platform/config"
	pg "github.com/penguin789456/rfid-attendance-system/internal/platform/db/postgres"
	"github.com/penguin789456/rfid-attendance-system/internal/platform/server"
)

type transactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// departmentStore は部門の永続化と存在確認を兼ねます。
type departmentStore interface {
	department.Repository
	employee.DepartmentFinder
}

// repositories はドライバごとに切り替わる永続化層の集合です。
type repositories struct {
	departments     departmentStore
	employees       employee.Repository
	schedules       schedule.ScheduleRepository
	flexSettings    schedule.FlexSettingRepository
	requiredConfigs ruleconfig.Repository
	daily           attendance.DailyRepository
	scanEvents      attendance.ScanEventRepository
	tx              transactionManager
}

// locationClock は設定されたタイムゾーンの現在時刻を返します。
type locationClock struct {
	loc *time.Location
}

func (c locationClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	repos, closeRepos, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	defer closeRepos()

	clock := locationClock{loc: cfg.Attendance.Location}

	departmentSvc := department.NewService(repos.departments, clock, repos.tx)
	employeeSvc := employee.NewService(repos.employees, repos.departments, clock, repos.tx)
	publisher := ruleconfig.NewPublisher(repos.requiredConfigs, repos.schedules, repos.flexSettings, clock)
	scheduleSvc := schedule.NewService(repos.schedules, repos.flexSettings, repos.departments, publisher, clock, repos.tx)
	configSvc := ruleconfig.NewService(repos.requiredConfigs, repos.tx)
	attendanceSvc := attendance.NewService(repos.daily, repos.scanEvents, clock, repos.tx)
	engine := attendance.NewEngine(attendance.EngineDeps{
		Employees: repos.employees,
		Schedules: scheduleSvc,
		Resolver:  ruleconfig.NewResolver(repos.requiredConfigs),
		Daily:     repos.daily,
		Events:    attendance.NewEventLog(repos.scanEvents),
		Clock:     clock,
		Tx:        repos.tx,
		Location:  cfg.Attendance.Location,
	})

	grpcServer := server.New(cfg.Server.ListenAddr,
		handler.NewAttendanceGrpcHandler(engine, attendanceSvc, cfg.Attendance.DefaultDeviceID))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("gRPC server listening on %s", cfg.Server.ListenAddr)
		return grpcServer.Run(gctx)
	})

	if cfg.HTTP.ListenAddr != "" {
		router := rest.NewRouter(rest.NewHandler(rest.Deps{
			Scanner:         engine,
			Attendance:      attendanceSvc,
			Departments:     departmentSvc,
			Employees:       employeeSvc,
			Schedules:       scheduleSvc,
			Configs:         configSvc,
			DefaultDeviceID: cfg.Attendance.DefaultDeviceID,
		}), cfg.HTTP.AllowedOrigins)
		httpServer := server.NewHTTP(cfg.HTTP.ListenAddr, router, cfg.HTTP.ReadTimeout)
		g.Go(func() error {
			log.Printf("HTTP server listening on %s", cfg.HTTP.ListenAddr)
			return httpServer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (*repositories, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Printf("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			departments:     store.Departments(),
			employees:       store.Employees(),
			schedules:       store.Schedules(),
			flexSettings:    store.FlexSettings(),
			requiredConfigs: store.RequiredConfigs(),
			daily:           store.AttendanceDaily(),
			scanEvents:      store.ScanEvents(),
		}, func() {}, nil
	}

	pool, err := pg.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &repositories{
		departments:     postgres.NewDepartmentRepository(pool),
		employees:       postgres.NewEmployeeRepository(pool),
		schedules:       postgres.NewScheduleRepository(pool),
		flexSettings:    postgres.NewFlexSettingRepository(pool),
		requiredConfigs: postgres.NewRequiredConfigRepository(pool),
		daily:           postgres.NewDailyRepository(pool),
		scanEvents:      postgres.NewScanEventRepository(pool),
		tx:              pg.NewTransactionManager(pool),
	}, pool.Close, nil
}
