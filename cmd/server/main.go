package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	corepersistence "github.com/openclerk/casedesk/modules/core/infrastructure/persistence"
	"github.com/openclerk/casedesk/modules/core/presentation/controllers"
	"github.com/openclerk/casedesk/modules/core/seed"
	"github.com/openclerk/casedesk/modules/core/services"
	superadminpersistence "github.com/openclerk/casedesk/modules/superadmin/infrastructure/persistence"
	superadmincontrollers "github.com/openclerk/casedesk/modules/superadmin/presentation/controllers"
	superadminservices "github.com/openclerk/casedesk/modules/superadmin/services"
	"github.com/openclerk/casedesk/pkg/composables"
	"github.com/openclerk/casedesk/pkg/configuration"
	"github.com/openclerk/casedesk/pkg/eventbus"
	"github.com/openclerk/casedesk/pkg/logging"
	"github.com/openclerk/casedesk/pkg/metrics"
	"github.com/openclerk/casedesk/pkg/middleware"
	"github.com/openclerk/casedesk/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		cleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.Endpoint,
		)
		defer cleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.Endpoint)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	bus := eventbus.NewEventPublisher(logger)

	userRepo := corepersistence.NewUserRepository()
	organizationRepo := corepersistence.NewOrganizationRepository()
	membershipRepo := corepersistence.NewMembershipRepository()
	roleRepo := corepersistence.NewRoleRepository()
	permissionRepo := corepersistence.NewPermissionRepository()
	pointerRepo := corepersistence.NewPointerRepository()
	auditRepo := superadminpersistence.NewPgElevationAuditLogRepository()

	engine := services.NewPermissionEngine(membershipRepo, roleRepo, organizationRepo)
	tenancyService := services.NewTenancyService(userRepo, membershipRepo, organizationRepo, pointerRepo, engine, bus)
	guard := services.NewAccessGuard(tenancyService, userRepo)
	organizationService := services.NewOrganizationService(organizationRepo, bus)
	userService := services.NewUserService(userRepo, bus)
	auditService := superadminservices.NewAuditService(auditRepo)
	elevationService := superadminservices.NewElevationService(
		userRepo,
		auditService,
		bus,
		conf.SuperAdmin.Normalized(),
	)

	seedCtx := composables.WithPool(context.Background(), pool)
	if err := seed.SyncPermissionCatalog(seedCtx, permissionRepo); err != nil {
		logger.WithError(err).Fatal("failed to sync permission catalog")
	}
	if err := seed.CreateDefaultRoles(seedCtx, roleRepo); err != nil {
		logger.WithError(err).Fatal("failed to seed default roles")
	}

	controllerList := []server.Controller{
		controllers.NewHealthController(),
		controllers.NewTenancyController(tenancyService),
		controllers.NewLoginController(userService, elevationService),
		controllers.NewOrganizationsController(guard, organizationService),
		superadmincontrollers.NewAuditController(guard, auditService),
	}
	if conf.Prometheus.Enabled {
		controllerList = append(controllerList, metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	srv := server.NewHTTPServer(controllerList, []mux.MiddlewareFunc{
		middleware.WithLogger(logger),
		middleware.WithPool(pool),
		middleware.WithIdentity(),
	})

	logger.Infof("Listening on %s", conf.SocketAddress)
	if err := srv.Start(conf.SocketAddress); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
