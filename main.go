package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/meinhoongagan/maternity-app/audit"
	"github.com/meinhoongagan/maternity-app/config"
	"github.com/meinhoongagan/maternity-app/controllers"
	"github.com/meinhoongagan/maternity-app/cron"
	"github.com/meinhoongagan/maternity-app/db"
	"github.com/meinhoongagan/maternity-app/logger"
	"github.com/meinhoongagan/maternity-app/middleware"
	"github.com/meinhoongagan/maternity-app/rbac"
	"github.com/meinhoongagan/maternity-app/redis"
	"github.com/meinhoongagan/maternity-app/routes"
	"github.com/meinhoongagan/maternity-app/session"
	"github.com/meinhoongagan/maternity-app/utils"
)

func main() {
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	seed := flag.Bool("seed", false, "seed roles, permissions and the bootstrap administrator, then exit")
	adminName := flag.String("admin-name", "Administrador", "name of the bootstrap administrator")
	adminRut := flag.String("admin-rut", "11111111-1", "RUT of the bootstrap administrator")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg)

	gdb, err := db.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if *migrate || *seed {
		if err := db.Migrate(gdb); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
		log.Info("Database migrated")
	}
	if *seed {
		if err := db.Seed(gdb); err != nil {
			log.WithError(err).Fatal("Failed to seed database")
		}
		if cfg.AdminEmail != "" {
			admin, err := db.EnsureAdmin(gdb, cfg.AdminEmail, *adminName, *adminRut, cfg.AdminPassword)
			if err != nil {
				log.WithError(err).Fatal("Failed to create administrator")
			}
			log.WithField("email", admin.Email).Info("Administrator ready")
		}
		log.Info("Database seeded")
	}
	if *migrate || *seed {
		return
	}

	if cfg.SessionSecret == "" {
		if !cfg.IsDevelopment() {
			log.Fatal("SESSION_SECRET is required outside development")
		}
		cfg.SessionSecret = "development-only-secret"
		log.Warn("SESSION_SECRET not set, using the development secret")
	}

	var store session.Store
	if cfg.RedisAddr != "" {
		client, err := redis.NewClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to redis")
		}
		defer client.Close()
		store = redis.NewSessionStore(client)
		log.WithField("addr", cfg.RedisAddr).Info("Server-side session registry enabled")
	}

	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, !cfg.IsDevelopment(), store)
	resolver := rbac.NewResolver(gdb)
	h := &controllers.Handler{
		DB:       gdb,
		Gate:     rbac.NewGate(gdb, resolver, sessions),
		Resolver: resolver,
		Sessions: sessions,
		Audit:    audit.NewRecorder(log),
		Config:   cfg,
		Log:      log,
	}

	app := fiber.New(fiber.Config{
		AppName:      "maternity-app",
		ErrorHandler: utils.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(log))

	if err := routes.Setup(app, h); err != nil {
		log.WithError(err).Fatal("Failed to set up routes")
	}

	var mailer utils.Mailer
	if cfg.MailEnabled() {
		mailer = &utils.SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.EmailUser, Pass: cfg.EmailPass}
	}
	census := cron.NewCensus(gdb, log, cfg.StayAlertDays, mailer, cfg.AlertEmail)
	scheduler, err := cron.Start(cfg.CensusSchedule, census, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to start cron jobs")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
