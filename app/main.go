package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/minthway/wayfarer/internal/adminservice"
	"github.com/minthway/wayfarer/internal/blogservice"
	"github.com/minthway/wayfarer/internal/certservice"
	"github.com/minthway/wayfarer/internal/common"
	"github.com/minthway/wayfarer/internal/imageservice"
	"github.com/minthway/wayfarer/internal/mailservice"
	"github.com/minthway/wayfarer/internal/userservice"
)

type application struct {
	config       *Config
	logger       *slog.Logger
	userService  *userservice.UserService
	blogService  *blogservice.BlogService
	certService  *certservice.CertService
	adminService *adminservice.AdminService
	mailService  *mailservice.MailService
	broker       *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	images := imageservice.NewGithubStore(cfg.GitHub.Token, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch)

	app := &application{
		config:       cfg,
		logger:       logger,
		userService:  userservice.NewUserService(db, broker),
		blogService:  blogservice.NewBlogService(db, cache, images),
		certService:  certservice.NewCertService(db),
		adminService: adminservice.NewAdminService(db),
		mailService:  mailservice.NewMailService(broker, cfg.Mail.Host, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.Port, logger),
		broker:       broker,
	}

	// the admin account must exist before any moderation can happen
	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = app.userService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		cancel()
		if err != nil {
			logger.Error("failed to ensure admin account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	go app.mailService.SendWelcomeEmail()
	defer app.mailService.Close()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
