package app

import (
	"fmt"

	"github.com/chorushq/chorus/internal/config"
	"github.com/chorushq/chorus/internal/db"
	"github.com/chorushq/chorus/internal/repository"
	"github.com/chorushq/chorus/internal/service"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	TokenIssuer       *service.TokenIssuer
	AccountService    *service.AccountService
	GoogleService     *service.GoogleService
	GithubService     *service.GithubService
	MembershipService *service.MembershipService
	EmailService      *service.EmailService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	accountRepository := repository.NewAccountRepository(database)
	membershipRepository := repository.NewMembershipRepository(database)

	// Services
	hasher := service.NewPasswordHasher()
	issuer := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	emailService := service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppName, cfg.IsDevelopment())
	membershipService := service.NewMembershipService(membershipRepository, cfg.DefaultChannelID)
	accountService := service.NewAccountService(accountRepository, hasher, issuer, membershipService, emailService)

	googleClient := service.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppURL+"/auth/google/callback")
	googleService := service.NewGoogleService(accountRepository, issuer, membershipService, googleClient)
	githubService := service.NewGithubService(accountRepository)

	return &App{
		Cfg:               cfg,
		DB:                database,
		TokenIssuer:       issuer,
		AccountService:    accountService,
		GoogleService:     googleService,
		GithubService:     githubService,
		MembershipService: membershipService,
		EmailService:      emailService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
