package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/capscollective/portal/internal/api"
	"github.com/capscollective/portal/internal/auth"
	"github.com/capscollective/portal/internal/build"
	"github.com/capscollective/portal/internal/config"
	"github.com/capscollective/portal/internal/db"
	"github.com/capscollective/portal/internal/handler"
	"github.com/capscollective/portal/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logrus.New()
			log.SetFormatter(&logrus.JSONFormatter{})

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			oidcProvider, err := auth.NewProvider(context.Background(), cfg)
			if err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			skillStore := store.NewSkillStore(database)
			connectionStore := store.NewConnectionStore(database)
			invitationStore := store.NewInvitationStore(database)
			settingStore := store.NewSettingStore(database)

			authHandlers := auth.NewHandlers(oidcProvider, sessionManager, userStore, cfg.AdminEmail, !cfg.InsecureCookies)
			bearerAuth := auth.NewBearerMiddleware(oidcProvider)

			apiRouter := api.NewAPIRouter(api.Deps{
				BearerAuth:  bearerAuth,
				Users:       userStore,
				Skills:      skillStore,
				Connections: connectionStore,
				Invitations: invitationStore,
				Settings:    settingStore,
				Logger:      log,
			})

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthHandlers:   authHandlers,
				API:            apiRouter,
			})

			log.WithFields(logrus.Fields{
				"addr":    cfg.HTTP.Addr,
				"version": build.Version,
			}).Info("listening")
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
