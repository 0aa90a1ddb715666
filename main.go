package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mousaid/car-sales-agent/agent/catalog"
	"github.com/mousaid/car-sales-agent/agent/extractor"
	historyx "github.com/mousaid/car-sales-agent/agent/history"
	llmx "github.com/mousaid/car-sales-agent/agent/llm"
	"github.com/mousaid/car-sales-agent/agent/mailer"
	"github.com/mousaid/car-sales-agent/agent/orchestrator"
	profilex "github.com/mousaid/car-sales-agent/agent/profile"
	promptx "github.com/mousaid/car-sales-agent/agent/prompt"
	configx "github.com/mousaid/car-sales-agent/pkg/config"
	dbx "github.com/mousaid/car-sales-agent/pkg/db"
	_ "github.com/mousaid/car-sales-agent/pkg/logger/autoload"
	openrouterx "github.com/mousaid/car-sales-agent/pkg/openrouter"
	"github.com/mousaid/car-sales-agent/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	dbCfg := configx.MustNew[dbx.Config]("DATABASE")
	if err := dbx.Migrate(dbCfg.URL); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}
	bundb := dbx.Open(*dbCfg)
	defer bundb.Close()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		log.Fatal().Msg("openrouter client requires an API key")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	completer, err := llmx.New(openRouterClient, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize completer")
	}

	prompts := promptx.Load()
	ex, err := extractor.New(completer, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize extractor")
	}

	mailCfg := configx.MustNew[mailer.Config]("SMTP")

	turns, err := orchestrator.New(
		profilex.NewPostgresStore(bundb),
		historyx.NewPostgresStore(bundb),
		catalog.NewPostgresStore(bundb),
		ex,
		completer,
		mailer.New(*mailCfg),
		prompts,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize orchestrator")
	}

	serverCfg := configx.MustNew[server.Config]("SERVER")
	srv := &http.Server{
		Addr:    serverCfg.Addr,
		Handler: server.NewRouter(*serverCfg, turns),
	}

	go func() {
		log.Info().Str("addr", serverCfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown http server")
	}
}
