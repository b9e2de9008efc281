/*
 * ImKitchen - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/imkitchen/imkitchen/internal/auth"
	"github.com/imkitchen/imkitchen/internal/command"
	"github.com/imkitchen/imkitchen/internal/config"
	"github.com/imkitchen/imkitchen/internal/delivery"
	"github.com/imkitchen/imkitchen/internal/email"
	"github.com/imkitchen/imkitchen/internal/eventstore"
	"github.com/imkitchen/imkitchen/internal/httpapi"
	"github.com/imkitchen/imkitchen/internal/lockmap"
	"github.com/imkitchen/imkitchen/internal/logging"
	"github.com/imkitchen/imkitchen/internal/notifications"
	"github.com/imkitchen/imkitchen/internal/projection"
	"github.com/imkitchen/imkitchen/internal/push"
	"github.com/imkitchen/imkitchen/internal/query"
	"github.com/imkitchen/imkitchen/internal/reasoning"
	"github.com/imkitchen/imkitchen/internal/reasoning/gemini"
	"github.com/imkitchen/imkitchen/internal/reasoning/openai"
	"github.com/imkitchen/imkitchen/internal/shoppinglist"
	"github.com/imkitchen/imkitchen/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.Init(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Msg("starting imkitchen meal planning server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	write, read, _, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer write.Close()
	defer func() {
		if read != write {
			read.Close()
		}
	}()
	log.Info().Str("type", cfg.Database.Type).Msg("database ready")

	es := eventstore.NewSQLStore(write, read)
	feed := eventstore.NewSQLFeed(read, 500)
	reader := query.NewReader(read)

	runtime := projection.NewRuntime(es, write, log)
	registerProjections(runtime)
	if err := runtime.Drain(ctx, feed); err != nil {
		log.Fatal().Err(err).Msg("failed to catch up projections at startup")
	}
	go runProjectionLoop(ctx, runtime, feed, log)

	reasoner := buildReasoner(ctx, cfg.Reasoning, log)
	if closer, ok := reasoner.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	hasher := auth.NewHasher(auth.Argon2Params{
		Memory:  cfg.Auth.Argon2Memory,
		Time:    cfg.Auth.Argon2Time,
		Threads: cfg.Auth.Argon2Threads,
	})
	issuer := auth.NewSessionIssuer([]byte(cfg.Auth.JWTSecret), time.Duration(cfg.Auth.JWTExpiry)*time.Minute)

	locks := lockmap.New()
	emails := command.NewSQLEmailRegistry(write)
	scheduler := notifications.NewScheduler(reader, es, log)
	collaborator := shoppinglist.NewLoggingCollaborator(log)
	mailer := email.NewLoggingMailer(log)

	userService := command.NewUserService(es, emails, reader, hasher, issuer, log)
	recipeService := command.NewRecipeService(es, reader, log)
	planService := command.NewMealPlanService(es, locks, reader, reader, reader, reader, collaborator, scheduler, reasoner, log)
	notificationService := command.NewNotificationService(es, reader, log)
	contactService := command.NewContactService(es, mailer, cfg.Notifications.AdminEmail, log)

	ticker := notifications.NewTicker(reader, es, log)
	if cfg.Notifications.CarryOverMaxCount > 0 {
		ticker.MaxReminderCount = cfg.Notifications.CarryOverMaxCount
	}
	cron, err := notifications.NewCronSchedule(
		ticker,
		cfg.Notifications.MorningTickerCron,
		time.Duration(cfg.Notifications.DayOfTickerInterval)*time.Minute,
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start notification scheduler")
	}
	defer cron.Stop()

	sender := push.NewRestySender()
	worker := delivery.NewWorker(reader, sender, es, log)
	worker.Interval = time.Duration(cfg.Notifications.DeliveryPollSeconds) * time.Second
	go worker.Run(ctx)

	router := httpapi.NewRouter(httpapi.Dependencies{
		DB:            read,
		Users:         userService,
		Recipes:       recipeService,
		Plans:         planService,
		Notifications: notificationService,
		Contact:       contactService,
		Reader:        reader,
		Issuer:        issuer,
		Log:           log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// In-flight commands have returned; drain whatever they appended so
	// every subscription's cursor is caught up before the pools close.
	if err := runtime.Drain(shutdownCtx, feed); err != nil {
		log.Error().Err(err).Msg("final projection drain failed")
	}
	log.Info().Msg("server stopped")
}

// registerProjections wires every read-model subscription the server
// keeps up to date. Order between subscriptions does not matter — each
// tracks its own cursor (internal/projection/runtime.go) — but every
// event name the store can produce must be handled or explicitly
// skipped by at least one of them.
func registerProjections(runtime *projection.Runtime) {
	user := projection.NewSubscription("user")
	projection.RegisterUser(user, time.Now)
	runtime.Register(user)

	recipe := projection.NewSubscription("recipe")
	projection.RegisterRecipe(recipe, time.Now)
	runtime.Register(recipe)

	mealPlan := projection.NewSubscription("meal_plan")
	projection.RegisterMealPlan(mealPlan, time.Now)
	runtime.Register(mealPlan)

	notification := projection.NewSubscription("notification")
	projection.RegisterNotification(notification, time.Now)
	runtime.Register(notification)

	pushSubscription := projection.NewSubscription("push_subscription")
	projection.RegisterPushSubscription(pushSubscription, time.Now)
	runtime.Register(pushSubscription)

	contactMessage := projection.NewSubscription("contact_message")
	projection.RegisterContactMessage(contactMessage, time.Now)
	runtime.Register(contactMessage)
}

// runProjectionLoop is a plain ticker over Runtime.Drain — Drain is the
// synchronous primitive tests call directly, and polling it is simpler
// than giving Runtime its own goroutine lifecycle for one caller.
func runProjectionLoop(ctx context.Context, runtime *projection.Runtime, feed eventstore.Feed, log zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := runtime.Drain(ctx, feed); err != nil {
				log.Error().Err(err).Msg("projection drain failed")
			}
		}
	}
}

// buildReasoner picks the assignment-reasoning enrichment provider per
// cfg.DefaultProvider, falling back to the deterministic template (a
// NoopGenerator) when nothing is configured or the chosen provider
// fails to initialize — reasoning is additive (internal/reasoning.Enrich)
// and never required for planning to succeed.
func buildReasoner(ctx context.Context, cfg config.ReasoningConfig, log zerolog.Logger) reasoning.Generator {
	switch cfg.DefaultProvider {
	case "openai":
		if !cfg.OpenAI.Enabled || cfg.OpenAI.APIKey == "" {
			log.Warn().Msg("openai reasoning selected but not configured, falling back to template")
			return reasoning.NoopGenerator{}
		}
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "gemini":
		if !cfg.Gemini.Enabled || cfg.Gemini.APIKey == "" {
			log.Warn().Msg("gemini reasoning selected but not configured, falling back to template")
			return reasoning.NoopGenerator{}
		}
		gen, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize gemini reasoning, falling back to template")
			return reasoning.NoopGenerator{}
		}
		return gen
	default:
		return reasoning.NoopGenerator{}
	}
}
