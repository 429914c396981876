package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/lexihop/lexihop/internal/api/http"
	"github.com/lexihop/lexihop/internal/assessment"
	"github.com/lexihop/lexihop/internal/auth"
	"github.com/lexihop/lexihop/internal/config"
	"github.com/lexihop/lexihop/internal/content"
	"github.com/lexihop/lexihop/internal/db"
	"github.com/lexihop/lexihop/internal/eventlog"
	"github.com/lexihop/lexihop/internal/profile"
	"github.com/lexihop/lexihop/internal/progress"
	"github.com/lexihop/lexihop/internal/rbac"
	"github.com/lexihop/lexihop/internal/rewards"
	"github.com/lexihop/lexihop/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := newLogger(cfg.Mode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}

	// --- Stores and services ---
	profiles := profile.NewStore(dbh)
	results := assessment.NewSQLStore(dbh)
	prog := progress.NewStore(dbh)
	rew := rewards.NewService(dbh)
	events := eventlog.NewRepo(dbh)

	if err := rew.EnsureCatalog(ctx); err != nil {
		logger.Fatal("catalog seed failed", zap.Error(err))
	}

	// --- Content ---
	var lib *content.Library
	if cfg.ContentDir != "" {
		lib, err = content.LoadDir(cfg.ContentDir)
	} else {
		lib, err = content.LoadEmbedded()
	}
	if err != nil {
		logger.Fatal("content load failed", zap.Error(err))
	}

	// --- Assessment engine ---
	sink := assessment.MultiResultSink(
		results,
		eventlog.AssessmentSink(events),
		rew.AssessmentSink(),
	)
	mgr := assessment.NewManager(lib, profiles, sink, profiles, logger)

	// --- Auth ---
	authSvc := auth.NewService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public
	r.Post("/auth/register", api.RegisterParentHandler(authSvc, profiles))
	r.Post("/auth/login", api.LoginHandler(authSvc, profiles))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	bs, err := storage.NewFSStore(cfg.AssetBasePath)
	if err != nil {
		logger.Fatal("asset store failed", zap.Error(err))
	}
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))
		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})
	})

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		// Parent: child profiles
		pr.With(rbac.Require("child:create")).
			Post("/children", api.CreateChildHandler(profiles))
		pr.With(rbac.Require("child:view")).
			Get("/children", api.ListChildrenHandler(profiles))
		pr.With(rbac.Require("child:view")).
			Get("/children/{childID}", api.GetChildHandler(profiles))
		pr.With(rbac.Require("child:update")).
			Patch("/children/{childID}", api.UpdateChildHandler(profiles))
		pr.With(rbac.Require("child:token")).
			Post("/children/{childID}/token", api.ChildTokenHandler(authSvc, profiles))

		// Learner: placement assessment
		pr.With(rbac.Require("assessment:start")).
			Post("/assessments", api.StartAssessmentHandler(mgr, profiles))
		pr.With(rbac.Require("assessment:view")).
			Get("/assessments/{sessionID}", api.GetAssessmentHandler(mgr, profiles))
		pr.With(rbac.Require("assessment:answer")).
			Post("/assessments/{sessionID}/begin", api.BeginAssessmentHandler(mgr, profiles))
		pr.With(rbac.Require("assessment:answer")).
			Post("/assessments/{sessionID}/answers", api.AnswerAssessmentHandler(mgr, profiles))
		pr.With(rbac.Require("assessment:answer")).
			Delete("/assessments/{sessionID}", api.AbandonAssessmentHandler(mgr, profiles))
		pr.With(rbac.Require("assessment:view")).
			Get("/children/{childID}/assessments", api.AssessmentHistoryHandler(results, profiles))

		// Learner: practice
		pr.With(rbac.Require("practice:submit")).
			Get("/practice", api.ListPracticeHandler(lib))
		pr.With(rbac.Require("practice:submit")).
			Post("/practice/submit", api.SubmitPracticeHandler(lib, profiles, prog, rew, logger))

		// Progress and spaced review
		pr.With(rbac.Require("progress:view")).
			Get("/children/{childID}/progress", api.GetProgressHandler(prog, profiles))
		pr.With(rbac.Require("progress:view")).
			Get("/children/{childID}/reviews", api.DueReviewsHandler(prog, profiles))

		// Rewards
		pr.With(rbac.Require("rewards:view")).
			Get("/children/{childID}/wallet", api.WalletHandler(rew, profiles))
		pr.With(rbac.Require("shop:view")).
			Get("/shop/items", api.ShopItemsHandler(rew))
		pr.With(rbac.Require("rewards:view")).
			Get("/children/{childID}/inventory", api.InventoryHandler(rew, profiles))
		pr.With(rbac.Require("rewards:spend")).
			Post("/shop/purchase", api.PurchaseHandler(rew, profiles, events, logger))
		pr.With(rbac.Require("rewards:spend")).
			Post("/shop/mysterybox", api.MysteryBoxHandler(rew, profiles, events, logger))

		// Admin: content authoring and the event log
		pr.With(rbac.Require("content:import")).
			Post("/content/import", api.ImportContentHandler(lib))
		pr.With(rbac.Require("events:view")).
			Get("/events", api.ListEventsHandler(events))
	})

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("db", cfg.DBDriver))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(mode config.Mode) (*zap.Logger, error) {
	if mode == config.ModeProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
