package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/api/handler"
	mw "github.com/edvin/mailpanel/internal/api/middleware"
	"github.com/edvin/mailpanel/internal/config"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/directory"
	"github.com/edvin/mailpanel/internal/mail"
	"github.com/edvin/mailpanel/internal/runner"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	pool     *pgxpool.Pool
	cfg      *config.Config

	inspector *mail.QueueInspector
	queues    *mail.QueueController
	svcCtrl   *mail.ServiceController
	managed   map[string]mail.ManagedService
	prov      *directory.Provisioner
	backup    *directory.BackupManager
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, cfg *config.Config) *Server {
	run := runner.NewExecRunner(logger)
	client := directory.NewLDAPClient(logger, cfg.LDAPServerURI, cfg.LDAPAdminDN, cfg.LDAPAdminSecret)
	prov := directory.NewProvisioner(logger, client)
	registry := mail.NewVirtualDomainRegistry(logger, run, cfg.PostfixConfigDir, cfg.ToolTimeout)

	inspector := mail.NewQueueInspector(logger, run, cfg.PostfixUnit, cfg.QueueTimeout)

	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger,
		services:  core.NewServices(pool, prov, registry),
		pool:      pool,
		cfg:       cfg,
		inspector: inspector,
		queues:    mail.NewQueueController(logger, run, inspector, cfg.QueueTimeout, cfg.LongTimeout),
		svcCtrl:   mail.NewServiceController(logger, run, cfg.ToolTimeout),
		managed: map[string]mail.ManagedService{
			"postfix": mail.TransportService(cfg.PostfixUnit),
			"dovecot": mail.DeliveryService(cfg.DovecotUnit),
			"slapd":   mail.DirectoryService(cfg.SlapdUnit),
		},
		prov:   prov,
		backup: directory.NewBackupManager(logger, run, cfg.SlapdUnit, cfg.ToolTimeout, cfg.LongTimeout),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Mail queue
		queue := handler.NewQueue(s.inspector, s.queues, s.services.Audit)
		r.Get("/queue/status", queue.Status)
		r.Get("/queue/info", queue.Info)
		r.Get("/queue/messages", queue.Messages)
		r.Post("/queue/messages/{id}/hold", queue.Hold)
		r.Post("/queue/messages/{id}/release", queue.Release)
		r.Delete("/queue/messages/{id}", queue.Delete)
		r.Post("/queue/flush", queue.FlushDeferred)
		r.Post("/queue/flush-hold", queue.FlushHold)
		r.Post("/queue/cleanup-expired", queue.CleanupExpired)
		r.Post("/queue/rebuild", queue.RebuildIndex)
		r.Get("/queue/integrity", queue.CheckIntegrity)

		// Managed services
		service := handler.NewService(s.svcCtrl, s.managed, s.services.Audit)
		r.Get("/services/{service}/status", service.Status)
		r.Post("/services/{service}/restart", service.Restart)
		r.Post("/services/{service}/reload", service.Reload)
		r.Post("/services/{service}/check-config", service.CheckConfig)

		// Mail domains
		domain := handler.NewMailDomain(s.services.MailDomain, s.services.Audit)
		r.Get("/domains", domain.List)
		r.Post("/domains", domain.Create)
		r.Get("/domains/{id}", domain.Get)
		r.Put("/domains/{id}/flags", domain.UpdateFlags)
		r.Delete("/domains/{id}", domain.Delete)

		// Mail users
		user := handler.NewMailUser(s.services.MailUser, s.services.Audit)
		r.Get("/domains/{domainID}/users", user.ListByDomain)
		r.Post("/domains/{domainID}/users", user.Create)
		r.Get("/users/{id}", user.Get)
		r.Put("/users/{id}/quota", user.UpdateQuota)
		r.Delete("/users/{id}", user.Delete)

		// Directory entries
		dir := handler.NewDirectory(s.prov, s.backup, s.services.Audit)
		r.Post("/directory/entries", dir.AddEntry)
		r.Put("/directory/entries", dir.ModifyEntry)
		r.Delete("/directory/entries", dir.DeleteEntry)
		r.Get("/directory/domains/{domain}/users", dir.Users)
		r.Post("/directory/search", dir.Search)
		r.Post("/directory/backup", dir.Backup)
		r.Post("/directory/restore", dir.Restore)

		// System
		system := handler.NewSystem(s.services.SystemConfig, s.services.Audit, s.svcCtrl, s.managed)
		r.Get("/system/status", system.Status)
		r.Get("/system/config", system.ListConfig)
		r.Put("/system/config", system.SetConfig)
		r.Get("/system/config/{key}", system.GetConfig)
		r.Delete("/system/config/{key}", system.DeleteConfig)
		r.Get("/audit-logs", system.ListAuditLogs)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
