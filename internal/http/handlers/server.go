package handlers

import (
	"github.com/charmbracelet/log"
	"github.com/rogerio-castellano/pixel-canvas/internal/auth"
	"github.com/rogerio-castellano/pixel-canvas/internal/http/web"
	"github.com/rogerio-castellano/pixel-canvas/internal/mail"
	"github.com/rogerio-castellano/pixel-canvas/internal/repo"
	"github.com/rogerio-castellano/pixel-canvas/internal/service"
)

var (
	canvasService  *service.CanvasService
	accountService *service.AccountService
	statsRepo      repo.StatsRepository
	sessions       *auth.SessionManager
	mailer         mail.Mailer
	pages          = web.MustRenderer()
	logger         = log.Default()
	baseURL        = "http://localhost:8080"
)

func SetCanvasService(s *service.CanvasService) {
	canvasService = s
}

func SetAccountService(s *service.AccountService) {
	accountService = s
}

func SetStatsRepo(r repo.StatsRepository) {
	statsRepo = r
}

func SetSessionManager(s *auth.SessionManager) {
	sessions = s
}

func SetMailer(m mail.Mailer) {
	mailer = m
}

func SetLogger(l *log.Logger) {
	logger = l
}

// SetBaseURL sets the external address used in emailed links.
func SetBaseURL(u string) {
	baseURL = u
}
