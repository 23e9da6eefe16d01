package app

import (
	"github.com/velvetdesk/agencyops-backend/internal/clients/ofapi"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/services"
)

type Services struct {
	Advice   services.AdviceClient
	Auth     services.AuthService
	Messages ofapi.Client
}

func NewServices(cfg *Config, repos *Repos, log *logger.Logger) *Services {
	return &Services{
		Advice:   services.NewAdviceClient(log),
		Auth:     services.NewAuthService(repos.Chatters, cfg.JWTSecretKey, cfg.TokenTTL, log),
		Messages: ofapi.NewClient(log),
	}
}
