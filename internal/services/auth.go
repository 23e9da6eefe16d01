package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/velvetdesk/agencyops-backend/internal/logger"
	"github.com/velvetdesk/agencyops-backend/internal/repos"
	"github.com/velvetdesk/agencyops-backend/internal/types"
	"github.com/velvetdesk/agencyops-backend/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(email, password string) (string, *types.Chatter, error)
	ValidateToken(token string) (uuid.UUID, error)
}

type authService struct {
	chatters  repos.ChatterRepo
	jwtSecret string
	tokenTTL  time.Duration
	log       *logger.Logger
}

func NewAuthService(chatters repos.ChatterRepo, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) AuthService {
	return &authService{
		chatters:  chatters,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log.With("service", "AuthService"),
	}
}

func (s *authService) Login(email, password string) (string, *types.Chatter, error) {
	chatter, err := s.chatters.GetByEmail(email, nil)
	if err != nil {
		return "", nil, err
	}
	if chatter == nil || !utils.CheckPassword(chatter.Password, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := utils.GenerateAccessToken(chatter.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.log.Error("failed to sign access token", "error", err)
		return "", nil, err
	}
	return token, chatter, nil
}

func (s *authService) ValidateToken(token string) (uuid.UUID, error) {
	return utils.ParseAccessToken(token, s.jwtSecret)
}
