package service

import (
	"github.com/dom/tour-of-heroes/internal/logging"
	"github.com/dom/tour-of-heroes/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Hero *HeroService
}

func NewServices(repos *repository.Repositories, logger *zap.Logger) *Services {
	logger = logging.OrNop(logger)
	return &Services{
		Hero: NewHeroService(repos.Hero, logger.Named("hero")),
	}
}
