// Package infrastructure wires application services.
package infrastructure

import (
	"fmt"

	"github.com/neurolearn/shell/internal/config"
	"github.com/neurolearn/shell/internal/infrastructure/repository"
	"github.com/neurolearn/shell/internal/infrastructure/service"
	"go.uber.org/zap"
)

// NewServiceLocator initializes application resources.
func NewServiceLocator(cfg config.Storage, logger *zap.Logger) (*service.Locator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := service.Locator{Logger: logger}

	switch cfg.Driver {
	case config.DriverMemory:
		resourceRepository := &repository.Memory{}

		l.ResourceCreatorProvider = resourceRepository
		l.ResourceFinderProvider = resourceRepository
	case config.DriverBadger:
		resourceRepository, err := repository.OpenBadger(cfg.Path, logger)
		if err != nil {
			return nil, err
		}

		l.ResourceCreatorProvider = resourceRepository
		l.ResourceFinderProvider = resourceRepository
		l.OnClose(resourceRepository.Close)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	logger.Info("storage initialized", zap.String("driver", cfg.Driver), zap.String("path", cfg.Path))

	return &l, nil
}
