package main

import (
	"context"
	"errors"

	"github.com/kaanagas/kaanagas-backend/internal/notifications"
	"github.com/kaanagas/kaanagas-backend/pkg/config"
	"github.com/kaanagas/kaanagas-backend/pkg/db"
	"github.com/kaanagas/kaanagas-backend/pkg/logger"
	"github.com/kaanagas/kaanagas-backend/pkg/pubsub"
	"github.com/kaanagas/kaanagas-backend/pkg/redis"
)

type ServiceParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	DB                   *db.Client
	Redis                *redis.Client
	PubSub               *pubsub.Client
	NotificationConsumer *notifications.Consumer
}

// Service runs the background consumers for one worker process.
type Service struct {
	cfg                  *config.Config
	logg                 *logger.Logger
	notificationConsumer *notifications.Consumer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.NotificationConsumer == nil {
		return nil, errors.New("notification consumer is required")
	}
	return &Service{
		cfg:                  params.Config,
		logg:                 params.Logger,
		notificationConsumer: params.NotificationConsumer,
	}, nil
}

// Run blocks on the notification consumer until the context is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	s.logg.Info(ctx, "worker consumers starting")
	err := s.notificationConsumer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
