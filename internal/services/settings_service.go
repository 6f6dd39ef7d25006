package services

import (
	"context"

	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/repository"
	"go.uber.org/zap"
)

// SettingsCache keeps a copy of the settings table between requests.
type SettingsCache interface {
	Get(ctx context.Context) (map[string]string, bool, error)
	Set(ctx context.Context, settings map[string]string) error
	Invalidate(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) Get(context.Context) (map[string]string, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, map[string]string) error         { return nil }
func (noopCache) Invalidate(context.Context) error                     { return nil }

func NoopSettingsCache() SettingsCache { return noopCache{} }

type SettingsService interface {
	All(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key, fallback string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type settingsService struct {
	repo   repository.SettingsRepository
	cache  SettingsCache
	logger *zap.Logger
}

func NewSettingsService(repo repository.SettingsRepository, cache SettingsCache, logger *zap.Logger) SettingsService {
	if cache == nil {
		cache = NoopSettingsCache()
	}
	return &settingsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *settingsService) All(ctx context.Context) (map[string]string, error) {
	cached, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("settings cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, storeError("leer configuracion", err)
	}

	if err := s.cache.Set(ctx, settings); err != nil {
		s.logger.Warn("settings cache write failed", zap.Error(err))
	}
	return settings, nil
}

// Get returns the value of key, or fallback when it is missing or empty.
func (s *settingsService) Get(ctx context.Context, key, fallback string) (string, error) {
	settings, err := s.All(ctx)
	if err != nil {
		return "", err
	}
	if v := settings[key]; v != "" {
		return v, nil
	}
	return fallback, nil
}

func (s *settingsService) Set(ctx context.Context, key, value string) error {
	if err := s.repo.UpsertSetting(ctx, key, value); err != nil {
		return storeError("guardar configuracion", err)
	}
	// The write is not done until the cached copy is gone.
	err := s.cache.Invalidate(ctx)
	if err != nil {
		s.logger.Warn("settings cache invalidate failed, retrying", zap.String("key", key), zap.Error(err))
		err = s.cache.Invalidate(ctx)
	}
	if err != nil {
		return apperr.Internal("Error al invalidar cache de configuracion", err)
	}
	return nil
}
