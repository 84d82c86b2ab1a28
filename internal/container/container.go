package container

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/FACorreiaa/go-leisure-bot/config"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/catalog"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/favorites"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/history"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/places"
	"github.com/FACorreiaa/go-leisure-bot/internal/api/weather"
	"github.com/FACorreiaa/go-leisure-bot/internal/bot"
	"github.com/FACorreiaa/go-leisure-bot/internal/session"
	"github.com/FACorreiaa/go-leisure-bot/internal/store"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Manager *session.Manager
	Bot     *bot.Handler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	owmKey := os.Getenv("OPENWEATHERMAP_API_KEY")
	if botToken == "" || owmKey == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN and OPENWEATHERMAP_API_KEY must be set")
	}

	// Stores
	dataDir := cfg.Storage.Dir
	historyStore := store.NewJSONFile(filepath.Join(dataDir, cfg.Storage.HistoryFile))
	favoritesStore := store.NewJSONFile(filepath.Join(dataDir, cfg.Storage.FavoritesFile))
	activitiesStore := store.NewJSONFile(filepath.Join(dataDir, cfg.Storage.ActivitiesFile))

	// Repositories
	catalogRepo, err := catalog.NewRepositoryImpl(activitiesStore, logger)
	if err != nil {
		return nil, err
	}
	favoritesRepo := favorites.NewRepositoryImpl(favoritesStore, logger)
	historyRepo := history.NewRepositoryImpl(historyStore, logger)

	// Services
	weatherService := weather.NewServiceImpl(
		cfg.Weather.BaseURL, owmKey, cfg.Weather.Timeout, cfg.Weather.CacheTTL, logger)
	placesService := places.NewServiceImpl(
		cfg.Places.OverpassURL, cfg.Places.Timeout, cfg.Places.MaxResults, logger)

	manager := session.NewManager(
		weatherService, placesService, catalogRepo, favoritesRepo, historyRepo, logger)

	client := bot.NewClient(cfg.Telegram.APIBaseURL, botToken, cfg.Telegram.PollTimeout, logger)
	handler := bot.NewHandler(client, manager, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Manager: manager,
		Bot:     handler,
	}, nil
}
