package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nowa-app/planner-api/internal/domain/plans"
	"github.com/nowa-app/planner-api/internal/llm"
	"github.com/nowa-app/planner-api/internal/planner"
	"github.com/nowa-app/planner-api/internal/providers"
	"github.com/nowa-app/planner-api/pkg/config"
	"github.com/nowa-app/planner-api/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Providers *providers.Aggregator
	Chat      llm.ChatClient

	PlansRepo    plans.Repository
	PlansService plans.Service
	PlansHandler *plans.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err := deps.initProviders(); err != nil {
		return nil, fmt.Errorf("failed to init providers: %w", err)
	}
	if err := deps.initLLM(ctx); err != nil {
		return nil, fmt.Errorf("failed to init llm: %w", err)
	}
	deps.initPlans()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initProviders builds the vendor clients. A missing API key disables that
// vendor; the aggregator then serves fallbacks.
func (d *Dependencies) initProviders() error {
	var placesClient providers.PlacesClient
	var directionsClient providers.DirectionsClient
	if key := d.Config.Providers.GoogleMapsAPIKey; key != "" {
		places, err := providers.NewGooglePlaces(key, d.Config.Providers.Language, d.Config.Providers.Region)
		if err != nil {
			return err
		}
		directions, err := providers.NewGoogleDirections(key, d.Config.Providers.Language)
		if err != nil {
			return err
		}
		placesClient = places
		directionsClient = directions
	} else {
		d.Logger.Warn("GOOGLE_MAPS_API_KEY not set; places and directions disabled")
	}

	var weatherClient providers.WeatherClient
	if key := d.Config.Providers.OpenWeatherAPIKey; key != "" {
		weather, err := providers.NewOpenWeather(key)
		if err != nil {
			return err
		}
		weatherClient = weather
	} else {
		d.Logger.Warn("OPENWEATHER_API_KEY not set; seasonal weather fallback in use")
	}

	d.Providers = providers.NewAggregator(placesClient, weatherClient, directionsClient,
		d.Config.Providers.Language, d.Logger)
	d.Logger.Info("providers initialized")
	return nil
}

// initLLM connects the Gemini client when a key is configured. Without it
// the selector and guide run on their deterministic paths.
func (d *Dependencies) initLLM(ctx context.Context) error {
	if d.Config.LLM.GeminiAPIKey == "" {
		d.Logger.Warn("GEMINI_API_KEY not set; plans use deterministic selection")
		return nil
	}
	client, err := llm.NewGeminiChatClient(ctx, d.Config.LLM.GeminiAPIKey, d.Config.LLM.Model)
	if err != nil {
		return err
	}
	d.Chat = client
	d.Logger.Info("llm client initialized", slog.String("model", client.Model()))
	return nil
}

// initPlans wires the engine, guide and plan service behind the handler.
func (d *Dependencies) initPlans() {
	selector := llm.NewSelector(d.Chat, d.Logger)
	guide := llm.NewGuideBuilder(d.Chat, d.Logger)
	engine := planner.NewEngine(d.Providers, selector, d.Logger)

	d.PlansRepo = plans.NewRepository(d.DB.Pool, d.Logger)
	d.PlansService = plans.NewServiceImpl(d.PlansRepo, engine, guide, d.Providers,
		d.Config.Providers.Language, d.Logger)
	d.PlansHandler = plans.NewHandler(d.PlansService, d.Logger)
	d.Logger.Info("plans domain initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
