package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP    HTTP    `envPrefix:"HTTP_"`
		Logger  Logger  `envPrefix:"LOGGER_"`
		Partial Partial `envPrefix:"PARTIAL_"`
		Source  Source  `envPrefix:"SOURCE_"`
	}

	HTTP struct {
		Server Server `envPrefix:"SERVER_"`
	}

	Server struct {
		Port            string        `env:"PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
		IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info"`
	}

	// Partial holds the tile grid and cache settings.
	Partial struct {
		CRS              string        `env:"CRS" envDefault:"EPSG:3857"`
		GridStep         float64       `env:"GRID_STEP" envDefault:"1000"`
		TilePixelSize    int           `env:"TILE_PIXEL_SIZE" envDefault:"256"`
		MaxCachedTiles   int           `env:"MAX_CACHED_TILES" envDefault:"512"`
		Resolution       float64       `env:"RESOLUTION" envDefault:"0"`
		Mode             string        `env:"MODE" envDefault:"sync"`
		Workers          int           `env:"WORKERS" envDefault:"0"`
		RenderTimeout    time.Duration `env:"RENDER_TIMEOUT" envDefault:"30s"`
		RenderRate       float64       `env:"RENDER_RATE" envDefault:"0"`
		RenderBurst      int           `env:"RENDER_BURST" envDefault:"0"`
		MaxTilesPerQuery int           `env:"MAX_TILES_PER_QUERY" envDefault:"4096"`
	}

	// Source selects the render backend. With no Path a checkerboard pattern
	// with PatternCell-sized squares is rendered.
	Source struct {
		Path        string  `env:"PATH"`
		MinX        float64 `env:"MIN_X" envDefault:"0"`
		MinY        float64 `env:"MIN_Y" envDefault:"0"`
		MaxX        float64 `env:"MAX_X" envDefault:"0"`
		MaxY        float64 `env:"MAX_Y" envDefault:"0"`
		PatternCell float64 `env:"PATTERN_CELL" envDefault:"500"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
