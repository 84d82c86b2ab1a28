package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Telegram struct {
		APIBaseURL  string        `mapstructure:"apiBaseURL"`
		PollTimeout time.Duration `mapstructure:"pollTimeout"`
	} `mapstructure:"telegram"`
	Weather struct {
		BaseURL  string        `mapstructure:"baseURL"`
		Timeout  time.Duration `mapstructure:"timeout"`
		CacheTTL time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"weather"`
	Places struct {
		OverpassURL string        `mapstructure:"overpassURL"`
		Timeout     time.Duration `mapstructure:"timeout"`
		MaxResults  int           `mapstructure:"maxResults"`
	} `mapstructure:"places"`
	Storage struct {
		Dir            string `mapstructure:"dir"`
		HistoryFile    string `mapstructure:"historyFile"`
		FavoritesFile  string `mapstructure:"favoritesFile"`
		ActivitiesFile string `mapstructure:"activitiesFile"`
	} `mapstructure:"storage"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
