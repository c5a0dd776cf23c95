package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Support struct {
		// Фиксированная идентичность админской стороны всех диалогов
		AdminEmail string `yaml:"admin_email"`
		// Лимит последних уведомлений в списке
		NotificationLimit int `yaml:"notification_limit"`
	} `yaml:"support"`

	WS struct {
		SendBufferSize  int `yaml:"send_buffer_size"`
		ReadBufferSize  int `yaml:"read_buffer_size"`
		WriteBufferSize int `yaml:"write_buffer_size"`
	} `yaml:"ws"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	// Режим теста: конфигурация из переменных окружения
	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.Support.AdminEmail = os.Getenv("SUPPORT_ADMIN_EMAIL")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Support.AdminEmail == "" {
		cfg.Support.AdminEmail = "admin@example.com"
	}
	if cfg.Support.NotificationLimit <= 0 {
		cfg.Support.NotificationLimit = 20
	}
	if cfg.WS.SendBufferSize <= 0 {
		cfg.WS.SendBufferSize = 256
	}
	if cfg.WS.ReadBufferSize <= 0 {
		cfg.WS.ReadBufferSize = 1024
	}
	if cfg.WS.WriteBufferSize <= 0 {
		cfg.WS.WriteBufferSize = 1024
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
