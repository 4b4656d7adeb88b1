package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv       string
	Port         string
	DBUser       string
	DBPassword   string
	DBHost       string
	DBPort       string
	DBName       string
	JWTSecret    string
	KafkaBroker  string
	DocStorePath string
}

var (
	cfg  *Config
	once sync.Once
)

func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg = &Config{
			AppEnv:       os.Getenv("APP_ENV"),
			Port:         os.Getenv("PORT"),
			DBUser:       os.Getenv("DB_USER"),
			DBPassword:   os.Getenv("DB_PASSWORD"),
			DBHost:       os.Getenv("DB_HOST"),
			DBPort:       os.Getenv("DB_PORT"),
			DBName:       os.Getenv("DB_NAME"),
			JWTSecret:    os.Getenv("JWT_SECRET_KEY"),
			KafkaBroker:  os.Getenv("KAFKA_BROKER"),
			DocStorePath: os.Getenv("DOC_STORE_PATH"),
		}
		if cfg.Port == "" {
			cfg.Port = "8080"
		}
		if cfg.DocStorePath == "" {
			cfg.DocStorePath = "./uploads"
		}
	})
	return cfg
}
