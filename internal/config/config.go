package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const defaultGatewayBaseURL = "https://www.paysera.com/pay/"

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// Secret the platform signs webhook JWTs with.
	AppSecretKey string

	PlatformAPIURL   string
	PlatformAppToken string

	RedisAddr string

	GatewayBaseURL string
	PublicBaseURL  string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := FromEnv()
	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// FromEnv reads the process environment without loading .env or exiting.
func FromEnv() *Config {
	cfg := &Config{
		DBHost:           os.Getenv("DB_HOST"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           os.Getenv("DB_PORT"),
		AppPort:          os.Getenv("APP_PORT"),
		AppEnv:           os.Getenv("APP_ENV"),
		AppSecretKey:     os.Getenv("APP_SECRET_KEY"),
		PlatformAPIURL:   os.Getenv("PLATFORM_API_URL"),
		PlatformAppToken: os.Getenv("PLATFORM_APP_TOKEN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		GatewayBaseURL:   os.Getenv("GATEWAY_BASE_URL"),
		PublicBaseURL:    strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
	}

	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.GatewayBaseURL == "" {
		cfg.GatewayBaseURL = defaultGatewayBaseURL
	}

	return cfg
}

// Validate reports the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DBHost == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.AppSecretKey == "" {
		errs = append(errs, errors.New("APP_SECRET_KEY is required"))
	}
	if c.PublicBaseURL == "" {
		errs = append(errs, errors.New("PUBLIC_BASE_URL is required"))
	}
	if c.PlatformAPIURL == "" {
		errs = append(errs, errors.New("PLATFORM_API_URL is required"))
	}
	return errors.Join(errs...)
}
