package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string // DEV (default), TEST, QA, PROD
		Build            string
		AppName          string
		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		SMS      SMSConfig
		Enroll   EnrollConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	DatabaseConfig struct {
		Engine         string // "memory" | "mongodb"
		URI            string
		Name           string
		ConnectTimeout time.Duration
	}

	SMSConfig struct {
		GatewayURL string
		APIKey     string
		SenderID   string
	}

	EnrollConfig struct {
		// CandidateDeadline is the hard cutoff for candidate registrations.
		CandidateDeadline time.Time
		// MaxUploadSize caps each uploaded document (photo, signature).
		MaxUploadSize int64
	}
)

func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Sayansi")
	conf.SetDefault("secretKey", "w3+u$ed1%-kke5_o)ml$&9ts1tza#&x=t8ja0b7b(y5=b@s+vn")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("serverDebugHost", "localhost:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	conf.SetDefault("databaseEngine", "memory")
	conf.SetDefault("databaseUri", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "sayansi")
	conf.SetDefault("databaseConnectTimeout", 10*time.Second)

	conf.SetDefault("smsGatewayUrl", "")
	conf.SetDefault("smsApiKey", "")
	conf.SetDefault("smsSenderId", "SAYANSI")

	conf.SetDefault("candidateDeadline", "2026-09-30T23:59:59Z")
	conf.SetDefault("maxUploadSize", int64(5<<20))

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	deadline, err := time.Parse(time.RFC3339, conf.GetString("candidateDeadline"))
	if err != nil {
		log.Fatalf("config: parsing candidateDeadline: %v", err)
	}

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		SecretKey:        []byte(conf.GetString("secretKey")),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Port:                      conf.GetString("serverPort"),
			DebugHost:                 conf.GetString("serverDebugHost"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:         conf.GetString("databaseEngine"),
			URI:            conf.GetString("databaseUri"),
			Name:           conf.GetString("databaseName"),
			ConnectTimeout: conf.GetDuration("databaseConnectTimeout"),
		},
		SMS: SMSConfig{
			GatewayURL: conf.GetString("smsGatewayUrl"),
			APIKey:     conf.GetString("smsApiKey"),
			SenderID:   conf.GetString("smsSenderId"),
		},
		Enroll: EnrollConfig{
			CandidateDeadline: deadline,
			MaxUploadSize:     conf.GetInt64("maxUploadSize"),
		},
	}
}
