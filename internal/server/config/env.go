package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// defaultEnvFile is loaded when present and no -env flag is given.
const defaultEnvFile = ".env"

// parseEnv overlays settings from environment variables. Variables from a
// dotenv file (-env flag, or ./.env when it exists) are loaded first without
// overriding variables already set in the process environment.
//
// Recognised variables:
//
//	HTTP_ADDRESS, DATABASE_URI, SECRET_KEY, JWT_SECRET_KEY,
//	JWT_ACCESS_TOKEN_EXPIRES, JWT_REFRESH_TOKEN_EXPIRES,
//	REGISTRATION_TOKEN_MAX_AGE, PENDING_REGISTRATION_TTL,
//	PROFILE_PIC_STORAGE, UPLOAD_DIR,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	MAIL_SERVER, MAIL_PORT, MAIL_USERNAME, MAIL_PASSWORD, MAIL_FROM,
//	PHONE_REGION, ALLOWED_ORIGIN, LOG_LEVEL
//
// Durations use time.ParseDuration syntax. Malformed values panic, like
// malformed JSON config does.
func parseEnv(config *Config) {
	loadEnvFile(flagx.EnvFileFlags())

	envString("HTTP_ADDRESS", &config.EndpointAddrHTTP)
	envString("DATABASE_URI", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envString("JWT_SECRET_KEY", &config.JWTSecretKey)
	envDuration("JWT_ACCESS_TOKEN_EXPIRES", &config.AccessTokenValidityDuration)
	envDuration("JWT_REFRESH_TOKEN_EXPIRES", &config.RefreshTokenValidityDuration)
	envDuration("REGISTRATION_TOKEN_MAX_AGE", &config.RegistrationTokenMaxAge)
	envDuration("PENDING_REGISTRATION_TTL", &config.PendingRegistrationTTL)
	envString("PROFILE_PIC_STORAGE", &config.ProfilePicStorage)
	envString("UPLOAD_DIR", &config.UploadDir)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("MAIL_SERVER", &config.SMTPHost)
	envInt("MAIL_PORT", &config.SMTPPort)
	envString("MAIL_USERNAME", &config.SMTPUser)
	envString("MAIL_PASSWORD", &config.SMTPPassword)
	envString("MAIL_FROM", &config.MailFrom)
	envString("PHONE_REGION", &config.PhoneRegion)
	envString("ALLOWED_ORIGIN", &config.AllowedOrigin)
	envString("LOG_LEVEL", &config.LogLevel)

	// the original deployment sends from the SMTP account itself
	if _, ok := os.LookupEnv("MAIL_FROM"); !ok && config.SMTPUser != "" {
		config.MailFrom = config.SMTPUser
	}
}

func loadEnvFile(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}

	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
