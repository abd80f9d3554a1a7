package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// either strings such as "15m" or integer nanoseconds. Fields left out of the
// file keep the value they already had.
type JsonConfig struct {
	EndpointAddrHTTP             string          `json:"endpoint_addr_http"`
	DatabaseDSN                  string          `json:"database_dsn"`
	SecretKey                    string          `json:"secret_key"`
	JWTSecretKey                 string          `json:"jwt_secret_key"`
	AccessTokenValidityDuration  timex.Duration  `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration  `json:"refresh_token_validity_duration"`
	RegistrationTokenMaxAge      timex.Duration  `json:"registration_token_max_age"`
	PendingRegistrationTTL       *timex.Duration `json:"pending_registration_ttl"`
	ProfilePicStorage            string          `json:"profile_pic_storage"`
	UploadDir                    string          `json:"upload_dir"`
	S3RootUser                   string          `json:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password"`
	S3Bucket                     string          `json:"s3_bucket"`
	S3Region                     string          `json:"s3_region"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint"`
	SMTPHost                     string          `json:"smtp_host"`
	SMTPPort                     int             `json:"smtp_port"`
	SMTPUser                     string          `json:"smtp_user"`
	SMTPPassword                 string          `json:"smtp_password"`
	MailFrom                     string          `json:"mail_from"`
	PhoneRegion                  string          `json:"phone_region"`
	AllowedOrigin                string          `json:"allowed_origin"`
	LogLevel                     string          `json:"log_level"`
}

// parseJson loads the file named by -c/-config into config. Nothing happens
// when the flag is absent. Unreadable files or invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.JWTSecretKey, c.JWTSecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.RegistrationTokenMaxAge, c.RegistrationTokenMaxAge)
	if c.PendingRegistrationTTL != nil {
		// zero is meaningful here: it disables expiry
		config.PendingRegistrationTTL = c.PendingRegistrationTTL.Duration
	}
	setString(&config.ProfilePicStorage, c.ProfilePicStorage)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.PhoneRegion, c.PhoneRegion)
	setString(&config.AllowedOrigin, c.AllowedOrigin)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
