package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Durations
// are written as Go duration strings ("15m"). Absent fields leave the
// corresponding Config value untouched.
type JsonConfig struct {
	EndpointAddrHTTP *string `json:"endpoint_addr_http"`
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc"`
	LogLevel         *string `json:"log_level"`

	StorageDriver *string `json:"storage_driver"`
	DatabaseDSN   *string `json:"database_dsn"`
	MongoURI      *string `json:"mongo_uri"`
	MongoDatabase *string `json:"mongo_database"`

	SessionSecret                      *string         `json:"session_secret"`
	SessionTokenValidityDuration       *timex.Duration `json:"session_token_validity_duration"`
	PasswordResetSecret                *string         `json:"password_reset_secret"`
	PasswordResetTokenValidityDuration *timex.Duration `json:"password_reset_token_validity_duration"`
	InvitationSecret                   *string         `json:"invitation_secret"`
	InvitationTokenValidityDuration    *timex.Duration `json:"invitation_token_validity_duration"`
	MasterToken                        *string         `json:"master_token"`
	InvitationRequired                 *bool           `json:"invitation_required"`

	PasswordHasher *string `json:"password_hasher"`
	BcryptCost     *int    `json:"bcrypt_cost"`

	NotificationsDriver  *string         `json:"notifications_driver"`
	NotificationsURI     *string         `json:"notifications_uri"`
	NotificationsPath    *string         `json:"notifications_path"`
	NotificationsTimeout *timex.Duration `json:"notifications_timeout"`
	NotificationsSender  *string         `json:"notifications_sender"`
	SMTPHost             *string         `json:"smtp_host"`
	SMTPPort             *int            `json:"smtp_port"`
	SMTPUsername         *string         `json:"smtp_username"`
	SMTPPassword         *string         `json:"smtp_password"`
	ResetPasswordURL     *string         `json:"reset_password_url"`
	InvitationURL        *string         `json:"invitation_url"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.SessionSecret, c.SessionSecret)
	setDuration(&config.SessionTokenValidityDuration, c.SessionTokenValidityDuration)
	setString(&config.PasswordResetSecret, c.PasswordResetSecret)
	setDuration(&config.PasswordResetTokenValidityDuration, c.PasswordResetTokenValidityDuration)
	setString(&config.InvitationSecret, c.InvitationSecret)
	setDuration(&config.InvitationTokenValidityDuration, c.InvitationTokenValidityDuration)
	setString(&config.MasterToken, c.MasterToken)
	if c.InvitationRequired != nil {
		config.InvitationRequired = *c.InvitationRequired
	}
	setString(&config.PasswordHasher, c.PasswordHasher)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.NotificationsDriver, c.NotificationsDriver)
	setString(&config.NotificationsURI, c.NotificationsURI)
	setString(&config.NotificationsPath, c.NotificationsPath)
	setDuration(&config.NotificationsTimeout, c.NotificationsTimeout)
	setString(&config.NotificationsSender, c.NotificationsSender)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.ResetPasswordURL, c.ResetPasswordURL)
	setString(&config.InvitationURL, c.InvitationURL)

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
