package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "MONGODB_URI", "MONGODB_DB_NAME",
		"MONGODB_RECORDS_COLLECTION", "MONGODB_USERS_COLLECTION", "JWT_SECRET",
		"UPLOAD_MAX_BYTES", "DIGEST_CRON_SCHEDULE", "DIGEST_WEBHOOK_URL",
		"DIGEST_WEBHOOK_TOKEN", "GOOGLE_SHEETS_CREDENTIALS_PATH",
		"GOOGLE_SHEET_EXPORT_ID", "GOOGLE_SHEET_EXPORT_RANGE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "meatmarket", cfg.MongoDB.DBName)
	assert.Equal(t, "meatdatas", cfg.MongoDB.RecordsCollection)
	assert.Equal(t, "users", cfg.MongoDB.UsersCollection)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.False(t, cfg.Digest.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoad_missingSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load("testdata/missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_badUploadLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("UPLOAD_MAX_BYTES", "ten")

	_, err := Load("testdata/missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_MAX_BYTES")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: "8080"},
			Log:     LogConfig{Level: "info"},
			MongoDB: MongoDBConfig{URI: "mongodb://x", DBName: "db", RecordsCollection: "r", UsersCollection: "u"},
			Auth:    AuthConfig{JWTSecret: "s"},
			Upload:  UploadConfig{MaxBytes: 1},
			Digest:  DigestConfig{CronSchedule: "0 8 * * 1"},
			Sheets:  SheetsConfig{ExportRange: "Export!A1"},
		}
	}

	require.NoError(t, valid().Validate())

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())

	cfg := valid()
	cfg.Log.Level = "chatty"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Sheets.CredentialsPath = "/creds.json"
	assert.Error(t, cfg.Validate(), "half configured sheets export")

	cfg.Sheets.SpreadsheetID = "sheet"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Sheets.Enabled())

	cfg = valid()
	cfg.Digest.WebhookURL = "https://hooks.example.com/x"
	cfg.Digest.CronSchedule = ""
	assert.Error(t, cfg.Validate())
}
