package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/stockroom/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.LoadTimeout)
	assert.Equal(t, DefaultActionTimeout, cfg.Backend.ActionTimeout)
	assert.Equal(t, 14, cfg.ForecastDays)
	assert.Equal(t, filepath.Join(home, ".local/share/stockroom/stockroom.db"), cfg.DatabasePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STOCKROOM_BACKEND_URL", "https://inventory.example.com/api")
	t.Setenv("STOCKROOM_BACKEND_LOAD_TIMEOUT", "5s")
	t.Setenv("STOCKROOM_FORECAST_DAYS", "30")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "https://inventory.example.com/api", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.LoadTimeout)
	assert.Equal(t, 30, cfg.ForecastDays)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr error
	}{
		{name: "empty url", key: "backend.url", value: "", wantErr: common.ErrMissingConfig},
		{name: "bad scheme", key: "backend.url", value: "ftp://x", wantErr: common.ErrInvalidConfig},
		{name: "zero load timeout", key: "backend.load_timeout", value: "0s", wantErr: common.ErrInvalidConfig},
		{name: "zero forecast days", key: "forecast.days", value: 0, wantErr: common.ErrInvalidConfig},
		{name: "bad log level", key: "logging.level", value: "loud", wantErr: common.ErrInvalidConfig},
		{name: "bad log format", key: "logging.format", value: "xml", wantErr: common.ErrInvalidConfig},
		{name: "negative refresh", key: "dashboard.refresh_interval", value: "-1m", wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("STOCKROOM_TEST_DOTENV=from-file\nSTOCKROOM_TEST_KEEP=from-file\n"), 0o600))

	t.Setenv("STOCKROOM_TEST_KEEP", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("STOCKROOM_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("STOCKROOM_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("STOCKROOM_TEST_KEEP"), "existing variables win")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("STOCKROOM_TEST_DIR", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/db.sqlite", want: filepath.Join(home, "db.sqlite")},
		{in: "$STOCKROOM_TEST_DIR/db.sqlite", want: "/srv/data/db.sqlite"},
		{in: "/abs/path", want: "/abs/path"},
		{in: "~user/x", want: "~user/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "env-token")

	v := newViper()
	v.Set("sheets.client_id", "viper-id")
	v.Set("sheets.spreadsheet_id", "sheet-1")
	v.Set("sheets.enable_formatting", false)

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "viper-id", cfg.ClientID, "viper wins over GOOGLE_SHEETS_*")
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "sheet-1", cfg.SpreadsheetID)
	assert.False(t, cfg.EnableFormatting)
}

func TestLoadSheetsConfig_MissingAuth(t *testing.T) {
	for _, key := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(key, "")
	}
	_, err := LoadSheetsConfig(newViper())
	assert.Error(t, err)
}
