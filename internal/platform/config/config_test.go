package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadAppliesDefaultsAndFile(t *testing.T) {
	p := writeConfig(t, `
mode: release
auth:
  jwt_secret: s3cret
portal:
  timezone: Asia/Jakarta
  allow_employee_lookup: false
server:
  shutdown_timeout: 5s
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Portal.AllowEmployeeLookup)
	assert.Equal(t, 10, cfg.Portal.SubmitPerMinute)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoadEnvOverrides(t *testing.T) {
	p := writeConfig(t, "auth:\n  jwt_secret: from-file\ndatabase:\n  host: db.local\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_HOST", "")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, "db.local", cfg.DB.Host, "empty env values do not override")
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cases := map[string]string{
		"missing secret": "mode: dev\n",
		"bad mode":       "mode: staging\nauth:\n  jwt_secret: x\n",
		"bad timezone":   "auth:\n  jwt_secret: x\nportal:\n  timezone: Mars/Olympus\n",
		"bad yaml":       "auth: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
