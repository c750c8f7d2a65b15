package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "explorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	path := writeFile(t, `
scene:
  max_height: 30
imagery:
  timeout: 3s
  overhead:
    zoom: 18
switcher:
  hysteresis_deg: 4
weights:
  walk: 2
  schools: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, float32(30), cfg.Scene.MaxHeight)
	assert.Equal(t, def.Scene.HouseSize, cfg.Scene.HouseSize)
	assert.Equal(t, 3*time.Second, cfg.Imagery.Timeout)
	assert.Equal(t, 18, cfg.Imagery.Overhead.Zoom)
	assert.Equal(t, def.Imagery.Overhead.Width, cfg.Imagery.Overhead.Width)
	assert.Equal(t, float32(4), cfg.Switcher.HysteresisDeg)
	assert.Equal(t, float32(-30), cfg.Switcher.OverheadPitchDeg)
	assert.Equal(t, 2.0, cfg.Weights["walk"])
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	path := writeFile(t, "imagery:\n  api_key: from-file\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Imagery.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "scene: [not, a, map")
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config:")
	assert.Equal(t, Default(), cfg)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	_, err := Load(writeFile(t, "scene:\n  max_height: 0\n"))
	assert.ErrorContains(t, err, "max_height")

	_, err = Load(writeFile(t, "scene:\n  house_size: [5.6, 0, 4]\n"))
	assert.ErrorContains(t, err, "house_size[1]")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Switcher.HysteresisDeg = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Switcher.OverheadPitchDeg = -95
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scene.Bob = -0.1
	assert.ErrorContains(t, cfg.Validate(), "scene.bob")

	cfg = Default()
	cfg.Switcher.OverheadPitchDeg = 0
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.Weights = map[string]float64{"walk": -1}
	assert.ErrorContains(t, cfg.Validate(), "weights.walk")
}

func TestSave_RoundTripWithoutAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	cfg := Default()
	cfg.Imagery.APIKey = "secret"
	cfg.Scene.LayoutRadius = 55
	cfg.Weights = map[string]float64{"walk": 1}

	path := filepath.Join(t.TempDir(), "nested", "explorer.yaml")
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	got, err := Load(path)
	require.NoError(t, err)
	cfg.Imagery.APIKey = ""
	assert.Equal(t, cfg, got)
}
