package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray config.yaml
// or .env is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("AZURE_SPEECH_KEY", "")
	t.Setenv("AZURE_SPEECH_REGION", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, ":3001", cfg.Server.Addr())
	assert.Equal(t, "questions.json", cfg.Server.DataFile)
	assert.Equal(t, "http://localhost:3001", cfg.Client.ServerURL)
	assert.Equal(t, EngineAuto, cfg.Speech.Engine)
	assert.Equal(t, "fr-FR", cfg.Speech.DrillLanguage)
	assert.InDelta(t, 0.9, cfg.Speech.Rate, 1e-9)
	assert.InDelta(t, 0.5, cfg.Speech.MinRate, 1e-9)
	assert.InDelta(t, 1.5, cfg.Speech.MaxRate, 1e-9)
	assert.Equal(t, []string{"fr"}, cfg.Speech.PreferQuality)
	assert.Equal(t, time.Second, cfg.Rehearsal.PromptPause)
	assert.Equal(t, 2*time.Second, cfg.Rehearsal.AnswerPause)
	assert.Equal(t, 2*time.Second, cfg.Rehearsal.NextPause)
	assert.False(t, cfg.Voice.Enabled)
	assert.Equal(t, "normal", cfg.Log.Level)
	assert.False(t, cfg.Speech.HasAzure())
}

func TestLoadFromEnv(t *testing.T) {
	inTempDir(t)
	t.Setenv("PARLONS_SERVER_PORT", "9090")
	t.Setenv("PARLONS_SPEECH_RATE", "1.2")
	t.Setenv("PARLONS_REHEARSAL_NEXT_PAUSE", "500ms")
	t.Setenv("PARLONS_LOG_LEVEL", "debug")
	t.Setenv("AZURE_SPEECH_KEY", "k")
	t.Setenv("AZURE_SPEECH_REGION", "westeurope")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 1.2, cfg.Speech.Rate, 1e-9)
	assert.Equal(t, 500*time.Millisecond, cfg.Rehearsal.NextPause)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Speech.HasAzure())
	assert.Equal(t, "westeurope", cfg.Speech.AzureRegion)
}

func TestLoadFromFile(t *testing.T) {
	dir := inTempDir(t)
	t.Setenv("AZURE_SPEECH_KEY", "")
	t.Setenv("AZURE_SPEECH_REGION", "")

	yaml := []byte(`
server:
  port: 4000
  data_file: data/q.json
speech:
  engine: silent
  prefer_quality: [fr, en]
rehearsal:
  answer_pause: 3s
`)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "data/q.json", cfg.Server.DataFile)
	assert.Equal(t, EngineSilent, cfg.Speech.Engine)
	assert.Equal(t, []string{"fr", "en"}, cfg.Speech.PreferQuality)
	assert.Equal(t, 3*time.Second, cfg.Rehearsal.AnswerPause)
	// untouched keys keep defaults
	assert.Equal(t, time.Second, cfg.Rehearsal.PromptPause)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	dir := inTempDir(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestValidation(t *testing.T) {
	inTempDir(t)
	t.Setenv("AZURE_SPEECH_KEY", "")
	t.Setenv("AZURE_SPEECH_REGION", "")

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"rate above max", map[string]string{"PARLONS_SPEECH_RATE": "2.0"}},
		{"rate below min", map[string]string{"PARLONS_SPEECH_RATE": "0.2"}},
		{"zero min rate", map[string]string{"PARLONS_SPEECH_MIN_RATE": "0", "PARLONS_SPEECH_RATE": "0"}},
		{"bad engine", map[string]string{"PARLONS_SPEECH_ENGINE": "robot"}},
		{"negative pause", map[string]string{"PARLONS_REHEARSAL_PROMPT_PAUSE": "-1s"}},
		{"bad port", map[string]string{"PARLONS_SERVER_PORT": "70000"}},
		{"voice without model", map[string]string{"PARLONS_VOICE_ENABLED": "true"}},
		{"bad log level", map[string]string{"PARLONS_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "want validation error, got %v", err)
		})
	}
}

func TestAzureEngineNeedsCredentials(t *testing.T) {
	inTempDir(t)
	t.Setenv("PARLONS_SPEECH_ENGINE", "azure")
	t.Setenv("AZURE_SPEECH_KEY", "")
	t.Setenv("AZURE_SPEECH_REGION", "")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrMissingAzureCredentials)
}

func TestOfflineClientNeedsNoServer(t *testing.T) {
	inTempDir(t)
	t.Setenv("PARLONS_CLIENT_OFFLINE", "true")
	t.Setenv("PARLONS_CLIENT_SERVER_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Client.Offline)
}
