package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, IndexModeVector, cfg.IndexMode)
}

func TestValidateRejectsUnsupportedIndexMode(t *testing.T) {
	cfg := Default()
	cfg.IndexMode = IndexMode("bogus")
	assert.Error(t, cfg.Validate())
}

func TestDefaultUsesChromemAndNeedsNoQdrantURL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "chromem", cfg.VectorStoreProvider)
	cfg.QdrantURL = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresQdrantURLWhenSelected(t *testing.T) {
	cfg := Default()
	cfg.VectorStoreProvider = "qdrant"
	cfg.QdrantURL = ""
	assert.Error(t, cfg.Validate())

	cfg.QdrantURL = "http://localhost:6334"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnsupportedVectorStoreProvider(t *testing.T) {
	cfg := Default()
	cfg.VectorStoreProvider = "bogus"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadChunking(t *testing.T) {
	cfg := Default()
	cfg.ChunkOverlap = cfg.ChunkSize
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresOpenAIKeyWhenSelected(t *testing.T) {
	cfg := Default()
	cfg.LLMProvider = ProviderOpenAI
	cfg.OpenAIAPIKey = ""
	assert.Error(t, cfg.Validate())

	cfg.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestRefreshScheduleInterval(t *testing.T) {
	assert.Equal(t, 24*time.Hour, ScheduleDaily.Interval())
	assert.Equal(t, 7*24*time.Hour, ScheduleWeekly.Interval())
	assert.Equal(t, 30*24*time.Hour, ScheduleMonthly.Interval())
}
