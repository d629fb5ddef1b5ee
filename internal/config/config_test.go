package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:         8000,
		StoreDriver:  DriverMemoria,
		AuthProvider: AuthLocal,
		JWTSecret:    "secreto",
	}
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.StoreDriver = "sqlite"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestValidate_LocalAuthNeedsSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_FirestoreNeedsProject(t *testing.T) {
	cfg := validConfig()
	cfg.StoreDriver = DriverFirestore
	assert.Error(t, cfg.Validate())

	cfg.FirebaseProjectID = "infourbi-dev"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.UsesFirebase())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "desde-env")
	t.Setenv("STORE_DRIVER", " Memoria ")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "desde-env", cfg.JWTSecret)
	assert.Equal(t, DriverMemoria, cfg.StoreDriver)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.GenAIModel)
}

func TestValidate_Dynamo(t *testing.T) {
	cfg := validConfig()
	cfg.StoreDriver = DriverDynamo
	assert.Error(t, cfg.Validate())

	cfg.DynamoTable = "infourbi"
	cfg.DynamoRegion = "us-east-1"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CambiosDesdeStream(t *testing.T) {
	cfg := validConfig()
	cfg.CambiosDesdeStream = true
	assert.Error(t, cfg.Validate())

	cfg.StoreDriver = DriverDynamo
	cfg.DynamoTable = "infourbi"
	cfg.DynamoRegion = "us-east-1"
	assert.Error(t, cfg.Validate(), "sin redis")

	cfg.RedisURL = "redis://localhost:6379"
	assert.NoError(t, cfg.Validate())
}
