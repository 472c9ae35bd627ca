package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LIGHTHOUSE_API_KEY", "key-123")
	t.Setenv("PRIVATE_KEY", "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	t.Setenv("CORE_CONTRACT_ADDR", "0x73f46db18e5b171318a55508873bdd0691209864")
	t.Setenv("STORAGE_CONTRACT_ADDR", "0x1000000000000000000000000000000000000001")
	t.Setenv("ACCESS_CONTRACT_ADDR", "0x1000000000000000000000000000000000000002")
	t.Setenv("PROVIDER_1_ADDRESS", "0xf0245f6251bef9447a08766b9da2b07b28ad80b0")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "https://node.lighthouse.storage", cfg.StorageNodeURL)
	require.Equal(t, "gateway.lighthouse.storage", cfg.GatewayHost)
	require.Equal(t, 60*time.Second, cfg.UploadTimeout)
	require.Equal(t, "https://api.calibration.node.glif.io/rpc/v1", cfg.ChainRPCURL)
	require.EqualValues(t, 314159, cfg.ChainID)
	require.EqualValues(t, 3, cfg.Confirmations)
	require.Equal(t, ":8080", cfg.ServerPort)
	require.Equal(t, 2, cfg.AuditorWorkers)
}

func TestLoadConfig_ChecksumsAddresses(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Addresses come back in EIP-55 checksum form no matter the input casing.
	require.Equal(t, "0x73f46Db18E5b171318a55508873BdD0691209864", cfg.CoreContractAddr.Hex())
	require.Len(t, cfg.DefaultProviders, 1)
	require.True(t, strings.EqualFold("0xf0245f6251bef9447a08766b9da2b07b28ad80b0", cfg.DefaultProviders[0].Hex()))
	require.NotEqual(t, "0xf0245f6251bef9447a08766b9da2b07b28ad80b0", cfg.DefaultProviders[0].Hex())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHAIN_ID", "314")
	t.Setenv("UPLOAD_TIMEOUT_SEC", "120")
	t.Setenv("PROVIDER_2_ADDRESS", "0x2000000000000000000000000000000000000002")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.EqualValues(t, 314, cfg.ChainID)
	require.Equal(t, 120*time.Second, cfg.UploadTimeout)
	require.Len(t, cfg.DefaultProviders, 2)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []string{
		"LIGHTHOUSE_API_KEY",
		"PRIVATE_KEY",
		"CORE_CONTRACT_ADDR",
		"PROVIDER_1_ADDRESS",
	}

	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_InvalidAddress(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROVIDER_1_ADDRESS", "not-an-address")

	_, err := LoadConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "PROVIDER_1_ADDRESS")
}
