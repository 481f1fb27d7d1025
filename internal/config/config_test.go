package config

import (
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("API_VERSION")
	os.Unsetenv("NO_EIP1559_SUPPORT")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.APIVersion != "v2" {
		t.Errorf("APIVersion = %q, want v2", cfg.APIVersion)
	}
	if cfg.NoEIP1559Support {
		t.Error("NoEIP1559Support should default to false")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() should be true by default")
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("API_VERSION", "v1")
	os.Setenv("ENTRYPOINT_V06_ADDRESS", "0x000000000000000000000000000000000000dEaD")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("API_VERSION")
		os.Unsetenv("ENTRYPOINT_V06_ADDRESS")
	}()

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.APIVersion != "v1" {
		t.Errorf("APIVersion = %q, want v1", cfg.APIVersion)
	}
	if cfg.EntryPointV06Address != common.HexToAddress("0x000000000000000000000000000000000000dEaD") {
		t.Errorf("EntryPointV06Address = %s, want override applied", cfg.EntryPointV06Address.Hex())
	}
}

func TestGetEnvAddressRejectsInvalidHex(t *testing.T) {
	os.Setenv("UTILITY_WALLET_ADDRESS", "not-an-address")
	defer os.Unsetenv("UTILITY_WALLET_ADDRESS")

	cfg := Load()
	if cfg.UtilityWalletAddress.Hex() != "0x0000000000000000000000000000000000000000" {
		t.Errorf("UtilityWalletAddress = %s, want zero address fallback for invalid input", cfg.UtilityWalletAddress.Hex())
	}
}
