// Package config loads this core's runtime configuration from environment
// variables: godotenv for local .env loading, plain os.Getenv reads with
// typed defaults, no validation framework.
package config

import (
	"math/big"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Config holds the recognized validation/pricing options plus the
// process's own RPC/port wiring for the demo command.
type Config struct {
	// Port is the HTTP port the demo's /healthz and /metrics endpoints
	// bind to.
	Port int
	// Environment selects "development" or "production" Gin modes.
	Environment string

	// RPCURL is the Ethereum JSON-RPC endpoint the chain client facade
	// dials.
	RPCURL string

	// APIVersion gates the preVerificationGas check; "v1" skips it.
	APIVersion string
	// BalanceOverrideEnabled adds a synthetic ETH-balance override to
	// simulation calls.
	BalanceOverrideEnabled bool
	// DisableExpirationCheck globally disables the time-window check.
	DisableExpirationCheck bool
	// GasPriceTimeValiditySeconds is the rolling-queue capacity W.
	GasPriceTimeValiditySeconds int
	// EntryPointSimulationsAddress is required for the v0.7 path.
	EntryPointSimulationsAddress common.Address
	// EntryPointV06Address/EntryPointV07Address are the deployed EntryPoint
	// addresses this process validates against.
	EntryPointV06Address common.Address
	EntryPointV07Address common.Address
	// NoEIP1559Support is read from NO_EIP1559_SUPPORT. It is not passed to
	// the gas price manager, which picks the legacy estimation path from
	// the chain profile alone.
	NoEIP1559Support bool
	// UtilityWalletAddress is the neutral caller address used as "from" in
	// simulation calls.
	UtilityWalletAddress common.Address
}

// Load loads configuration from environment variables, reading a local
// .env file first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		RPCURL: getEnv("RPC_URL", "https://eth.llamarpc.com"),

		APIVersion:                   getEnv("API_VERSION", "v2"),
		BalanceOverrideEnabled:       getEnvBool("BALANCE_OVERRIDE_ENABLED", false),
		DisableExpirationCheck:       getEnvBool("DISABLE_EXPIRATION_CHECK", false),
		GasPriceTimeValiditySeconds:  getEnvInt("GAS_PRICE_TIME_VALIDITY_SECONDS", 10),
		EntryPointSimulationsAddress: getEnvAddress("ENTRYPOINT_SIMULATIONS_ADDRESS", common.Address{}),
		EntryPointV06Address:         getEnvAddress("ENTRYPOINT_V06_ADDRESS", common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")),
		EntryPointV07Address:         getEnvAddress("ENTRYPOINT_V07_ADDRESS", common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")),
		NoEIP1559Support:             getEnvBool("NO_EIP1559_SUPPORT", false),
		UtilityWalletAddress:         getEnvAddress("UTILITY_WALLET_ADDRESS", common.Address{}),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool { return c.Environment == "development" }

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool { return c.Environment == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAddress(key string, defaultValue common.Address) common.Address {
	if value := os.Getenv(key); value != "" && common.IsHexAddress(value) {
		return common.HexToAddress(value)
	}
	return defaultValue
}

// BigIntEnv reads an environment variable as a decimal big.Int, used by
// callers that need a wei-denominated override not otherwise modeled here.
func BigIntEnv(key string, defaultValue *big.Int) *big.Int {
	if value := os.Getenv(key); value != "" {
		if parsed, ok := new(big.Int).SetString(value, 10); ok {
			return parsed
		}
	}
	return defaultValue
}
