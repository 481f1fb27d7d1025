package gasprice

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"math/big"

	"github.com/xeipuuv/gojsonschema"

	"github.com/aa-bundler/bundler-core/chainclient"
)

// polygonGasStationSchema requires the four named tiers, each an object
// with two numeric (gwei) fields, before a byte of the response is
// unmarshaled. Additional properties are not rejected.
const polygonGasStationSchema = `{
  "type": "object",
  "required": ["safeLow", "standard", "fast", "fastest"],
  "properties": {
    "safeLow": {"$ref": "#/definitions/tier"},
    "standard": {"$ref": "#/definitions/tier"},
    "fast": {"$ref": "#/definitions/tier"},
    "fastest": {"$ref": "#/definitions/tier"}
  },
  "definitions": {
    "tier": {
      "type": "object",
      "required": ["maxFeePerGas", "maxPriorityFeePerGas"],
      "properties": {
        "maxFeePerGas": {"type": "number"},
        "maxPriorityFeePerGas": {"type": "number"}
      }
    }
  }
}`

var polygonGasStationURLs = map[int64]string{
	137:   "https://gasstation.polygon.technology/v2",
	80001: "https://gasstation-testnet.polygon.technology/v2",
}

type gasStationTier struct {
	MaxFeePerGas         float64 `json:"maxFeePerGas"`
	MaxPriorityFeePerGas float64 `json:"maxPriorityFeePerGas"`
}

type gasStationResponse struct {
	SafeLow  gasStationTier `json:"safeLow"`
	Standard gasStationTier `json:"standard"`
	Fast     gasStationTier `json:"fast"`
	Fastest  gasStationTier `json:"fastest"`
}

// fetchPolygonGasStation fetches and validates the public gas station's
// "fast" tier. On any failure (HTTP, schema, or decode) it returns an
// error so the caller can log and fall through to the EIP-1559 default
// path.
func fetchPolygonGasStation(chainID int64) (chainclient.FeeEstimate, error) {
	url, ok := polygonGasStationURLs[chainID]
	if !ok {
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: no gas station URL for chain %d", chainID)
	}

	httpClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := httpClient.Get(url)
	if err != nil {
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: gas station request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: gas station HTTP %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: failed to read gas station response: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(polygonGasStationSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)
	validationResult, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: gas station schema validation errored: %w", err)
	}
	if !validationResult.Valid() {
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: gas station response did not match schema: %v", validationResult.Errors())
	}

	var parsed gasStationResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return chainclient.FeeEstimate{}, fmt.Errorf("gasprice: failed to decode gas station response: %w", err)
	}

	return chainclient.FeeEstimate{
		MaxFeePerGas:         gweiToWei(parsed.Fast.MaxFeePerGas),
		MaxPriorityFeePerGas: gweiToWei(parsed.Fast.MaxPriorityFeePerGas),
	}, nil
}

func gweiToWei(gwei float64) *big.Int {
	wei := new(big.Float).Mul(big.NewFloat(gwei), big.NewFloat(1_000_000_000))
	result, _ := wei.Int(nil)
	return result
}
