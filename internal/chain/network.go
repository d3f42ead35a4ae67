package chain

import "math/big"

var networkNames = map[uint64]string{
	1:        "mainnet",
	5:        "goerli",
	10:       "optimism",
	56:       "bnb",
	97:       "bnbt",
	137:      "matic",
	8453:     "base",
	17000:    "holesky",
	42161:    "arbitrum",
	59144:    "linea",
	80002:    "amoy",
	11155111: "sepolia",
}

// NetworkName maps a chain ID to its conventional short name.
func NetworkName(chainID *big.Int) string {
	if chainID == nil || !chainID.IsUint64() {
		return "unknown"
	}
	if name, ok := networkNames[chainID.Uint64()]; ok {
		return name
	}
	return "unknown"
}
