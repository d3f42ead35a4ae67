package chain

import (
	"math/big"
	"testing"
)

func TestNetworkName(t *testing.T) {
	if got := NetworkName(big.NewInt(11155111)); got != "sepolia" {
		t.Fatalf("unexpected name: %s", got)
	}
	if got := NetworkName(big.NewInt(1)); got != "mainnet" {
		t.Fatalf("unexpected name: %s", got)
	}
	if got := NetworkName(big.NewInt(424242)); got != "unknown" {
		t.Fatalf("unexpected name: %s", got)
	}
	if got := NetworkName(nil); got != "unknown" {
		t.Fatalf("nil chain id: %s", got)
	}
}
