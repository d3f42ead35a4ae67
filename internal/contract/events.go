package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// Event is a decoded contract log. Args follow ABI input order.
type Event struct {
	Name   string
	Args   []interface{}
	Values map[string]interface{}
	Log    types.Log
}

// DecodeLog decodes a CrowdFundChain log, reading indexed inputs from
// topics and the rest from data.
func (c *CrowdFund) DecodeLog(log types.Log) (*Event, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	ev, err := c.abi.EventByID(log.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("unknown event %s: %w", log.Topics[0].Hex(), err)
	}

	values := make(map[string]interface{}, len(ev.Inputs))
	if err := ev.Inputs.UnpackIntoMap(values, log.Data); err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", ev.Name, err)
	}

	var indexed abi.Arguments
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(log.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("%s: expected %d indexed topics, got %d", ev.Name, len(indexed), len(log.Topics)-1)
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse %s topics: %w", ev.Name, err)
	}

	args := make([]interface{}, 0, len(ev.Inputs))
	for _, input := range ev.Inputs {
		args = append(args, values[input.Name])
	}

	return &Event{
		Name:   ev.Name,
		Args:   args,
		Values: values,
		Log:    log,
	}, nil
}

// FindEvent returns the first log in receipt decoding to the named event.
// Logs from other contracts and undecodable logs are skipped.
func (c *CrowdFund) FindEvent(receipt *types.Receipt, name string) (*Event, bool) {
	if receipt == nil {
		return nil, false
	}
	for _, log := range receipt.Logs {
		if log == nil || log.Address != c.address {
			continue
		}
		ev, err := c.DecodeLog(*log)
		if err != nil {
			continue
		}
		if ev.Name == name {
			return ev, true
		}
	}
	return nil, false
}

// CreatedCampaignID extracts the new campaign id from a createCampaign receipt.
func (c *CrowdFund) CreatedCampaignID(receipt *types.Receipt) (uint64, bool) {
	ev, ok := c.FindEvent(receipt, EventCampaignCreated)
	if !ok || len(ev.Args) == 0 {
		return 0, false
	}
	id, err := asBigInt(ev.Args[0])
	if err != nil || !id.IsUint64() {
		return 0, false
	}
	return id.Uint64(), true
}

// BigArg returns the named numeric argument of a decoded event.
func (e *Event) BigArg(name string) (*big.Int, error) {
	return asBigInt(e.Values[name])
}

// AddressArg returns the named address argument as a checksummed hex string.
func (e *Event) AddressArg(name string) (string, error) {
	addr, err := asAddress(e.Values[name])
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}
