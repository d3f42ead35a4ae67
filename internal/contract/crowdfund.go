package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultAddress is the deployed CrowdFundChain contract on testnet.
const DefaultAddress = "0xbC9681894F36F438863cfAf8F64BEa9Cc6e27017"

// ErrReadOnly is returned by write methods when no transacting backend is set.
var ErrReadOnly = errors.New("contract is read-only")

// Caller performs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Backend submits transactions and waits for their receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Record is the raw getCampaign tuple.
type Record struct {
	Creator      common.Address
	Title        string
	Description  string
	FundingGoal  *big.Int
	AmountRaised *big.Int
	Deadline     *big.Int
	IsClosed     bool
}

// CrowdFund binds the CrowdFundChain contract at a fixed address.
type CrowdFund struct {
	address common.Address
	abi     abi.ABI
	caller  Caller
	backend Backend
	bound   *bind.BoundContract
}

// NewCrowdFund builds a binding. backend may be nil for read-only use.
func NewCrowdFund(address common.Address, caller Caller, backend Backend) (*CrowdFund, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	parsed, err := CrowdFundABI()
	if err != nil {
		return nil, fmt.Errorf("parse crowdfund abi: %w", err)
	}

	c := &CrowdFund{
		address: address,
		abi:     parsed,
		caller:  caller,
		backend: backend,
	}
	if backend != nil {
		c.bound = bind.NewBoundContract(address, parsed, backend, backend, backend)
	}
	return c, nil
}

// Address returns the contract address.
func (c *CrowdFund) Address() common.Address {
	return c.address
}

// GetCampaign reads one campaign tuple.
func (c *CrowdFund) GetCampaign(ctx context.Context, id uint64) (Record, error) {
	values, err := c.call(ctx, "getCampaign", new(big.Int).SetUint64(id))
	if err != nil {
		return Record{}, err
	}
	if len(values) != 7 {
		return Record{}, fmt.Errorf("getCampaign: expected 7 values, got %d", len(values))
	}

	var rec Record
	if rec.Creator, err = asAddress(values[0]); err != nil {
		return Record{}, fmt.Errorf("creator: %w", err)
	}
	if rec.Title, err = asString(values[1]); err != nil {
		return Record{}, fmt.Errorf("title: %w", err)
	}
	if rec.Description, err = asString(values[2]); err != nil {
		return Record{}, fmt.Errorf("description: %w", err)
	}
	if rec.FundingGoal, err = asBigInt(values[3]); err != nil {
		return Record{}, fmt.Errorf("funding goal: %w", err)
	}
	if rec.AmountRaised, err = asBigInt(values[4]); err != nil {
		return Record{}, fmt.Errorf("amount raised: %w", err)
	}
	if rec.Deadline, err = asBigInt(values[5]); err != nil {
		return Record{}, fmt.Errorf("deadline: %w", err)
	}
	if rec.IsClosed, err = asBool(values[6]); err != nil {
		return Record{}, fmt.Errorf("closed: %w", err)
	}
	return rec, nil
}

// CampaignCount reads the total number of campaigns.
func (c *CrowdFund) CampaignCount(ctx context.Context) (uint64, error) {
	values, err := c.call(ctx, "getCampaignCount")
	if err != nil {
		return 0, err
	}
	count, err := asBigInt(values[0])
	if err != nil {
		return 0, fmt.Errorf("campaign count: %w", err)
	}
	if !count.IsUint64() {
		return 0, fmt.Errorf("campaign count overflow: %s", count)
	}
	return count.Uint64(), nil
}

// AllCampaignIDs reads every campaign id.
func (c *CrowdFund) AllCampaignIDs(ctx context.Context) ([]uint64, error) {
	values, err := c.call(ctx, "getAllCampaigns")
	if err != nil {
		return nil, err
	}
	return asIDs(values[0])
}

// UserCampaignIDs reads the ids created by user.
func (c *CrowdFund) UserCampaignIDs(ctx context.Context, user common.Address) ([]uint64, error) {
	values, err := c.call(ctx, "getUserCampaigns", user)
	if err != nil {
		return nil, err
	}
	return asIDs(values[0])
}

// CreateCampaign submits a createCampaign transaction.
func (c *CrowdFund) CreateCampaign(opts *bind.TransactOpts, title, description string, goalWei *big.Int, deadline int64) (*types.Transaction, error) {
	if err := c.canTransact(opts); err != nil {
		return nil, err
	}
	return c.bound.Transact(opts, "createCampaign", title, description, goalWei, big.NewInt(deadline))
}

// Contribute submits a payable contribute transaction carrying valueWei.
func (c *CrowdFund) Contribute(opts *bind.TransactOpts, id uint64, valueWei *big.Int) (*types.Transaction, error) {
	if err := c.canTransact(opts); err != nil {
		return nil, err
	}
	payable := *opts
	payable.Value = valueWei
	return c.bound.Transact(&payable, "contribute", new(big.Int).SetUint64(id))
}

// WithdrawFunds submits a withdrawFunds transaction.
func (c *CrowdFund) WithdrawFunds(opts *bind.TransactOpts, id uint64) (*types.Transaction, error) {
	if err := c.canTransact(opts); err != nil {
		return nil, err
	}
	return c.bound.Transact(opts, "withdrawFunds", new(big.Int).SetUint64(id))
}

// WaitMined blocks until tx is mined and fails on reverted receipts.
func (c *CrowdFund) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if c.backend == nil {
		return nil, ErrReadOnly
	}
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

func (c *CrowdFund) canTransact(opts *bind.TransactOpts) error {
	if c.bound == nil {
		return ErrReadOnly
	}
	if opts == nil {
		return fmt.Errorf("transact opts are nil")
	}
	return nil
}

func (c *CrowdFund) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &c.address, Data: data}
	resp, err := c.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := c.abi.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func asIDs(value interface{}) ([]uint64, error) {
	raw, ok := value.([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unsupported id list type %T", value)
	}
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		if id == nil || !id.IsUint64() {
			return nil, fmt.Errorf("invalid campaign id: %v", id)
		}
		ids = append(ids, id.Uint64())
	}
	return ids, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asString(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unsupported string type %T", value)
	}
	return s, nil
}

func asBool(value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
	return b, nil
}
