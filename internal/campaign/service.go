package campaign

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"crowdfundChain/internal/contract"
	"crowdfundChain/internal/format"
	"crowdfundChain/internal/model"
	"crowdfundChain/internal/notify"
)

// MaxCampaignCount bounds the count accepted from the contract. A larger
// value is treated as a failed count read.
const MaxCampaignCount = 100_000

var (
	// ErrUnavailable marks a failed read against the contract.
	ErrUnavailable = errors.New("campaign data unavailable")
	// ErrNotFound is returned when a campaign is absent from chain and demo data.
	ErrNotFound = errors.New("campaign not found")
	// ErrNoSigner is returned by writes submitted without a connected wallet.
	ErrNoSigner = errors.New("please connect your wallet first")
)

// Contract is the subset of the CrowdFundChain binding the service uses.
type Contract interface {
	GetCampaign(ctx context.Context, id uint64) (contract.Record, error)
	CampaignCount(ctx context.Context) (uint64, error)
	AllCampaignIDs(ctx context.Context) ([]uint64, error)
	UserCampaignIDs(ctx context.Context, user common.Address) ([]uint64, error)
	CreateCampaign(opts *bind.TransactOpts, title, description string, goalWei *big.Int, deadline int64) (*types.Transaction, error)
	Contribute(opts *bind.TransactOpts, id uint64, valueWei *big.Int) (*types.Transaction, error)
	WithdrawFunds(opts *bind.TransactOpts, id uint64) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	CreatedCampaignID(receipt *types.Receipt) (uint64, bool)
}

// Source tells which path produced a list.
type Source string

const (
	SourceChain       Source = "chain"
	SourceMock        Source = "mock"
	SourceUnavailable Source = "unavailable"
)

// FallbackPolicy selects what reads return when the contract is unreachable.
type FallbackPolicy string

const (
	FallbackMock FallbackPolicy = "mock"
	FallbackNone FallbackPolicy = "none"
)

// ParseFallbackPolicy validates a policy name.
func ParseFallbackPolicy(input string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(input))) {
	case "", FallbackMock:
		return FallbackMock, nil
	case FallbackNone:
		return FallbackNone, nil
	default:
		return "", fmt.Errorf("unsupported fallback policy: %s", input)
	}
}

// ListResult is a campaign list plus the path that produced it.
// Err holds the failure that forced a fallback.
type ListResult struct {
	Campaigns []model.Campaign
	Source    Source
	Err       error
}

// IsFallback reports whether the list did not come from the contract.
func (r ListResult) IsFallback() bool {
	return r.Source != SourceChain
}

// TxResult reports the outcome of a write. Writes never return errors directly.
type TxResult struct {
	Success       bool
	TxHash        string
	CampaignID    uint64
	HasCampaignID bool
	Err           error
}

// Config configures a Service.
type Config struct {
	Policy FallbackPolicy
	Now    func() time.Time
}

// Service is the campaign data access layer.
type Service struct {
	contract Contract
	policy   FallbackPolicy
	now      func() time.Time
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService builds a Service. A nil contract makes every read fall back.
func NewService(c Contract, cfg Config, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Policy == "" {
		cfg.Policy = FallbackMock
	}
	return &Service{
		contract: c,
		policy:   cfg.Policy,
		now:      cfg.Now,
		notifier: notifier,
		logger:   logger,
	}
}

// GetCampaign reads a single campaign from the contract. It does not fall back.
func (s *Service) GetCampaign(ctx context.Context, id uint64) (model.Campaign, error) {
	if s.contract == nil {
		return model.Campaign{}, fmt.Errorf("get campaign %d: %w", id, ErrUnavailable)
	}
	s.logger.Debug("fetch campaign", zap.Uint64("campaign_id", id))

	rec, err := s.contract.GetCampaign(ctx, id)
	if err != nil {
		return model.Campaign{}, fmt.Errorf("get campaign %d: %w: %w", id, ErrUnavailable, err)
	}
	if rec.Creator == (common.Address{}) {
		return model.Campaign{}, fmt.Errorf("get campaign %d: %w", id, ErrNotFound)
	}
	return toCampaign(id, rec), nil
}

// GetAllCampaigns reads every campaign. It never fails: the count accessor is
// tried first, then the id list, then the fallback policy applies.
func (s *Service) GetAllCampaigns(ctx context.Context) ListResult {
	if s.contract == nil {
		return s.fallbackAll(ErrUnavailable)
	}

	var ids []uint64
	count, err := s.contract.CampaignCount(ctx)
	if err == nil && count > MaxCampaignCount {
		err = fmt.Errorf("implausible campaign count %d", count)
	}
	if err == nil {
		s.logger.Debug("campaign count", zap.Uint64("count", count))
		for id := uint64(1); id <= count; id++ {
			ids = append(ids, id)
		}
	} else {
		s.logger.Warn("campaign count failed, trying id list", zap.Error(err))
		ids, err = s.contract.AllCampaignIDs(ctx)
		if err != nil {
			return s.fallbackAll(fmt.Errorf("%w: %w", ErrUnavailable, err))
		}
	}

	return ListResult{Campaigns: s.fetchEach(ctx, ids), Source: SourceChain}
}

// GetUserCampaigns reads the campaigns created by address.
func (s *Service) GetUserCampaigns(ctx context.Context, address string) ListResult {
	if s.contract == nil {
		return s.fallbackUser(address, ErrUnavailable)
	}
	if !common.IsHexAddress(address) {
		return s.fallbackUser(address, fmt.Errorf("invalid address: %s", address))
	}

	s.logger.Debug("fetch user campaigns", zap.String("account", address))
	ids, err := s.contract.UserCampaignIDs(ctx, common.HexToAddress(address))
	if err != nil {
		return s.fallbackUser(address, fmt.Errorf("%w: %w", ErrUnavailable, err))
	}

	return ListResult{Campaigns: s.fetchEach(ctx, ids), Source: SourceChain}
}

// FindCampaign resolves a campaign for the detail view: chain first, then
// demo data, then ErrNotFound.
func (s *Service) FindCampaign(ctx context.Context, id uint64) (model.Campaign, Source, error) {
	if s.contract != nil {
		c, err := s.GetCampaign(ctx, id)
		if err == nil {
			return c, SourceChain, nil
		}
		s.logger.Warn("campaign lookup failed", zap.Uint64("campaign_id", id), zap.Error(err))
		if !errors.Is(err, ErrNotFound) {
			s.notifier.Error("Failed to load campaign details")
		}
	}

	if s.policy == FallbackMock {
		for _, c := range MockCampaigns(s.now()) {
			if c.ID == id {
				return c, SourceMock, nil
			}
		}
	}

	s.notifier.Error("Campaign not found")
	return model.Campaign{}, SourceUnavailable, fmt.Errorf("campaign %d: %w", id, ErrNotFound)
}

// Featured returns the campaigns shown on the landing view.
func (s *Service) Featured() []model.Campaign {
	return MockCampaigns(s.now())[:3]
}

// CreateCampaign submits a new campaign and returns the id assigned by the contract.
func (s *Service) CreateCampaign(ctx context.Context, opts *bind.TransactOpts, title, description, fundingGoal string, durationDays int) TxResult {
	result := s.createCampaign(ctx, opts, title, description, fundingGoal, durationDays)
	if result.Err != nil {
		s.logger.Error("create campaign failed", zap.Error(result.Err))
		s.notifier.Error(failureMessage(result.Err, "Failed to create campaign"))
		return result
	}
	s.notifier.Success("Campaign created successfully!")
	return result
}

func (s *Service) createCampaign(ctx context.Context, opts *bind.TransactOpts, title, description, fundingGoal string, durationDays int) TxResult {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return TxResult{Err: fmt.Errorf("title and description are required")}
	}
	if durationDays <= 0 {
		return TxResult{Err: fmt.Errorf("duration must be at least one day")}
	}
	goalWei, err := positiveEther(fundingGoal)
	if err != nil {
		return TxResult{Err: fmt.Errorf("funding goal: %w", err)}
	}
	if err := s.canWrite(opts); err != nil {
		return TxResult{Err: err}
	}

	deadline := s.now().Add(time.Duration(durationDays) * day).Unix()
	s.logger.Info("create campaign",
		zap.String("title", title),
		zap.String("goal_wei", goalWei.String()),
		zap.Int64("deadline", deadline),
	)

	tx, err := s.contract.CreateCampaign(withContext(opts, ctx), title, description, goalWei, deadline)
	if err != nil {
		return TxResult{Err: fmt.Errorf("submit create campaign: %w", err)}
	}
	receipt, err := s.confirm(ctx, tx)
	if err != nil {
		return TxResult{TxHash: tx.Hash().Hex(), Err: err}
	}

	id, ok := s.contract.CreatedCampaignID(receipt)
	if !ok {
		s.logger.Warn("CampaignCreated event not found", zap.String("tx_hash", tx.Hash().Hex()))
	}
	return TxResult{Success: true, TxHash: tx.Hash().Hex(), CampaignID: id, HasCampaignID: ok}
}

// ContributeToCampaign sends amount ether to campaign id. Callers re-fetch
// the campaign afterwards.
func (s *Service) ContributeToCampaign(ctx context.Context, opts *bind.TransactOpts, id uint64, amount string) TxResult {
	result := s.contribute(ctx, opts, id, amount)
	if result.Err != nil {
		s.logger.Error("contribute failed", zap.Uint64("campaign_id", id), zap.Error(result.Err))
		s.notifier.Error(failureMessage(result.Err, "Failed to contribute to campaign"))
		return result
	}
	s.notifier.Success(fmt.Sprintf("Successfully contributed %s ETH!", strings.TrimSpace(amount)))
	return result
}

func (s *Service) contribute(ctx context.Context, opts *bind.TransactOpts, id uint64, amount string) TxResult {
	valueWei, err := positiveEther(amount)
	if err != nil {
		return TxResult{Err: fmt.Errorf("amount: %w", err)}
	}
	if err := s.canWrite(opts); err != nil {
		return TxResult{Err: err}
	}

	s.logger.Info("contribute", zap.Uint64("campaign_id", id), zap.String("value_wei", valueWei.String()))
	tx, err := s.contract.Contribute(withContext(opts, ctx), id, valueWei)
	if err != nil {
		return TxResult{Err: fmt.Errorf("submit contribution: %w", err)}
	}
	if _, err := s.confirm(ctx, tx); err != nil {
		return TxResult{TxHash: tx.Hash().Hex(), Err: err}
	}
	return TxResult{Success: true, TxHash: tx.Hash().Hex(), CampaignID: id, HasCampaignID: true}
}

// WithdrawFunds submits a withdrawal for campaign id. The contract decides
// whether the sender may withdraw.
func (s *Service) WithdrawFunds(ctx context.Context, opts *bind.TransactOpts, id uint64) TxResult {
	result := s.withdraw(ctx, opts, id)
	if result.Err != nil {
		s.logger.Error("withdraw failed", zap.Uint64("campaign_id", id), zap.Error(result.Err))
		s.notifier.Error(failureMessage(result.Err, "Failed to withdraw funds"))
		return result
	}
	s.notifier.Success("Funds withdrawn successfully!")
	return result
}

func (s *Service) withdraw(ctx context.Context, opts *bind.TransactOpts, id uint64) TxResult {
	if err := s.canWrite(opts); err != nil {
		return TxResult{Err: err}
	}

	s.logger.Info("withdraw funds", zap.Uint64("campaign_id", id))
	tx, err := s.contract.WithdrawFunds(withContext(opts, ctx), id)
	if err != nil {
		return TxResult{Err: fmt.Errorf("submit withdrawal: %w", err)}
	}
	if _, err := s.confirm(ctx, tx); err != nil {
		return TxResult{TxHash: tx.Hash().Hex(), Err: err}
	}
	return TxResult{Success: true, TxHash: tx.Hash().Hex(), CampaignID: id, HasCampaignID: true}
}

func (s *Service) confirm(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	s.notifier.Info("Transaction submitted! Waiting for confirmation...")
	s.logger.Info("transaction submitted", zap.String("tx_hash", tx.Hash().Hex()))

	receipt, err := s.contract.WaitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	s.logger.Info("transaction confirmed",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("block_number", receipt.BlockNumber.String()),
	)
	return receipt, nil
}

func (s *Service) canWrite(opts *bind.TransactOpts) error {
	if opts == nil {
		return ErrNoSigner
	}
	if s.contract == nil {
		return ErrUnavailable
	}
	return nil
}

func (s *Service) fetchEach(ctx context.Context, ids []uint64) []model.Campaign {
	campaigns := make([]model.Campaign, 0, min(len(ids), MaxCampaignCount))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("campaign fetch interrupted", zap.Int("fetched", len(campaigns)), zap.Error(err))
			break
		}
		c, err := s.GetCampaign(ctx, id)
		if err != nil {
			s.logger.Warn("skip campaign", zap.Uint64("campaign_id", id), zap.Error(err))
			continue
		}
		campaigns = append(campaigns, c)
	}
	return campaigns
}

func (s *Service) fallbackAll(cause error) ListResult {
	if s.policy == FallbackNone {
		s.logger.Warn("campaign list unavailable", zap.Error(cause))
		return ListResult{Campaigns: []model.Campaign{}, Source: SourceUnavailable, Err: cause}
	}
	s.logger.Warn("using mock campaigns", zap.Error(cause))
	return ListResult{Campaigns: MockCampaigns(s.now()), Source: SourceMock, Err: cause}
}

func (s *Service) fallbackUser(address string, cause error) ListResult {
	if s.policy == FallbackNone {
		s.logger.Warn("user campaigns unavailable", zap.String("account", address), zap.Error(cause))
		return ListResult{Campaigns: []model.Campaign{}, Source: SourceUnavailable, Err: cause}
	}
	s.logger.Warn("using mock user campaigns", zap.String("account", address), zap.Error(cause))
	return ListResult{Campaigns: MockUserCampaigns(s.now(), address), Source: SourceMock, Err: cause}
}

func toCampaign(id uint64, rec contract.Record) model.Campaign {
	var deadline time.Time
	if rec.Deadline != nil && rec.Deadline.IsInt64() {
		deadline = time.Unix(rec.Deadline.Int64(), 0).UTC()
	}
	return model.Campaign{
		ID:           id,
		Creator:      rec.Creator.Hex(),
		Title:        rec.Title,
		Description:  rec.Description,
		FundingGoal:  format.FormatEther(rec.FundingGoal),
		AmountRaised: format.FormatEther(rec.AmountRaised),
		Deadline:     deadline,
		IsClosed:     rec.IsClosed,
	}
}

func positiveEther(amount string) (*big.Int, error) {
	wei, err := format.ParseEther(amount)
	if err != nil {
		return nil, err
	}
	if wei.Sign() <= 0 {
		return nil, fmt.Errorf("must be greater than zero")
	}
	return wei, nil
}

func withContext(opts *bind.TransactOpts, ctx context.Context) *bind.TransactOpts {
	out := *opts
	if out.Context == nil {
		out.Context = ctx
	}
	return &out
}

func failureMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return fallback + ": " + err.Error()
}
