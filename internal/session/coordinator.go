package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"crowdfundChain/internal/campaign"
	"crowdfundChain/internal/chain"
	"crowdfundChain/internal/format"
	"crowdfundChain/internal/model"
	"crowdfundChain/internal/notify"
	"crowdfundChain/internal/storage"
	"crowdfundChain/internal/wallet"
)

const (
	msgConnected      = "Wallet connected successfully!"
	msgDisconnected   = "Wallet disconnected"
	msgNoWallet       = "No wallet found! Please install MetaMask or another web3 wallet."
	msgConnectFailed  = "Failed to connect wallet"
	msgMockCampaigns  = "Failed to load campaigns from blockchain. Showing mock data instead."
	msgNoCampaigns    = "Failed to load campaigns from blockchain."
	walletEventBuffer = 16
)

// ErrNotConnected is returned by operations that need a connected wallet.
var ErrNotConnected = errors.New("wallet not connected")

// CampaignSource loads the campaign snapshots held by the session.
type CampaignSource interface {
	GetAllCampaigns(ctx context.Context) campaign.ListResult
	GetUserCampaigns(ctx context.Context, address string) campaign.ListResult
}

// Options wires a Coordinator. Provider may be nil when no wallet is available.
type Options struct {
	Provider  wallet.Provider
	Campaigns CampaignSource
	Store     storage.AccountStore
	Notifier  notify.Notifier
	Logger    *zap.Logger
	// Snapshots receives campaign lists read from the contract.
	Snapshots storage.CampaignSink
	// OnChainChanged replaces the default reset-and-restore reaction.
	OnChainChanged func(ctx context.Context, chainID *big.Int)
}

// Coordinator owns the wallet session. All state changes go through its methods.
type Coordinator struct {
	provider       wallet.Provider
	campaigns      CampaignSource
	store          storage.AccountStore
	notifier       notify.Notifier
	logger         *zap.Logger
	snapshots      storage.CampaignSink
	onChainChanged func(ctx context.Context, chainID *big.Int)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  model.Session
	gen    uint64
	sub    event.Subscription
	closed bool
}

func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	store := opts.Store
	if store == nil {
		store = &storage.MemoryAccountStore{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		provider:       opts.Provider,
		campaigns:      opts.Campaigns,
		store:          store,
		notifier:       notifier,
		logger:         logger,
		snapshots:      opts.Snapshots,
		onChainChanged: opts.OnChainChanged,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// State returns a copy of the current session.
func (c *Coordinator) State() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Connect asks the wallet for account access and loads the session.
func (c *Coordinator) Connect(ctx context.Context, kind wallet.Kind) error {
	c.setConnecting(true)
	defer c.setConnecting(false)

	if c.provider == nil {
		c.notifier.Error(msgNoWallet)
		return wallet.ErrNoWallet
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		c.logger.Warn("connect wallet failed", zap.String("wallet", string(kind)), zap.Error(err))
		c.notifier.Error(connectFailure(err))
		return fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		c.notifier.Error("No accounts found")
		return wallet.ErrNoAccounts
	}

	c.establish(ctx, accounts[0], kind)
	c.logger.Info("wallet connected",
		zap.String("wallet", string(kind)),
		zap.String("account", accounts[0].Hex()),
	)
	c.notifier.Success(msgConnected)
	return nil
}

// Disconnect clears the session and the persisted account. Safe to call repeatedly.
func (c *Coordinator) Disconnect(ctx context.Context) {
	c.reset()
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("clear persisted account failed", zap.Error(err))
	}
	c.notifier.Info(msgDisconnected)
}

// RefreshCampaigns reloads both campaign snapshots for the connected account.
func (c *Coordinator) RefreshCampaigns(ctx context.Context) {
	c.mu.Lock()
	account := c.state.Account
	connected := c.state.IsConnected
	gen := c.gen
	c.mu.Unlock()

	if !connected || account == "" {
		c.logger.Warn("cannot refresh campaigns: no wallet connected")
		return
	}
	c.logger.Debug("refreshing campaigns", zap.String("account", account))
	c.loadCampaigns(ctx, gen, account)
}

// Restore reconnects silently when the wallet still exposes the persisted account.
func (c *Coordinator) Restore(ctx context.Context) error {
	saved, ok, err := c.store.Load(ctx)
	if err != nil {
		c.forget(ctx)
		return fmt.Errorf("load persisted account: %w", err)
	}
	if !ok || saved.Account == "" || c.provider == nil {
		return nil
	}

	c.setConnecting(true)
	defer c.setConnecting(false)

	accounts, err := c.provider.Accounts(ctx)
	if err != nil {
		c.forget(ctx)
		return fmt.Errorf("list wallet accounts: %w", err)
	}
	if len(accounts) == 0 || !strings.EqualFold(accounts[0].Hex(), saved.Account) {
		c.logger.Info("persisted account no longer exposed by wallet", zap.String("account", saved.Account))
		c.forget(ctx)
		return nil
	}

	c.establish(ctx, accounts[0], wallet.Kind(saved.Wallet))
	c.logger.Info("session restored", zap.String("account", accounts[0].Hex()))
	return nil
}

// Start runs Restore in the background. The returned channel closes when it finishes.
func (c *Coordinator) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Restore(ctx); err != nil {
			c.logger.Warn("failed to reconnect wallet", zap.Error(err))
		}
	}()
	return done
}

// Signer returns transaction options for the connected account.
func (c *Coordinator) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	c.mu.Lock()
	account := c.state.Account
	connected := c.state.IsConnected
	c.mu.Unlock()

	if !connected || c.provider == nil {
		return nil, ErrNotConnected
	}
	opts, err := c.provider.Transactor(ctx, common.HexToAddress(account))
	if err != nil {
		return nil, fmt.Errorf("wallet signer: %w", err)
	}
	return opts, nil
}

// Close releases the wallet subscription and stops event handling.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.detachLocked()
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

func (c *Coordinator) establish(ctx context.Context, account common.Address, kind wallet.Kind) {
	hex := account.Hex()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state.Account = hex
	c.state.IsConnected = true
	if kind != "" {
		c.state.Wallet = string(kind)
	}
	saved := storage.SavedAccount{Account: hex, Wallet: c.state.Wallet}
	c.attachLocked()
	c.mu.Unlock()

	if err := c.store.Save(ctx, saved); err != nil {
		c.logger.Warn("persist account failed", zap.Error(err))
	}
	c.refreshNetwork(ctx, gen)
	c.refreshBalance(ctx, gen, account)
	c.loadCampaigns(ctx, gen, hex)
}

func (c *Coordinator) refreshNetwork(ctx context.Context, gen uint64) {
	id, err := c.provider.ChainID(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch network", zap.Error(err))
		return
	}
	c.mu.Lock()
	if c.gen == gen {
		c.state.Network = chain.NetworkName(id)
	}
	c.mu.Unlock()
}

func (c *Coordinator) refreshBalance(ctx context.Context, gen uint64, account common.Address) {
	wei, err := c.provider.BalanceAt(ctx, account)
	if err != nil {
		c.logger.Warn("failed to fetch balance", zap.String("account", account.Hex()), zap.Error(err))
		return
	}
	c.mu.Lock()
	if c.gen == gen {
		c.state.Balance = format.FormatEther(wei)
	}
	c.mu.Unlock()
}

// loadCampaigns replaces both snapshots unless the session moved on meanwhile.
func (c *Coordinator) loadCampaigns(ctx context.Context, gen uint64, account string) {
	if c.campaigns == nil {
		return
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.state.IsLoadingCampaigns = true
	c.mu.Unlock()

	c.logger.Debug("loading all campaigns")
	all := c.campaigns.GetAllCampaigns(ctx)
	c.logger.Debug("loading user campaigns", zap.String("account", account))
	mine := c.campaigns.GetUserCampaigns(ctx, account)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale campaign load", zap.Uint64("generation", gen))
		return
	}
	c.state.Campaigns = all.Campaigns
	c.state.UserCampaigns = mine.Campaigns
	c.state.IsLoadingCampaigns = false
	c.mu.Unlock()

	c.logger.Info("campaigns loaded",
		zap.Int("all_campaigns", len(all.Campaigns)),
		zap.Int("user_campaigns", len(mine.Campaigns)),
		zap.String("source", string(all.Source)),
	)

	switch {
	case all.Source == campaign.SourceMock || mine.Source == campaign.SourceMock:
		c.notifier.Error(msgMockCampaigns)
	case all.IsFallback() || mine.IsFallback():
		c.notifier.Error(msgNoCampaigns)
	}

	if c.snapshots != nil && all.Source == campaign.SourceChain {
		if err := c.snapshots.PutCampaigns(ctx, all.Campaigns); err != nil {
			c.logger.Warn("write campaign snapshot failed", zap.Error(err))
		}
	}
}

// attachLocked subscribes to wallet events. Requires c.mu.
func (c *Coordinator) attachLocked() {
	if c.sub != nil || c.closed || c.provider == nil {
		return
	}
	ch := make(chan wallet.Event, walletEventBuffer)
	sub := c.provider.Subscribe(ch)
	c.sub = sub
	c.wg.Add(1)
	go c.watch(sub, ch)
}

// detachLocked releases the wallet subscription. Requires c.mu.
func (c *Coordinator) detachLocked() {
	if c.sub == nil {
		return
	}
	c.sub.Unsubscribe()
	c.sub = nil
}

func (c *Coordinator) watch(sub event.Subscription, ch <-chan wallet.Event) {
	defer c.wg.Done()
	for {
		select {
		case ev := <-ch:
			if !c.current(sub) {
				return
			}
			c.handle(ev)
		case err, ok := <-sub.Err():
			if ok && err != nil {
				c.logger.Warn("wallet subscription failed", zap.Error(err))
			}
			return
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Coordinator) current(sub event.Subscription) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub == sub
}

func (c *Coordinator) handle(ev wallet.Event) {
	ctx := c.ctx
	c.logger.Debug("wallet event", zap.String("kind", ev.Kind.String()))

	switch ev.Kind {
	case wallet.AccountsChanged:
		if len(ev.Accounts) == 0 {
			c.Disconnect(ctx)
			return
		}
		c.switchAccount(ctx, ev.Accounts[0])
	case wallet.ChainChanged:
		if c.onChainChanged != nil {
			c.onChainChanged(ctx, ev.ChainID)
			return
		}
		c.reset()
		if err := c.Restore(ctx); err != nil {
			c.logger.Warn("failed to reconnect wallet after chain change", zap.Error(err))
		}
	}
}

func (c *Coordinator) switchAccount(ctx context.Context, account common.Address) {
	hex := account.Hex()

	c.mu.Lock()
	if !c.state.IsConnected || strings.EqualFold(c.state.Account, hex) {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.state.Account = hex
	c.state.Balance = ""
	saved := storage.SavedAccount{Account: hex, Wallet: c.state.Wallet}
	c.mu.Unlock()

	c.logger.Info("wallet account changed", zap.String("account", hex))
	if err := c.store.Save(ctx, saved); err != nil {
		c.logger.Warn("persist account failed", zap.Error(err))
	}
	c.refreshBalance(ctx, gen, account)
	c.loadCampaigns(ctx, gen, hex)
}

// reset drops all in-memory session state and the wallet subscription.
func (c *Coordinator) reset() {
	c.mu.Lock()
	c.detachLocked()
	c.gen++
	c.state = model.Session{}
	c.mu.Unlock()
}

func (c *Coordinator) forget(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("clear persisted account failed", zap.Error(err))
	}
}

func (c *Coordinator) setConnecting(v bool) {
	c.mu.Lock()
	c.state.IsConnecting = v
	c.mu.Unlock()
}

func connectFailure(err error) string {
	if err == nil {
		return msgConnectFailed
	}
	return err.Error()
}
