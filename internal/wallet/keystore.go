package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
)

// Chain is the RPC surface the keystore provider reads from.
type Chain interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// KeystoreConfig configures a KeystoreProvider.
type KeystoreConfig struct {
	Dir               string
	Passphrase        string
	ChainPollInterval time.Duration
	LightScrypt       bool
}

// KeystoreProvider is a Provider backed by an encrypted key directory.
type KeystoreProvider struct {
	ks         *keystore.KeyStore
	chain      Chain
	passphrase string
	interval   time.Duration
	logger     *zap.Logger
	feed       event.Feed

	mu        sync.Mutex
	lastChain *big.Int
}

// NewKeystoreProvider opens the keystore directory.
func NewKeystoreProvider(cfg KeystoreConfig, chain Chain, logger *zap.Logger) (*KeystoreProvider, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("keystore dir is required")
	}
	if chain == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChainPollInterval <= 0 {
		cfg.ChainPollInterval = 15 * time.Second
	}

	scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
	if cfg.LightScrypt {
		scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
	}

	return &KeystoreProvider{
		ks:         keystore.NewKeyStore(cfg.Dir, scryptN, scryptP),
		chain:      chain,
		passphrase: cfg.Passphrase,
		interval:   cfg.ChainPollInterval,
		logger:     logger,
	}, nil
}

// RequestAccounts unlocks the first account with the configured passphrase.
func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	accs := p.ks.Accounts()
	if len(accs) == 0 {
		return nil, ErrNoAccounts
	}
	if err := p.ks.Unlock(accs[0], p.passphrase); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserRejected, err)
	}
	return addresses(accs), nil
}

// Accounts lists keystore accounts in keystore order.
func (p *KeystoreProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	return addresses(p.ks.Accounts()), nil
}

func (p *KeystoreProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.chain.ChainID(ctx)
}

func (p *KeystoreProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return p.chain.BalanceAt(ctx, account)
}

// Subscribe registers ch for wallet events.
func (p *KeystoreProvider) Subscribe(ch chan<- Event) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Transactor unlocks account and returns chain-bound signing options.
func (p *KeystoreProvider) Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	acc := accounts.Account{Address: account}
	if !p.ks.HasAddress(account) {
		return nil, fmt.Errorf("account %s not in keystore", account.Hex())
	}
	if err := p.ks.Unlock(acc, p.passphrase); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserRejected, err)
	}
	chainID, err := p.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	opts, err := bind.NewKeyStoreTransactorWithChainID(p.ks, acc, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// Run forwards keystore arrivals/drops as AccountsChanged and polls the
// chain id for ChainChanged until ctx is done.
func (p *KeystoreProvider) Run(ctx context.Context) error {
	walletEvents := make(chan accounts.WalletEvent, 16)
	sub := p.ks.Subscribe(walletEvents)
	defer sub.Unsubscribe()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollChain(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case ev := <-walletEvents:
			p.logger.Debug("keystore event", zap.String("url", ev.Wallet.URL().String()), zap.Int("kind", int(ev.Kind)))
			if ev.Kind == accounts.WalletArrived || ev.Kind == accounts.WalletDropped {
				p.feed.Send(Event{Kind: AccountsChanged, Accounts: addresses(p.ks.Accounts())})
			}
		case <-ticker.C:
			p.pollChain(ctx)
		}
	}
}

func (p *KeystoreProvider) pollChain(ctx context.Context) {
	id, err := p.chain.ChainID(ctx)
	if err != nil {
		p.logger.Debug("chain id poll failed", zap.Error(err))
		return
	}

	p.mu.Lock()
	prev := p.lastChain
	p.lastChain = id
	p.mu.Unlock()

	if prev != nil && prev.Cmp(id) != 0 {
		p.logger.Info("chain changed", zap.String("from", prev.String()), zap.String("to", id.String()))
		p.feed.Send(Event{Kind: ChainChanged, ChainID: new(big.Int).Set(id)})
	}
}

func addresses(accs []accounts.Account) []common.Address {
	out := make([]common.Address, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.Address)
	}
	return out
}
