package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

var (
	// ErrNoWallet means no wallet provider is available in this environment.
	ErrNoWallet = errors.New("no wallet found")
	// ErrUserRejected means the wallet declined an account or signing request.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrNoAccounts means the wallet exposed no accounts.
	ErrNoAccounts = errors.New("no accounts found")
)

// Kind names the wallet the user asked to connect with.
type Kind string

const (
	KindKeystore      Kind = "keystore"
	KindMetaMask      Kind = "metamask"
	KindWalletConnect Kind = "walletconnect"
	KindCoinbase      Kind = "coinbase"
)

// ParseKind validates a wallet kind name.
func ParseKind(input string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(input))); k {
	case "":
		return KindKeystore, nil
	case KindKeystore, KindMetaMask, KindWalletConnect, KindCoinbase:
		return k, nil
	default:
		return "", fmt.Errorf("unsupported wallet kind: %s", input)
	}
}

// EventKind distinguishes wallet notifications.
type EventKind int

const (
	AccountsChanged EventKind = iota
	ChainChanged
)

func (k EventKind) String() string {
	switch k {
	case AccountsChanged:
		return "accountsChanged"
	case ChainChanged:
		return "chainChanged"
	default:
		return "unknown"
	}
}

// Event is a wallet-originated notification.
type Event struct {
	Kind     EventKind
	Accounts []common.Address
	ChainID  *big.Int
}

// Provider is the wallet the session talks to.
type Provider interface {
	// RequestAccounts asks the user for account access.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts lists the accounts currently exposed, without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	// Subscribe delivers wallet events to ch until the subscription is released.
	Subscribe(ch chan<- Event) event.Subscription
	// Transactor returns signing options for account.
	Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error)
}
