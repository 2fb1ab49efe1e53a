// Package chain tracks the chain the market lives on: current head, block
// timestamps and gas prices, polled over JSON-RPC.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Head is the latest observed block.
type Head struct {
	Number    uint64
	Timestamp uint64
}

// Provider is the minimal RPC surface the broker needs from a chain node.
type Provider interface {
	LatestHead(ctx context.Context) (Head, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// EthProvider implements Provider over go-ethereum's ethclient.
type EthProvider struct {
	client *ethclient.Client
}

var _ Provider = (*EthProvider)(nil)

// Dial connects to an Ethereum JSON-RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*EthProvider, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return &EthProvider{client: client}, nil
}

// NewEthProvider wraps an existing client.
func NewEthProvider(client *ethclient.Client) *EthProvider {
	return &EthProvider{client: client}
}

// Client exposes the underlying ethclient for contract bindings.
func (p *EthProvider) Client() *ethclient.Client { return p.client }

func (p *EthProvider) LatestHead(ctx context.Context) (Head, error) {
	header, err := p.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return Head{}, fmt.Errorf("failed to fetch latest header: %w", err)
	}
	return Head{Number: header.Number.Uint64(), Timestamp: header.Time}, nil
}

func (p *EthProvider) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	header, err := p.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch header %d: %w", number, err)
	}
	if header == nil {
		return 0, fmt.Errorf("block %d not found", number)
	}
	return header.Time, nil
}

func (p *EthProvider) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return p.client.SuggestGasPrice(ctx)
}

func (p *EthProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return p.client.BalanceAt(ctx, account, nil)
}
