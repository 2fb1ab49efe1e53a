package market

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/zkmarket/broker/pkg/chain"
	"github.com/zkmarket/broker/pkg/log"
	"github.com/zkmarket/broker/pkg/model"
)

// marketABI is the subset of the market contract the broker exercises.
const marketABI = `[
  {"type":"function","name":"requestIsLocked","stateMutability":"view","inputs":[{"name":"requestId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"requestIsFulfilled","stateMutability":"view","inputs":[{"name":"requestId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"requestLocker","stateMutability":"view","inputs":[{"name":"requestId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOfStake","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"lockRequest","stateMutability":"nonpayable","inputs":[
    {"name":"request","type":"tuple","components":[
      {"name":"id","type":"uint256"},
      {"name":"client","type":"address"},
      {"name":"imageUrl","type":"string"},
      {"name":"inputUrl","type":"string"},
      {"name":"inlineInput","type":"bytes"},
      {"name":"offer","type":"tuple","components":[
        {"name":"minPrice","type":"uint256"},
        {"name":"maxPrice","type":"uint256"},
        {"name":"biddingStart","type":"uint64"},
        {"name":"rampUpPeriod","type":"uint32"},
        {"name":"lockTimeout","type":"uint32"},
        {"name":"timeout","type":"uint32"},
        {"name":"lockStake","type":"uint256"}
      ]}
    ]},
    {"name":"clientSignature","type":"bytes"}
  ],"outputs":[]}
]`

// Wire structs mirror the ABI tuple layout for argument packing.
type offerTuple struct {
	MinPrice     *big.Int
	MaxPrice     *big.Int
	BiddingStart uint64
	RampUpPeriod uint32
	LockTimeout  uint32
	Timeout      uint32
	LockStake    *big.Int
}

type requestTuple struct {
	Id          *big.Int
	Client      common.Address
	ImageUrl    string
	InputUrl    string
	InlineInput []byte
	Offer       offerTuple
}

// EthMarket implements Market against the deployed market contract.
type EthMarket struct {
	client    *ethclient.Client
	provider  chain.Provider
	contract  *bind.BoundContract
	address   common.Address
	signerKey *ecdsa.PrivateKey
	caller    common.Address
	chainID   *big.Int

	// TxTimeout bounds the wait for a lock receipt. Zero uses 90s.
	TxTimeout time.Duration
}

var _ Market = (*EthMarket)(nil)

// NewEthMarket binds the market contract at address, transacting with the
// given hex-encoded private key.
func NewEthMarket(client *ethclient.Client, provider chain.Provider, address common.Address, privateKeyHex string, chainID *big.Int) (*EthMarket, error) {
	parsed, err := abi.JSON(strings.NewReader(marketABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse market ABI: %w", err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &EthMarket{
		client:    client,
		provider:  provider,
		contract:  bind.NewBoundContract(address, parsed, client, client, client),
		address:   address,
		signerKey: key,
		caller:    crypto.PubkeyToAddress(key.PublicKey),
		chainID:   chainID,
	}, nil
}

func (m *EthMarket) Caller() common.Address { return m.caller }

func (m *EthMarket) GetRequestStatus(ctx context.Context, requestID *big.Int, expiresAt uint64) (RequestStatus, error) {
	fulfilled, err := m.callBool(ctx, "requestIsFulfilled", requestID)
	if err != nil {
		return StatusUnknown, err
	}
	if fulfilled {
		return StatusFulfilled, nil
	}

	head, err := m.provider.LatestHead(ctx)
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to fetch chain head: %w", err)
	}
	if head.Timestamp > expiresAt {
		return StatusExpired, nil
	}

	locked, err := m.callBool(ctx, "requestIsLocked", requestID)
	if err != nil {
		return StatusUnknown, err
	}
	if locked {
		return StatusLocked, nil
	}
	return StatusUnknown, nil
}

func (m *EthMarket) GetRequestLocker(ctx context.Context, requestID *big.Int) (common.Address, bool, error) {
	var out []interface{}
	if err := m.contract.Call(&bind.CallOpts{Context: ctx}, &out, "requestLocker", requestID); err != nil {
		return common.Address{}, false, fmt.Errorf("requestLocker call failed: %w", err)
	}
	locker := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	if locker == (common.Address{}) {
		return common.Address{}, false, nil
	}
	return locker, true, nil
}

func (m *EthMarket) LockRequest(ctx context.Context, req *model.ProofRequest, clientSig []byte, priorityGas uint64) (uint64, error) {
	logger := log.WithComponent("market")

	opts, err := bind.NewKeyedTransactorWithChainID(m.signerKey, m.chainID)
	if err != nil {
		return 0, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx
	if priorityGas > 0 {
		// The fee cap is derived from the pending base fee by the transactor.
		opts.GasTipCap = new(big.Int).SetUint64(priorityGas)
	}

	tx, err := m.contract.Transact(opts, "lockRequest", toRequestTuple(req), clientSig)
	if err != nil {
		return 0, classifyLockError(err)
	}

	logger.Debug().
		Str("request_id", fmt.Sprintf("0x%x", req.RequestID)).
		Str("tx", tx.Hash().Hex()).
		Msg("lock transaction sent")

	timeout := m.TxTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, m.client, tx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrTxNotConfirmed, tx.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return 0, fmt.Errorf("%w: tx %s", ErrLockReverted, tx.Hash().Hex())
	}
	return receipt.BlockNumber.Uint64(), nil
}

func (m *EthMarket) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return m.callUint(ctx, "balanceOf", account)
}

func (m *EthMarket) StakeBalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return m.callUint(ctx, "balanceOfStake", account)
}

func (m *EthMarket) callBool(ctx context.Context, method string, args ...interface{}) (bool, error) {
	var out []interface{}
	if err := m.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return false, fmt.Errorf("%s call failed: %w", method, err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (m *EthMarket) callUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := m.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func toRequestTuple(req *model.ProofRequest) requestTuple {
	return requestTuple{
		Id:          req.RequestID,
		Client:      req.Client,
		ImageUrl:    req.ImageURL,
		InputUrl:    req.InputURL,
		InlineInput: req.InlineInput,
		Offer: offerTuple{
			MinPrice:     req.Offer.MinPrice,
			MaxPrice:     req.Offer.MaxPrice,
			BiddingStart: req.Offer.BiddingStart,
			RampUpPeriod: req.Offer.RampUpPeriod,
			LockTimeout:  req.Offer.LockTimeout,
			Timeout:      req.Offer.Timeout,
			LockStake:    req.Offer.LockStake,
		},
	}
}

// classifyLockError maps gas-estimation reverts onto the package error
// taxonomy. The contract's custom error names surface in the RPC error string.
func classifyLockError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "RequestIsLocked"):
		return fmt.Errorf("%w: %s", ErrAlreadyLocked, msg)
	case strings.Contains(msg, "RequestIsFulfilled"):
		return fmt.Errorf("%w: %s", ErrRequestFulfilled, msg)
	case strings.Contains(msg, "InsufficientBalance"):
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, msg)
	default:
		return fmt.Errorf("lock transaction failed: %w", err)
	}
}
