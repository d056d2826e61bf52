package deploy

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/mintbay/marketplace/internal/adapter"
	"github.com/mintbay/marketplace/internal/logger"
)

// Addresses holds the deployed contract addresses
type Addresses struct {
	NFT         common.Address
	Marketplace common.Address
}

// Deployer deploys the marketplace contracts to a chain
type Deployer struct {
	dialer adapter.EthClientDialer
	rpcURL string
	key    *ecdsa.PrivateKey
}

// NewDeployer creates a deployer that signs with the given private key
func NewDeployer(dialer adapter.EthClientDialer, rpcURL string, privateKeyHex string) (*Deployer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse deployer key: %w", err)
	}

	return &Deployer{
		dialer: dialer,
		rpcURL: rpcURL,
		key:    key,
	}, nil
}

// WaitForRPC blocks until the node answers a block number query or the
// retry budget runs out
func (d *Deployer) WaitForRPC(ctx context.Context, timeout time.Duration) error {
	operation := func() error {
		client, err := d.dialer.Dial(ctx, d.rpcURL)
		if err != nil {
			return err
		}
		defer client.Close()

		_, err = client.BlockNumber(ctx)
		return err
	}

	policy := backoff.WithContext(
		backoff.NewExponentialBackOff(backoff.WithMaxElapsedTime(timeout)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("rpc not ready at %s: %w", d.rpcURL, err)
	}

	return nil
}

// DeployAll deploys the NFT contract followed by the marketplace contract,
// verifying both against their chain ID and receipts
func (d *Deployer) DeployAll(ctx context.Context, nftName, nftSymbol string) (*Addresses, error) {
	client, err := d.dialer.Dial(ctx, d.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.rpcURL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	contracts, err := LoadCompiledContracts()
	if err != nil {
		return nil, err
	}

	nftAddr, err := d.deployContract(ctx, client, chainID, contracts[ContractNFT], nftName, nftSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", ContractNFT, err)
	}
	logger.InfoCtx(ctx, "Deployed NFT contract", zap.String("address", nftAddr.Hex()))

	marketAddr, err := d.deployContract(ctx, client, chainID, contracts[ContractMarketplace], nftAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", ContractMarketplace, err)
	}
	logger.InfoCtx(ctx, "Deployed marketplace contract", zap.String("address", marketAddr.Hex()))

	return &Addresses{NFT: nftAddr, Marketplace: marketAddr}, nil
}

func (d *Deployer) deployContract(ctx context.Context, client adapter.EthClient, chainID *big.Int, contract *CompiledContract, constructorArgs ...interface{}) (common.Address, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(d.key, chainID)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to create transactor: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = uint64(5_000_000)

	address, tx, _, err := bind.DeployContract(auth, contract.ABI, contract.Bytecode, client, constructorArgs...)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to send deployment: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to wait for deployment: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("deployment reverted with status %d", receipt.Status)
	}

	return address, nil
}
