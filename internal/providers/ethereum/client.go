package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mintbay/marketplace/internal/adapter"
	"github.com/mintbay/marketplace/internal/deploy"
)

// MintResult describes a completed on-chain mint
type MintResult struct {
	TokenNumber string
	TxHash      string
}

// Market is the marketplace's view of the chain: minting through the NFT
// contract and reading token state back
type Market interface {
	// Mint mints a token to the given address and returns the token number
	// assigned by the contract
	Mint(ctx context.Context, toAddress string, tokenURI string) (*MintResult, error)

	// OwnerOf returns the on-chain owner of a token
	OwnerOf(ctx context.Context, tokenNumber string) (string, error)

	// TokenURI returns the metadata URI of a token
	TokenURI(ctx context.Context, tokenNumber string) (string, error)

	// ChainID returns the connected chain's ID
	ChainID(ctx context.Context) (*big.Int, error)

	// NFTAddress returns the bound NFT contract address
	NFTAddress() string

	// Close closes the underlying connection
	Close()
}

type marketClient struct {
	client  adapter.EthClient
	nft     *bind.BoundContract
	nftABI  abi.ABI
	nftAddr common.Address
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

// NewMarketClient binds the deployed NFT contract on an established connection.
// The private key signs mint transactions; it must belong to the contract owner.
func NewMarketClient(ctx context.Context, client adapter.EthClient, nftAddress string, ownerKeyHex string) (Market, error) {
	if !common.IsHexAddress(nftAddress) {
		return nil, fmt.Errorf("invalid nft contract address: %s", nftAddress)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(ownerKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse owner key: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	contracts, err := deploy.LoadCompiledContracts()
	if err != nil {
		return nil, err
	}
	nftABI := contracts[deploy.ContractNFT].ABI

	addr := common.HexToAddress(nftAddress)
	bound := bind.NewBoundContract(addr, nftABI, client, client, client)

	return &marketClient{
		client:  client,
		nft:     bound,
		nftABI:  nftABI,
		nftAddr: addr,
		key:     key,
		chainID: chainID,
	}, nil
}

// Mint mints a token to the given address
func (c *marketClient) Mint(ctx context.Context, toAddress string, tokenURI string) (*MintResult, error) {
	if !common.IsHexAddress(toAddress) {
		return nil, fmt.Errorf("invalid recipient address: %s", toAddress)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = uint64(500_000)

	tx, err := c.nft.Transact(opts, "mint", common.HexToAddress(toAddress), tokenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to send mint: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for mint: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("mint reverted with status %d", receipt.Status)
	}

	tokenNumber, err := c.mintedTokenNumber(receipt)
	if err != nil {
		return nil, err
	}

	return &MintResult{
		TokenNumber: tokenNumber,
		TxHash:      tx.Hash().Hex(),
	}, nil
}

// mintedTokenNumber extracts the token number from the Minted event in the receipt
func (c *marketClient) mintedTokenNumber(receipt *types.Receipt) (string, error) {
	mintedSig := c.nftABI.Events["Minted"].ID

	for _, vLog := range receipt.Logs {
		if vLog.Address != c.nftAddr || len(vLog.Topics) < 3 {
			continue
		}
		if vLog.Topics[0] != mintedSig {
			continue
		}
		// tokenId is the second indexed argument
		tokenID := new(big.Int).SetBytes(vLog.Topics[2].Bytes())
		return tokenID.String(), nil
	}

	return "", fmt.Errorf("mint receipt missing Minted event")
}

// OwnerOf returns the on-chain owner of a token
func (c *marketClient) OwnerOf(ctx context.Context, tokenNumber string) (string, error) {
	tokenID, ok := new(big.Int).SetString(tokenNumber, 10)
	if !ok {
		return "", fmt.Errorf("invalid token number: %s", tokenNumber)
	}

	var out []interface{}
	err := c.nft.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenID)
	if err != nil {
		return "", fmt.Errorf("failed to call ownerOf: %w", err)
	}
	if len(out) != 1 {
		return "", fmt.Errorf("unexpected ownerOf output length %d", len(out))
	}

	owner, ok := out[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("unexpected ownerOf output type %T", out[0])
	}

	return owner.Hex(), nil
}

// TokenURI returns the metadata URI of a token
func (c *marketClient) TokenURI(ctx context.Context, tokenNumber string) (string, error) {
	tokenID, ok := new(big.Int).SetString(tokenNumber, 10)
	if !ok {
		return "", fmt.Errorf("invalid token number: %s", tokenNumber)
	}

	var out []interface{}
	err := c.nft.Call(&bind.CallOpts{Context: ctx}, &out, "tokenURI", tokenID)
	if err != nil {
		return "", fmt.Errorf("failed to call tokenURI: %w", err)
	}
	if len(out) != 1 {
		return "", fmt.Errorf("unexpected tokenURI output length %d", len(out))
	}

	uri, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected tokenURI output type %T", out[0])
	}

	return uri, nil
}

// ChainID returns the connected chain's ID
func (c *marketClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.client.ChainID(ctx)
}

// NFTAddress returns the bound NFT contract address
func (c *marketClient) NFTAddress() string {
	return c.nftAddr.Hex()
}

// Close closes the underlying connection
func (c *marketClient) Close() {
	c.client.Close()
}
