package executor

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintbay/marketplace/internal/api/shared/dto"
	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/providers/ethereum"
	"github.com/mintbay/marketplace/internal/store"
	"github.com/mintbay/marketplace/internal/store/schema"
)

// nftStore stubs the store methods the NFT paths touch. Everything else
// panics through the embedded interface.
type nftStore struct {
	store.Store

	users       map[int64]*schema.User
	defaultColl *schema.Collection

	created     *store.CreateNFTInput
	defaultArgs []string
}

func (s *nftStore) GetUserByID(_ context.Context, id int64) (*schema.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *nftStore) CreateNFT(_ context.Context, input store.CreateNFTInput) (*schema.NFT, error) {
	s.created = &input
	return &schema.NFT{
		ID:           1,
		CollectionID: input.CollectionID,
		TokenNumber:  input.TokenNumber,
		OwnerID:      input.OwnerID,
		Name:         input.Name,
		MintTxHash:   input.MintTxHash,
	}, nil
}

func (s *nftStore) FindOrCreateDefaultCollection(_ context.Context, chain domain.Chain, contractAddress, name, symbol string) (*schema.Collection, error) {
	s.defaultArgs = []string{string(chain), contractAddress, name, symbol}
	return s.defaultColl, nil
}

// fakeMarket mints deterministic tokens without touching a chain
type fakeMarket struct {
	tokenNumber string
	txHash      string
	nftAddr     string
	minted      int
}

func (m *fakeMarket) Mint(_ context.Context, _ string, _ string) (*ethereum.MintResult, error) {
	m.minted++
	return &ethereum.MintResult{TokenNumber: m.tokenNumber, TxHash: m.txHash}, nil
}

func (m *fakeMarket) OwnerOf(_ context.Context, _ string) (string, error)  { return "", nil }
func (m *fakeMarket) TokenURI(_ context.Context, _ string) (string, error) { return "", nil }
func (m *fakeMarket) ChainID(_ context.Context) (*big.Int, error)          { return big.NewInt(1337), nil }
func (m *fakeMarket) NFTAddress() string                                   { return m.nftAddr }
func (m *fakeMarket) Close()                                               {}

func newNFTStore() *nftStore {
	return &nftStore{
		users: map[int64]*schema.User{
			2: {ID: 2, WalletAddress: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"},
		},
		defaultColl: &schema.Collection{ID: 9, Name: "Marketplace NFT", Symbol: "MKT"},
	}
}

func TestRegisterNFT(t *testing.T) {
	s := newNFTStore()
	exec := NewExecutor(s, nil)

	nft, err := exec.RegisterNFT(context.Background(), dto.MintNFTRequest{
		CollectionID: 3,
		OwnerID:      2,
		Name:         "Genesis #7",
		TokenNumber:  "7",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", nft.TokenNumber)
	assert.Equal(t, int64(3), nft.CollectionID)
	assert.Nil(t, nft.MintTxHash)
}

func TestRegisterNFTRequiresTokenNumber(t *testing.T) {
	exec := NewExecutor(newNFTStore(), nil)

	_, err := exec.RegisterNFT(context.Background(), dto.MintNFTRequest{
		CollectionID: 3,
		OwnerID:      2,
		Name:         "Genesis #7",
	})
	assert.ErrorIs(t, err, ErrTokenNumberRequired)
}

func TestRegisterNFTRequiresCollection(t *testing.T) {
	exec := NewExecutor(newNFTStore(), nil)

	_, err := exec.RegisterNFT(context.Background(), dto.MintNFTRequest{
		OwnerID:     2,
		Name:        "Genesis #7",
		TokenNumber: "7",
	})
	assert.ErrorIs(t, err, ErrCollectionRequired)
}

func TestRegisterNFTUnknownOwner(t *testing.T) {
	exec := NewExecutor(newNFTStore(), nil)

	_, err := exec.RegisterNFT(context.Background(), dto.MintNFTRequest{
		CollectionID: 3,
		OwnerID:      99,
		Name:         "Genesis #7",
		TokenNumber:  "7",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMintNFTWithoutMarket(t *testing.T) {
	exec := NewExecutor(newNFTStore(), nil)

	_, err := exec.MintNFT(context.Background(), dto.MintNFTRequest{
		OwnerID: 2,
		Name:    "Genesis #8",
	})
	assert.ErrorIs(t, err, ErrChainUnavailable)
}

func TestMintNFTUsesContractTokenNumber(t *testing.T) {
	s := newNFTStore()
	market := &fakeMarket{tokenNumber: "42", txHash: "0xmint", nftAddr: "0x5FbDB2315678afecb367f032d93F642f64180aa3"}
	exec := NewExecutor(s, market)

	nft, err := exec.MintNFT(context.Background(), dto.MintNFTRequest{
		CollectionID: 3,
		OwnerID:      2,
		Name:         "Genesis #42",
		TokenNumber:  "999", // caller-supplied numbers are ignored on the mint path
	})
	require.NoError(t, err)
	assert.Equal(t, 1, market.minted)
	assert.Equal(t, "42", nft.TokenNumber)
	assert.Equal(t, int64(3), nft.CollectionID)
	require.NotNil(t, nft.MintTxHash)
	assert.Equal(t, "0xmint", *nft.MintTxHash)
}

func TestMintNFTResolvesDefaultCollection(t *testing.T) {
	s := newNFTStore()
	market := &fakeMarket{tokenNumber: "1", txHash: "0xmint", nftAddr: "0x5FbDB2315678afecb367f032d93F642f64180aa3"}
	exec := NewExecutor(s, market)

	nft, err := exec.MintNFT(context.Background(), dto.MintNFTRequest{
		OwnerID: 2,
		Name:    "Genesis #1",
	})
	require.NoError(t, err)
	assert.Equal(t, s.defaultColl.ID, nft.CollectionID)

	// Keyed on chain + lowercased contract address
	require.Len(t, s.defaultArgs, 4)
	assert.Equal(t, string(domain.ChainFromID(1337)), s.defaultArgs[0])
	assert.Equal(t, "0x5fbdb2315678afecb367f032d93f642f64180aa3", s.defaultArgs[1])
}
