package ethereum

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mintbay/marketplace/internal/adapter"
)

// TestMarketClientAgainstNode runs against a live development node.
// Set TEST_ETH_RPC_URL (and TEST_NFT_ADDRESS from a bootstrap run) to enable.
func TestMarketClientAgainstNode(t *testing.T) {
	rpcURL := os.Getenv("TEST_ETH_RPC_URL")
	nftAddress := os.Getenv("TEST_NFT_ADDRESS")
	if rpcURL == "" || nftAddress == "" {
		t.Skip("TEST_ETH_RPC_URL and TEST_NFT_ADDRESS not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := adapter.NewEthClientDialer().Dial(ctx, rpcURL)
	require.NoError(t, err)
	defer conn.Close()

	client, err := NewMarketClient(ctx, conn, nftAddress, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)

	chainID, err := client.ChainID(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1337), chainID.Int64())

	result, err := client.Mint(ctx, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", "ipfs://integration")
	require.NoError(t, err)
	require.NotEmpty(t, result.TokenNumber)

	owner, err := client.OwnerOf(ctx, result.TokenNumber)
	require.NoError(t, err)
	require.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", owner)
}
