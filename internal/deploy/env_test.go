package deploy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devBundle() EnvBundle {
	return EnvBundle{
		ChainID:          1337,
		RPCURL:           "http://localhost:8545",
		NFTAddress:       "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		MarketAddr:       "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
		OwnerPrivateKey:  "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		SellerPrivateKey: "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
		BuyerPrivateKey:  "0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
	}
}

func TestEnvBundleRender(t *testing.T) {
	bundle := devBundle()

	rendered, err := bundle.Render(true)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(rendered), "\n")
	assert.Equal(t, EnvContentStart, lines[0])
	assert.Equal(t, EnvContentEnd, lines[len(lines)-1])
	assert.Contains(t, rendered, "CHAIN_ID=1337\n")
	assert.Contains(t, rendered, "RPC_URL=http://localhost:8545\n")
	assert.Contains(t, rendered, "NFT_ADDRESS=0x5FbDB2315678afecb367f032d93F642f64180aa3\n")
	assert.Contains(t, rendered, "MARKET_ADDRESS=0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512\n")
	assert.Contains(t, rendered, "OWNER_PRIVATE_KEY=")
	assert.Contains(t, rendered, "SELLER_PRIVATE_KEY=")
	assert.Contains(t, rendered, "BUYER_PRIVATE_KEY=")
}

func TestEnvBundleRenderGateSuppressesKeys(t *testing.T) {
	bundle := devBundle()

	rendered, err := bundle.Render(false)
	require.NoError(t, err)

	assert.Contains(t, rendered, "NFT_ADDRESS=")
	assert.NotContains(t, rendered, "PRIVATE_KEY")
}

func TestEnvBundleRenderRefusesKeysOffDevelopmentChain(t *testing.T) {
	bundle := devBundle()
	bundle.ChainID = 1 // mainnet

	_, err := bundle.Render(true)
	assert.ErrorIs(t, err, ErrDevKeysForbidden)

	// Without keys the bundle renders fine on any chain
	bundle.OwnerPrivateKey = ""
	bundle.SellerPrivateKey = ""
	bundle.BuyerPrivateKey = ""
	rendered, err := bundle.Render(true)
	require.NoError(t, err)
	assert.Contains(t, rendered, "CHAIN_ID=1\n")
}

func TestExtractEnvContent(t *testing.T) {
	bundle := devBundle()
	rendered, err := bundle.Render(true)
	require.NoError(t, err)

	// Markers buried in log noise, like real bootstrap output
	output := "starting up...\nsome log line\n" + rendered + "done\n"

	content, err := ExtractEnvContent(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "CHAIN_ID=1337"))
	assert.NotContains(t, content, EnvContentStart)
	assert.NotContains(t, content, EnvContentEnd)

	_, err = ExtractEnvContent("no markers here")
	assert.Error(t, err)
}
