package deploy

import (
	"fmt"
	"strings"

	"github.com/mintbay/marketplace/internal/domain"
)

// Markers delimiting the machine-readable env bundle in the bootstrap output.
// Tooling greps for these to extract the bundle from surrounding log lines.
const (
	EnvContentStart = "ENV_CONTENT_START"
	EnvContentEnd   = "ENV_CONTENT_END"
)

// EnvBundle holds everything a client needs to talk to a freshly
// bootstrapped deployment
type EnvBundle struct {
	ChainID    int64
	RPCURL     string
	NFTAddress string
	MarketAddr string

	// Pre-funded development identities. Only ever populated for
	// development chains.
	OwnerPrivateKey  string
	SellerPrivateKey string
	BuyerPrivateKey  string
}

// ErrDevKeysForbidden is returned when private keys would be emitted for a
// non-development chain
var ErrDevKeysForbidden = fmt.Errorf("refusing to emit private keys for a non-development chain")

// Render produces the env bundle wrapped in its start/end markers.
// Emitting keys requires both a development chain and the allowDevKeys gate;
// without keys the bundle still carries addresses and connectivity.
func (b *EnvBundle) Render(allowDevKeys bool) (string, error) {
	withKeys := b.OwnerPrivateKey != "" || b.SellerPrivateKey != "" || b.BuyerPrivateKey != ""
	if withKeys {
		if !domain.ChainFromID(b.ChainID).IsDevelopment() {
			return "", ErrDevKeysForbidden
		}
		if !allowDevKeys {
			withKeys = false
		}
	}

	var sb strings.Builder
	sb.WriteString(EnvContentStart + "\n")
	fmt.Fprintf(&sb, "CHAIN_ID=%d\n", b.ChainID)
	fmt.Fprintf(&sb, "RPC_URL=%s\n", b.RPCURL)
	fmt.Fprintf(&sb, "NFT_ADDRESS=%s\n", b.NFTAddress)
	fmt.Fprintf(&sb, "MARKET_ADDRESS=%s\n", b.MarketAddr)
	if withKeys {
		fmt.Fprintf(&sb, "OWNER_PRIVATE_KEY=%s\n", b.OwnerPrivateKey)
		fmt.Fprintf(&sb, "SELLER_PRIVATE_KEY=%s\n", b.SellerPrivateKey)
		fmt.Fprintf(&sb, "BUYER_PRIVATE_KEY=%s\n", b.BuyerPrivateKey)
	}
	sb.WriteString(EnvContentEnd + "\n")

	return sb.String(), nil
}

// ExtractEnvContent pulls the text between the env markers out of arbitrary
// bootstrap output. Returns an error when the markers are missing or inverted.
func ExtractEnvContent(output string) (string, error) {
	start := strings.Index(output, EnvContentStart)
	end := strings.Index(output, EnvContentEnd)
	if start < 0 || end < 0 || end < start {
		return "", fmt.Errorf("env markers not found in output")
	}

	content := output[start+len(EnvContentStart) : end]
	return strings.TrimSpace(content) + "\n", nil
}
