package deploy

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mintbay/marketplace/internal/adapter"
	"github.com/mintbay/marketplace/internal/config"
	"github.com/mintbay/marketplace/internal/logger"
)

// Default NFT collection identity for bootstrapped deployments
const (
	DefaultNFTName   = "Marketplace NFT"
	DefaultNFTSymbol = "MKT"

	rpcWaitTimeout = 2 * time.Minute
)

// Pipeline runs the full bootstrap sequence: wait for the node, deploy both
// contracts, publish ABI artifacts, and emit the env bundle.
type Pipeline struct {
	cfg    *config.BootstrapConfig
	dialer adapter.EthClientDialer
	fs     adapter.FileSystem
	out    io.Writer
}

// NewPipeline creates a bootstrap pipeline writing its env bundle to out
func NewPipeline(cfg *config.BootstrapConfig, dialer adapter.EthClientDialer, fs adapter.FileSystem, out io.Writer) *Pipeline {
	return &Pipeline{cfg: cfg, dialer: dialer, fs: fs, out: out}
}

// Run executes the pipeline end to end
func (p *Pipeline) Run(ctx context.Context) error {
	deployer, err := NewDeployer(p.dialer, p.cfg.Ethereum.RPCURL, p.cfg.Keys.OwnerPrivateKey)
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Waiting for RPC", zap.String("rpc_url", p.cfg.Ethereum.RPCURL))
	if err := deployer.WaitForRPC(ctx, rpcWaitTimeout); err != nil {
		return err
	}

	addresses, err := deployer.DeployAll(ctx, DefaultNFTName, DefaultNFTSymbol)
	if err != nil {
		return err
	}

	publisher := NewArtifactPublisher(p.fs, adapter.NewJSON(), p.cfg.ArtifactsDir)
	if err := publisher.Publish(); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Published ABI artifacts", zap.String("dir", p.cfg.ArtifactsDir))

	bundle := EnvBundle{
		ChainID:          p.cfg.Ethereum.ChainID,
		RPCURL:           p.cfg.Ethereum.RPCURL,
		NFTAddress:       addresses.NFT.Hex(),
		MarketAddr:       addresses.Marketplace.Hex(),
		OwnerPrivateKey:  p.cfg.Keys.OwnerPrivateKey,
		SellerPrivateKey: p.cfg.Keys.SellerPrivateKey,
		BuyerPrivateKey:  p.cfg.Keys.BuyerPrivateKey,
	}

	rendered, err := bundle.Render(p.cfg.AllowDevKeys)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(p.out, rendered); err != nil {
		return fmt.Errorf("failed to write env bundle: %w", err)
	}

	return nil
}
