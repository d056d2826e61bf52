package deploy

import (
	"fmt"
	"path/filepath"

	"github.com/mintbay/marketplace/internal/adapter"
)

// Artifact file names under the artifacts directory
const (
	ArtifactNFTABI    = "NFT.json"
	ArtifactMarketABI = "Marketplace.json"
)

// ArtifactPublisher writes contract ABIs to the artifacts directory so other
// services can bind against the deployed contracts
type ArtifactPublisher struct {
	fs   adapter.FileSystem
	json adapter.JSON
	dir  string
}

// NewArtifactPublisher creates a publisher targeting the given directory
func NewArtifactPublisher(fs adapter.FileSystem, js adapter.JSON, dir string) *ArtifactPublisher {
	return &ArtifactPublisher{fs: fs, json: js, dir: dir}
}

// Publish writes both contract ABIs, creating the directory if needed
func (p *ArtifactPublisher) Publish() error {
	if err := p.fs.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	for contract, file := range map[string]string{
		ContractNFT:         ArtifactNFTABI,
		ContractMarketplace: ArtifactMarketABI,
	} {
		rawABI, err := RawABI(contract)
		if err != nil {
			return err
		}

		compact, err := p.json.Compact(rawABI)
		if err != nil {
			return fmt.Errorf("failed to compact ABI for %s: %w", contract, err)
		}
		compact = append(compact, '\n')

		path := filepath.Join(p.dir, file)
		if err := p.fs.WriteFile(path, compact, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}
