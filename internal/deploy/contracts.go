package deploy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract names in the embedded build output
const (
	ContractNFT         = "MarketplaceNFT"
	ContractMarketplace = "Marketplace"
)

//go:embed compiled/contracts.json
var compiledContracts []byte

// CompiledContract is a contract ready to deploy: parsed ABI plus creation bytecode
type CompiledContract struct {
	ABI      abi.ABI
	Bytecode []byte
}

// LoadCompiledContracts parses the embedded build output produced by the
// contract compilation step
func LoadCompiledContracts() (map[string]*CompiledContract, error) {
	var raw map[string]struct {
		ABI      json.RawMessage `json:"abi"`
		Bytecode string          `json:"bytecode"`
	}
	if err := json.Unmarshal(compiledContracts, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse compiled contracts: %w", err)
	}

	contracts := make(map[string]*CompiledContract, len(raw))
	for name, contract := range raw {
		parsedABI, err := abi.JSON(strings.NewReader(string(contract.ABI)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
		}

		bytecode := common.Hex2Bytes(strings.TrimPrefix(contract.Bytecode, "0x"))
		if len(bytecode) == 0 {
			return nil, fmt.Errorf("empty bytecode for %s", name)
		}

		contracts[name] = &CompiledContract{
			ABI:      parsedABI,
			Bytecode: bytecode,
		}
	}

	for _, required := range []string{ContractNFT, ContractMarketplace} {
		if _, ok := contracts[required]; !ok {
			return nil, fmt.Errorf("compiled contracts missing %s", required)
		}
	}

	return contracts, nil
}

// RawABI returns the raw ABI JSON for a contract name from the embedded build
// output, for publishing as an artifact
func RawABI(name string) (json.RawMessage, error) {
	var raw map[string]struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(compiledContracts, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse compiled contracts: %w", err)
	}

	contract, ok := raw[name]
	if !ok {
		return nil, fmt.Errorf("compiled contracts missing %s", name)
	}

	return contract.ABI, nil
}
