package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainFromID(t *testing.T) {
	assert.Equal(t, ChainLocalDev, ChainFromID(1337))
	assert.Equal(t, ChainEthereumMainnet, ChainFromID(1))
	assert.Equal(t, Chain("eip155:11155111"), ChainFromID(11155111))
}

func TestChainIsDevelopment(t *testing.T) {
	assert.True(t, ChainLocalDev.IsDevelopment())
	assert.False(t, ChainEthereumMainnet.IsDevelopment())
	assert.False(t, ChainEthereumSepolia.IsDevelopment())
}

func TestListingStatusTerminal(t *testing.T) {
	assert.False(t, ListingStatusActive.Terminal())
	assert.True(t, ListingStatusSold.Terminal())
	assert.True(t, ListingStatusCancelled.Terminal())
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusConfirmed.Terminal())
	assert.True(t, OrderStatusFailed.Terminal())
}

func TestIsEthereumAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"valid lowercase", "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", true},
		{"valid checksummed", "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true},
		{"missing prefix", "f39fd6e51aad88f6f4ce6ab8827279cfffb92266", false},
		{"too short", "0xf39fd6e51aad88f6", false},
		{"not hex", "0xzzzzd6e51aad88f6f4ce6ab8827279cfffb92266", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsEthereumAddress(tt.address))
		})
	}
}

func TestValidPriceWei(t *testing.T) {
	assert.True(t, ValidPriceWei("1"))
	assert.True(t, ValidPriceWei("1000000000000000000"))
	// values far beyond uint64 must still parse
	assert.True(t, ValidPriceWei("115792089237316195423570985008687907853269984665640564039457"))

	assert.False(t, ValidPriceWei("0"))
	assert.False(t, ValidPriceWei("-5"))
	assert.False(t, ValidPriceWei("1.5"))
	assert.False(t, ValidPriceWei("1e18"))
	assert.False(t, ValidPriceWei(""))
	assert.False(t, ValidPriceWei("0x10"))
}
