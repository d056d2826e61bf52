package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/store/schema"
)

// tradingFixture seeds a seller, a buyer, a collection, one NFT and one
// ACTIVE listing for that NFT
type tradingFixture struct {
	Seller  *schema.User
	Buyer   *schema.User
	NFT     *schema.NFT
	Listing *schema.Listing
}

func seedTradingFixture(t *testing.T, s Store, suffix string) *tradingFixture {
	ctx := context.Background()

	seller, err := s.GetOrCreateUser(ctx, fmt.Sprintf("0xseller-%s", suffix), "Seller")
	require.NoError(t, err)
	buyer, err := s.GetOrCreateUser(ctx, fmt.Sprintf("0xbuyer-%s", suffix), "Buyer")
	require.NoError(t, err)

	collection, err := s.CreateCollection(ctx, CreateCollectionInput{
		Chain:           domain.ChainLocalDev,
		ContractAddress: fmt.Sprintf("0xcontract-%s", suffix),
		Name:            "Test Collection",
		Symbol:          "TEST",
	})
	require.NoError(t, err)

	nft, err := s.CreateNFT(ctx, CreateNFTInput{
		CollectionID: collection.ID,
		TokenNumber:  "1",
		OwnerID:      seller.ID,
		Name:         "Test Token",
		Description:  "a token",
	})
	require.NoError(t, err)

	listing, err := s.CreateListing(ctx, CreateListingInput{
		NFTID:    nft.ID,
		SellerID: seller.ID,
		PriceWei: "1000000000000000000",
		Currency: "ETH",
	})
	require.NoError(t, err)

	return &tradingFixture{Seller: seller, Buyer: buyer, NFT: nft, Listing: listing}
}

// RunStoreTests runs the shared store test suite against any Store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("GetOrCreateUserIsIdempotent", func(t *testing.T) {
		s := initDB(t)

		first, err := s.GetOrCreateUser(ctx, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", "Alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", first.Name)

		second, err := s.GetOrCreateUser(ctx, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", "Mallory")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		// Re-registering a wallet does not rename the user
		assert.Equal(t, "Alice", second.Name)
	})

	t.Run("GetUserByIDNotFound", func(t *testing.T) {
		s := initDB(t)

		_, err := s.GetUserByID(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CreateListingRequiresOwnership", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "own")

		_, err := s.CreateListing(ctx, CreateListingInput{
			NFTID:    f.NFT.ID,
			SellerID: f.Buyer.ID, // buyer does not own the token
			PriceWei: "1",
		})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})

	t.Run("CreateListingRejectsSecondActive", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "dup")

		_, err := s.CreateListing(ctx, CreateListingInput{
			NFTID:    f.NFT.ID,
			SellerID: f.Seller.ID,
			PriceWei: "2000000000000000000",
		})
		assert.ErrorIs(t, err, domain.ErrListingConflict)
	})

	t.Run("CreateListingUnknownNFT", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "unk")

		_, err := s.CreateListing(ctx, CreateListingInput{
			NFTID:    999999,
			SellerID: f.Seller.ID,
			PriceWei: "1",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListActiveListingsExcludesResolved", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "lst")

		listings, total, err := s.ListActiveListings(ctx, ListingQueryFilter{})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, listings, 1)
		assert.Equal(t, f.Listing.ID, listings[0].ID)
		assert.Equal(t, f.NFT.ID, listings[0].NFT.ID)
		assert.Equal(t, f.Seller.WalletAddress, listings[0].Seller.WalletAddress)

		_, err = s.CancelListing(ctx, f.Listing.ID, f.Seller.ID)
		require.NoError(t, err)

		_, total, err = s.ListActiveListings(ctx, ListingQueryFilter{})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), total)
	})

	t.Run("HappyPathSale", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "hap")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{
			ListingID: f.Listing.ID,
			BuyerID:   f.Buyer.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.Equal(t, f.Listing.PriceWei, order.PriceWei)

		listing, err := s.GetListingByID(ctx, f.Listing.ID)
		require.NoError(t, err)
		require.NotNil(t, listing.ReservedOrderID)
		assert.Equal(t, order.ID, *listing.ReservedOrderID)

		confirmed, err := s.ConfirmOrder(ctx, order.ID, "0xdeadbeef")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, confirmed.Status)
		require.NotNil(t, confirmed.TxHash)
		assert.Equal(t, "0xdeadbeef", *confirmed.TxHash)
		require.NotNil(t, confirmed.ResolvedAt)

		listing, err = s.GetListingByID(ctx, f.Listing.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ListingStatusSold, listing.Status)
		assert.Nil(t, listing.ReservedOrderID)

		nft, err := s.GetNFTByID(ctx, f.NFT.ID)
		require.NoError(t, err)
		assert.Equal(t, f.Buyer.ID, nft.OwnerID)
	})

	t.Run("ReservationIsExclusive", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "exc")

		other, err := s.GetOrCreateUser(ctx, "0xother-exc", "Other")
		require.NoError(t, err)

		_, err = s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)

		_, err = s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: other.ID})
		assert.ErrorIs(t, err, domain.ErrListingConflict)
	})

	t.Run("PlaceOrderRejectsSelfPurchase", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "slf")

		_, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Seller.ID})
		assert.ErrorIs(t, err, domain.ErrSelfPurchase)
	})

	t.Run("PlaceOrderRejectsResolvedListing", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "res")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)
		_, err = s.ConfirmOrder(ctx, order.ID, "0x01")
		require.NoError(t, err)

		other, err := s.GetOrCreateUser(ctx, "0xother-res", "Other")
		require.NoError(t, err)
		_, err = s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: other.ID})
		assert.ErrorIs(t, err, domain.ErrAlreadySold)
	})

	t.Run("PlaceOrderUnknownListing", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "uol")

		_, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: 999999, BuyerID: f.Buyer.ID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ConfirmOrderIsIdempotentForSameTx", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "idm")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)

		_, err = s.ConfirmOrder(ctx, order.ID, "0xabc")
		require.NoError(t, err)

		// Same settlement delivered twice
		again, err := s.ConfirmOrder(ctx, order.ID, "0xabc")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, again.Status)

		// A different tx hash against a resolved order is a real conflict
		_, err = s.ConfirmOrder(ctx, order.ID, "0xother")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("OrderStatusIsMonotone", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "mon")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)

		failed, err := s.FailOrder(ctx, order.ID, FailureReasonReleased)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusFailed, failed.Status)

		// A failed order can never be confirmed
		_, err = s.ConfirmOrder(ctx, order.ID, "0xabc")
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		// Nor failed again
		_, err = s.FailOrder(ctx, order.ID, FailureReasonReleased)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("FailOrderReleasesReservation", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "rel")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)

		_, err = s.FailOrder(ctx, order.ID, FailureReasonReleased)
		require.NoError(t, err)

		listing, err := s.GetListingByID(ctx, f.Listing.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ListingStatusActive, listing.Status)
		assert.Nil(t, listing.ReservedOrderID)

		// Listing is orderable again
		other, err := s.GetOrCreateUser(ctx, "0xother-rel", "Other")
		require.NoError(t, err)
		_, err = s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: other.ID})
		require.NoError(t, err)
	})

	t.Run("CancelListingRules", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "cnl")

		// Only the seller can cancel
		_, err := s.CancelListing(ctx, f.Listing.ID, f.Buyer.ID)
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		// A reserved listing cannot be cancelled
		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)
		_, err = s.CancelListing(ctx, f.Listing.ID, f.Seller.ID)
		assert.ErrorIs(t, err, domain.ErrListingConflict)

		// Released again, cancellation succeeds
		_, err = s.FailOrder(ctx, order.ID, FailureReasonReleased)
		require.NoError(t, err)
		cancelled, err := s.CancelListing(ctx, f.Listing.ID, f.Seller.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ListingStatusCancelled, cancelled.Status)

		// Cancelling a terminal listing fails
		_, err = s.CancelListing(ctx, f.Listing.ID, f.Seller.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("RelistAfterSale", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "rls")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)
		_, err = s.ConfirmOrder(ctx, order.ID, "0x02")
		require.NoError(t, err)

		// The new owner can list; the previous owner cannot
		_, err = s.CreateListing(ctx, CreateListingInput{
			NFTID:    f.NFT.ID,
			SellerID: f.Seller.ID,
			PriceWei: "1",
		})
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		relisted, err := s.CreateListing(ctx, CreateListingInput{
			NFTID:    f.NFT.ID,
			SellerID: f.Buyer.ID,
			PriceWei: "2000000000000000000",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ListingStatusActive, relisted.Status)
	})

	t.Run("ExpireStaleOrders", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "exp")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)

		// Cutoff in the past leaves the fresh order alone
		expired, err := s.ExpireStaleOrders(ctx, time.Now().Add(-time.Hour), 100)
		require.NoError(t, err)
		assert.Empty(t, expired)

		// Cutoff in the future sweeps it
		expired, err = s.ExpireStaleOrders(ctx, time.Now().Add(time.Hour), 100)
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, order.ID, expired[0])

		got, err := s.GetOrderByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusFailed, got.Status)
		require.NotNil(t, got.FailureReason)
		assert.Equal(t, FailureReasonExpired, *got.FailureReason)

		listing, err := s.GetListingByID(ctx, f.Listing.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ListingStatusActive, listing.Status)
		assert.Nil(t, listing.ReservedOrderID)
	})

	t.Run("JournalRecordsTransitions", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "jnl")

		order, err := s.PlaceOrder(ctx, PlaceOrderInput{ListingID: f.Listing.ID, BuyerID: f.Buyer.ID})
		require.NoError(t, err)
		_, err = s.ConfirmOrder(ctx, order.ID, "0x03")
		require.NoError(t, err)

		subject := domain.JournalSubjectOrder
		entries, err := s.ListJournal(ctx, JournalQueryFilter{
			SubjectType: &subject,
			SubjectID:   &order.ID,
		})
		require.NoError(t, err)

		actions := make([]string, len(entries))
		for i, entry := range entries {
			actions[i] = entry.Action
		}
		assert.Equal(t, []string{"reserved", "confirmed"}, actions)
	})

	t.Run("ListCollections", func(t *testing.T) {
		s := initDB(t)
		seedTradingFixture(t, s, "col")

		collections, err := s.ListCollections(ctx)
		require.NoError(t, err)
		require.Len(t, collections, 1)
		assert.Equal(t, "Test Collection", collections[0].Name)
	})

	t.Run("FindOrCreateDefaultCollectionIsIdempotent", func(t *testing.T) {
		s := initDB(t)

		first, err := s.FindOrCreateDefaultCollection(ctx, domain.ChainLocalDev,
			"0x5fbdb2315678afecb367f032d93f642f64180aa3", "Marketplace NFT", "MKT")
		require.NoError(t, err)
		assert.Equal(t, "Marketplace NFT", first.Name)

		second, err := s.FindOrCreateDefaultCollection(ctx, domain.ChainLocalDev,
			"0x5fbdb2315678afecb367f032d93f642f64180aa3", "Marketplace NFT", "MKT")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		collections, err := s.ListCollections(ctx)
		require.NoError(t, err)
		assert.Len(t, collections, 1)
	})

	t.Run("ListNFTsFilterByOwner", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "nft")

		nfts, total, err := s.ListNFTs(ctx, NFTQueryFilter{OwnerID: &f.Seller.ID})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, nfts, 1)
		assert.Equal(t, f.NFT.ID, nfts[0].ID)

		nfts, total, err = s.ListNFTs(ctx, NFTQueryFilter{OwnerID: &f.Buyer.ID})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), total)
		assert.Empty(t, nfts)
	})

	t.Run("ListNFTsFilterByChain", func(t *testing.T) {
		s := initDB(t)
		f := seedTradingFixture(t, s, "chn")

		chain := domain.ChainLocalDev
		nfts, total, err := s.ListNFTs(ctx, NFTQueryFilter{Chain: &chain})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, nfts, 1)
		assert.Equal(t, f.NFT.ID, nfts[0].ID)

		other := domain.Chain("eip155:1")
		_, total, err = s.ListNFTs(ctx, NFTQueryFilter{Chain: &other})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), total)
	})
}
