package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mintbay/marketplace/internal/api/shared/dto"
	"github.com/mintbay/marketplace/internal/client"
	"github.com/mintbay/marketplace/internal/config"
	"github.com/mintbay/marketplace/internal/logger"
)

// Hardhat's default funded accounts
const (
	defaultSellerAddress = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	defaultBuyerAddress  = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	defaultNFTAddress    = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

var (
	configFile string
	envPath    string

	sellerAddress string
	buyerAddress  string
	nftAddress    string
	priceWei      string
	tokenNumber   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "trader",
		Short:        "Exercise the marketplace API from the command line",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "config/", "Path to environment files")

	scenarioCmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run the full trading happy path: register, mint, list, order, confirm",
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&sellerAddress, "seller-address", defaultSellerAddress, "Seller wallet address")
	scenarioCmd.Flags().StringVar(&buyerAddress, "buyer-address", defaultBuyerAddress, "Buyer wallet address")
	scenarioCmd.Flags().StringVar(&nftAddress, "nft-address", defaultNFTAddress, "Deployed NFT contract address")
	scenarioCmd.Flags().StringVar(&priceWei, "price-wei", "1000000000000000000", "Listing price in wei")
	scenarioCmd.Flags().StringVar(&tokenNumber, "token-number", "", "Token number to mint (only used when the API has no chain connectivity)")

	listingsCmd := &cobra.Command{
		Use:   "listings",
		Short: "List active listings",
		RunE:  runListings,
	}

	changesCmd := &cobra.Command{
		Use:   "changes [anchor]",
		Short: "Show activity journal entries after the given anchor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runChanges,
	}

	rootCmd.AddCommand(scenarioCmd, listingsCmd, changesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, initializes logging, and returns an API client
func setup(ctx context.Context) (*client.Client, error) {
	config.ChdirRepoRoot()
	cfg, err := config.LoadTraderConfig(configFile, envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "trader",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c := client.New(cfg.APIBaseURL, cfg.Timeout, cfg.MaxRetries)
	if _, err := c.Health(ctx); err != nil {
		return nil, fmt.Errorf("marketplace API is not reachable at %s: %w", cfg.APIBaseURL, err)
	}
	return c, nil
}

// runScenario drives a complete sale through the API
func runScenario(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Flush(2 * time.Second)

	// Register the two parties
	seller, err := c.RegisterUser(ctx, sellerAddress, "Trader Seller")
	if err != nil {
		return fmt.Errorf("failed to register seller: %w", err)
	}
	buyer, err := c.RegisterUser(ctx, buyerAddress, "Trader Buyer")
	if err != nil {
		return fmt.Errorf("failed to register buyer: %w", err)
	}
	logger.InfoCtx(ctx, "Registered users",
		zap.Int64("seller_id", seller.ID),
		zap.Int64("buyer_id", buyer.ID),
	)

	// Register the NFT contract as a collection
	collection, err := c.CreateCollection(ctx, dto.CreateCollectionRequest{
		ChainID:         1337,
		ContractAddress: nftAddress,
		Name:            "Marketplace NFT",
		Symbol:          "MKT",
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Register a token for the seller. The register path needs no chain
	// connectivity, so fall back to a random token number when none is given.
	number := tokenNumber
	if number == "" {
		number = strconv.Itoa(rand.Intn(1_000_000)) //nolint:gosec,G404
	}
	nft, err := c.RegisterNFT(ctx, dto.MintNFTRequest{
		CollectionID: collection.ID,
		OwnerID:      seller.ID,
		Name:         fmt.Sprintf("Trader Demo #%s", number),
		Description:  "Minted by the trader scenario",
		ImageURL:     "ipfs://trader-demo",
		TokenNumber:  number,
	})
	if err != nil {
		return fmt.Errorf("failed to mint NFT: %w", err)
	}
	logger.InfoCtx(ctx, "Minted NFT",
		zap.Int64("nft_id", nft.ID),
		zap.String("token_id", nft.TokenNumber),
	)

	// List it
	listing, err := c.CreateListing(ctx, dto.CreateListingRequest{
		NFTID:    nft.ID,
		SellerID: seller.ID,
		PriceWei: priceWei,
	})
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	logger.InfoCtx(ctx, "Created listing",
		zap.Int64("listing_id", listing.ID),
		zap.String("price_wei", listing.PriceWei),
	)

	// Buy it
	order, err := c.PlaceOrder(ctx, listing.ID, buyer.ID)
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}
	logger.InfoCtx(ctx, "Placed order", zap.Int64("order_id", order.ID))

	// Settle with a synthetic tx hash; against a live chain this would be the
	// hash of the buyer's marketplace buy transaction
	txHash := "0x" + uuid.NewString()
	confirmed, err := c.ConfirmOrder(ctx, order.ID, txHash)
	if err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}
	logger.InfoCtx(ctx, "Confirmed order",
		zap.Int64("order_id", confirmed.ID),
		zap.String("status", string(confirmed.Status)),
		zap.String("tx_hash", txHash),
	)

	// The NFT should now belong to the buyer
	sold, err := c.GetNFT(ctx, nft.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch NFT after sale: %w", err)
	}
	if sold.OwnerID != buyer.ID {
		return fmt.Errorf("expected NFT owner %d after sale, got %d", buyer.ID, sold.OwnerID)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sale complete: NFT %d transferred from user %d to user %d for %s wei\n",
		nft.ID, seller.ID, buyer.ID, listing.PriceWei)
	return nil
}

// runListings prints the active listings
func runListings(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Flush(2 * time.Second)

	listings, err := c.ListListings(ctx, nil, 50, 0)
	if err != nil {
		return fmt.Errorf("failed to list listings: %w", err)
	}

	if len(listings.Listings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No active listings")
		return nil
	}
	for _, l := range listings.Listings {
		fmt.Fprintf(cmd.OutOrStdout(), "listing %d: nft %d at %s %s (seller %d)\n",
			l.ID, l.NFTID, l.PriceWei, l.Currency, l.SellerID)
	}
	return nil
}

// runChanges tails the activity journal
func runChanges(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var anchor int64
	if len(args) == 1 {
		var err error
		anchor, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid anchor %q: %w", args[0], err)
		}
	}

	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Flush(2 * time.Second)

	journal, err := c.GetChanges(ctx, anchor, 100)
	if err != nil {
		return fmt.Errorf("failed to get changes: %w", err)
	}

	for _, e := range journal.Entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s %d\t%s\t%s\n",
			e.Cursor, e.SubjectType, e.SubjectID, e.Action, e.ChangedAt.Format(time.RFC3339))
	}
	return nil
}
