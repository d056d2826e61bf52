// Command loadtest measures marketplace API behavior under contention.
//
// It seeds a set of listings through the API, then fires concurrent orders at
// them and reports how many succeeded, how many were rejected by the exclusive
// reservation, and the latency distribution. Exactly one order per listing
// should ever succeed, regardless of concurrency.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/mintbay/marketplace/internal/api/shared/dto"
	"github.com/mintbay/marketplace/internal/client"
)

type Config struct {
	BaseURL     string
	Listings    int // Listings to seed
	Buyers      int // Concurrent buyers per listing
	Concurrency int // Worker pool size
	Timeout     time.Duration
}

type result struct {
	listingID int64
	latency   time.Duration
	err       error
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	c := client.New(cfg.BaseURL, cfg.Timeout, 3)
	if _, err := c.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "API not reachable at %s: %v\n", cfg.BaseURL, err)
		os.Exit(1)
	}

	listingIDs, buyerIDs, err := seed(ctx, c, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d listings, %d buyers. Firing %d concurrent orders...\n",
		len(listingIDs), len(buyerIDs), len(listingIDs)*len(buyerIDs))

	results := fire(ctx, c, cfg, listingIDs, buyerIDs)
	report(listingIDs, results)
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "Marketplace API base URL")
	flag.IntVar(&cfg.Listings, "listings", 10, "Listings to seed")
	flag.IntVar(&cfg.Buyers, "buyers", 8, "Concurrent buyers per listing")
	flag.IntVar(&cfg.Concurrency, "concurrency", 32, "Worker pool size")
	flag.DurationVar(&cfg.Timeout, "timeout", 15*time.Second, "Per-request timeout")
	flag.Parse()
	return cfg
}

// seed registers one seller plus cfg.Buyers buyers, then mints and lists
// cfg.Listings NFTs
func seed(ctx context.Context, c *client.Client, cfg Config) (listingIDs, buyerIDs []int64, err error) {
	run := time.Now().UnixNano()

	seller, err := c.RegisterUser(ctx, syntheticAddress(run, 0), "Loadtest Seller")
	if err != nil {
		return nil, nil, fmt.Errorf("register seller: %w", err)
	}

	for i := 1; i <= cfg.Buyers; i++ {
		buyer, err := c.RegisterUser(ctx, syntheticAddress(run, i), fmt.Sprintf("Loadtest Buyer %d", i))
		if err != nil {
			return nil, nil, fmt.Errorf("register buyer %d: %w", i, err)
		}
		buyerIDs = append(buyerIDs, buyer.ID)
	}

	collection, err := c.CreateCollection(ctx, dto.CreateCollectionRequest{
		ChainID:         1337,
		ContractAddress: syntheticAddress(run, 9999),
		Name:            "Loadtest Collection",
		Symbol:          "LOAD",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create collection: %w", err)
	}

	for i := 0; i < cfg.Listings; i++ {
		nft, err := c.RegisterNFT(ctx, dto.MintNFTRequest{
			CollectionID: collection.ID,
			OwnerID:      seller.ID,
			Name:         fmt.Sprintf("Loadtest #%d", i),
			TokenNumber:  strconv.FormatInt(run+int64(i), 10),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("register nft %d: %w", i, err)
		}

		listing, err := c.CreateListing(ctx, dto.CreateListingRequest{
			NFTID:    nft.ID,
			SellerID: seller.ID,
			PriceWei: "1000000000000000000",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create listing %d: %w", i, err)
		}
		listingIDs = append(listingIDs, listing.ID)
	}

	return listingIDs, buyerIDs, nil
}

// fire submits every buyer against every listing through a bounded pool
func fire(ctx context.Context, c *client.Client, cfg Config, listingIDs, buyerIDs []int64) []result {
	var mu sync.Mutex
	var results []result

	pool := pond.NewPool(cfg.Concurrency, pond.WithContext(ctx))
	for _, listingID := range listingIDs {
		for _, buyerID := range buyerIDs {
			pool.Submit(func() {
				start := time.Now()
				_, err := c.PlaceOrder(ctx, listingID, buyerID)
				r := result{listingID: listingID, latency: time.Since(start), err: err}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			})
		}
	}
	pool.StopAndWait()

	return results
}

func report(listingIDs []int64, results []result) {
	succeeded := make(map[int64]int)
	var conflicts, failures int
	var latencies []time.Duration

	for _, r := range results {
		latencies = append(latencies, r.latency)
		if r.err == nil {
			succeeded[r.listingID]++
			continue
		}

		var apiErr *client.APIError
		if errors.As(r.err, &apiErr) && apiErr.Code == "conflict" {
			conflicts++
		} else {
			failures++
			fmt.Fprintf(os.Stderr, "unexpected error on listing %d: %v\n", r.listingID, r.err)
		}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Printf("\nOrders placed: %d\n", len(results))
	fmt.Printf("Reserved:      %d\n", len(succeeded))
	fmt.Printf("Conflicts:     %d\n", conflicts)
	fmt.Printf("Errors:        %d\n", failures)
	if len(latencies) > 0 {
		fmt.Printf("Latency p50/p95/max: %v / %v / %v\n",
			percentile(latencies, 50), percentile(latencies, 95), latencies[len(latencies)-1])
	}

	ok := true
	for _, id := range listingIDs {
		if succeeded[id] != 1 {
			ok = false
			fmt.Printf("VIOLATION: listing %d has %d successful orders\n", id, succeeded[id])
		}
	}
	if ok {
		fmt.Println("Reservation invariant held: exactly one successful order per listing")
	} else {
		os.Exit(1)
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// syntheticAddress derives a unique well-formed wallet address for this run
func syntheticAddress(run int64, n int) string {
	return fmt.Sprintf("0x%024x%016x", run, n)
}
