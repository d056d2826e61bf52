package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mintbay/marketplace/internal/domain"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	// Check if we should use an external database (for CI or local development)
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")

	var dsn string
	var err error

	if dbHost != "" {
		// Use external database
		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			dbPassword = "postgres"
		}
		if dbName == "" {
			dbName = "test_db"
		}

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName)

		fmt.Printf("Using external database: %s:%s/%s\n", dbHost, dbPort, dbName)
	} else {
		// Start a PostgreSQL container for testing
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Started PostgreSQL container\n")
	}

	// Connect to the database
	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		if pgContainer != nil {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
		}
		os.Exit(1)
	}

	// Initialize the database schema
	if err := AutoMigrate(testDB); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		if pgContainer != nil {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
		}
		os.Exit(1)
	}

	// Run tests
	code := m.Run()

	// Cleanup
	if pgContainer != nil {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}

	os.Exit(code)
}

// initPGTestDB initializes a transaction-isolated store for each test
func initPGTestDB(t *testing.T) Store {
	tx := testDB.Begin()
	require.NotNil(t, tx)
	require.NoError(t, tx.Error)

	t.Cleanup(func() {
		tx.Rollback()
	})

	return NewPGStore(tx)
}

// TestPostgreSQLStore runs the shared store suite against PostgreSQL
func TestPostgreSQLStore(t *testing.T) {
	if testDB == nil {
		t.Fatal("Test database not initialized")
	}

	RunStoreTests(t, initPGTestDB)
}

// TestConcurrentPlaceOrder exercises the reservation race on real connections.
// Transaction-isolated stores share one connection, so this test runs against
// the pooled database and cleans up after itself.
func TestConcurrentPlaceOrder(t *testing.T) {
	if testDB == nil {
		t.Fatal("Test database not initialized")
	}

	ctx := context.Background()
	s := NewPGStore(testDB)

	seller, err := s.GetOrCreateUser(ctx, "0x1000000000000000000000000000000000000001", "Race Seller")
	require.NoError(t, err)
	collection, err := s.CreateCollection(ctx, CreateCollectionInput{
		Chain:           domain.ChainLocalDev,
		ContractAddress: "0x2000000000000000000000000000000000000002",
		Name:            "Race Collection",
		Symbol:          "RACE",
	})
	require.NoError(t, err)
	nft, err := s.CreateNFT(ctx, CreateNFTInput{
		CollectionID: collection.ID,
		TokenNumber:  "1",
		OwnerID:      seller.ID,
		Name:         "Contested Token",
	})
	require.NoError(t, err)
	listing, err := s.CreateListing(ctx, CreateListingInput{
		NFTID:    nft.ID,
		SellerID: seller.ID,
		PriceWei: "1000000000000000000",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		testDB.Exec("DELETE FROM activity_journal")
		testDB.Exec("DELETE FROM orders")
		testDB.Exec("DELETE FROM listings")
		testDB.Exec("DELETE FROM nfts")
		testDB.Exec("DELETE FROM collections")
		testDB.Exec("DELETE FROM users")
	})

	const buyers = 8
	buyerIDs := make([]int64, buyers)
	for i := range buyers {
		buyer, err := s.GetOrCreateUser(ctx, fmt.Sprintf("0x3%039d", i), fmt.Sprintf("Racer %d", i))
		require.NoError(t, err)
		buyerIDs[i] = buyer.ID
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i := range buyers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.PlaceOrder(ctx, PlaceOrderInput{
				ListingID: listing.ID,
				BuyerID:   buyerIDs[i],
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	// Exactly one buyer wins the reservation; every other attempt must see
	// the conflict.
	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, domain.ErrListingConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, buyers-1, conflicts)

	got, err := s.GetListingByID(ctx, listing.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReservedOrderID)
}
