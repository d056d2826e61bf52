package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mintbay/marketplace/internal/domain"
	"github.com/mintbay/marketplace/internal/store/schema"
)

// Failure reasons recorded on FAILED orders
const (
	FailureReasonExpired    = "expired"
	FailureReasonReleased   = "released"
	FailureReasonSuperseded = "superseded"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// AutoMigrate creates or updates the database schema
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&schema.User{},
		&schema.Collection{},
		&schema.NFT{},
		&schema.Listing{},
		&schema.Order{},
		&schema.ActivityJournal{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// GORM cannot express partial indexes through tags. This backs the
	// one-active-listing-per-NFT rule at the database level so concurrent
	// CreateListing calls cannot both commit.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_listings_one_active_per_nft
		ON listings (nft_id) WHERE status = 'ACTIVE'`).Error
	if err != nil {
		return fmt.Errorf("failed to create partial unique index: %w", err)
	}

	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, reasonable defaults are used:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// Ping verifies database connectivity
func (s *pgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// appendJournal writes an activity journal entry inside the given transaction
func appendJournal(tx *gorm.DB, subjectType domain.JournalSubject, subjectID int64, action string, meta map[string]any) error {
	var metaJSON []byte
	if meta != nil {
		var err error
		metaJSON, err = json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to marshal journal meta: %w", err)
		}
	}

	entry := schema.ActivityJournal{
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Action:      action,
		ChangedAt:   time.Now(),
		Meta:        metaJSON,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	return nil
}

// GetOrCreateUser returns the user for a wallet address, creating it on first
// sight. The display name is only applied on creation; registering an existing
// wallet does not rename it.
func (s *pgStore) GetOrCreateUser(ctx context.Context, walletAddress, name string) (*schema.User, error) {
	user := schema.User{WalletAddress: walletAddress, Name: name}
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by its internal ID
func (s *pgStore) GetUserByID(ctx context.Context, id int64) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateCollection registers a deployed NFT contract
func (s *pgStore) CreateCollection(ctx context.Context, input CreateCollectionInput) (*schema.Collection, error) {
	collection := schema.Collection{
		Chain:           input.Chain,
		ContractAddress: input.ContractAddress,
		Name:            input.Name,
		Symbol:          input.Symbol,
	}
	err := s.db.WithContext(ctx).Create(&collection).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &collection, nil
}

// GetCollectionByID retrieves a collection by its internal ID
func (s *pgStore) GetCollectionByID(ctx context.Context, id int64) (*schema.Collection, error) {
	var collection schema.Collection
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &collection, nil
}

// ListCollections retrieves all collections, oldest first
func (s *pgStore) ListCollections(ctx context.Context) ([]schema.Collection, error) {
	var collections []schema.Collection
	err := s.db.WithContext(ctx).Order("id ASC").Find(&collections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

// FindOrCreateDefaultCollection returns the collection for a contract,
// creating it with the given identity on first sight
func (s *pgStore) FindOrCreateDefaultCollection(ctx context.Context, chain domain.Chain, contractAddress, name, symbol string) (*schema.Collection, error) {
	collection := schema.Collection{
		Chain:           chain,
		ContractAddress: contractAddress,
	}
	err := s.db.WithContext(ctx).
		Where("chain = ? AND contract_address = ?", string(chain), contractAddress).
		Attrs(schema.Collection{Name: name, Symbol: symbol}).
		FirstOrCreate(&collection).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create collection: %w", err)
	}
	return &collection, nil
}

// CreateNFT records a minted token
func (s *pgStore) CreateNFT(ctx context.Context, input CreateNFTInput) (*schema.NFT, error) {
	var nft schema.NFT
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection schema.Collection
		if err := tx.Where("id = ?", input.CollectionID).First(&collection).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to get collection: %w", err)
		}

		var owner schema.User
		if err := tx.Where("id = ?", input.OwnerID).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to get owner: %w", err)
		}

		nft = schema.NFT{
			CollectionID: input.CollectionID,
			TokenNumber:  input.TokenNumber,
			OwnerID:      input.OwnerID,
			Name:         input.Name,
			Description:  input.Description,
			ImageURL:     input.ImageURL,
			MintTxHash:   input.MintTxHash,
		}
		if err := tx.Create(&nft).Error; err != nil {
			return fmt.Errorf("failed to create nft: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &nft, nil
}

// GetNFTByID retrieves an NFT by its internal ID
func (s *pgStore) GetNFTByID(ctx context.Context, id int64) (*schema.NFT, error) {
	var nft schema.NFT
	err := s.db.WithContext(ctx).
		Preload("Collection").
		Preload("Owner").
		Where("id = ?", id).
		First(&nft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get nft: %w", err)
	}
	return &nft, nil
}

// ListNFTs retrieves NFTs matching the filter, newest first
func (s *pgStore) ListNFTs(ctx context.Context, filter NFTQueryFilter) ([]schema.NFT, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.NFT{})

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.CollectionID != nil {
		query = query.Where("collection_id = ?", *filter.CollectionID)
	}
	if filter.Chain != nil {
		query = query.
			Joins("JOIN collections ON collections.id = nfts.collection_id").
			Where("collections.chain = ?", *filter.Chain)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count nfts: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var nfts []schema.NFT
	err := query.
		Preload("Collection").
		Preload("Owner").
		Order("id DESC").
		Limit(limit).
		Offset(int(filter.Offset)). //nolint:gosec,G115
		Find(&nfts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list nfts: %w", err)
	}

	return nfts, uint64(total), nil //nolint:gosec,G115
}

// CreateListing creates an ACTIVE listing for an NFT owned by the seller
func (s *pgStore) CreateListing(ctx context.Context, input CreateListingInput) (*schema.Listing, error) {
	var listing schema.Listing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the NFT row so the ownership check and the listing insert see
		// a consistent view against concurrent confirmations.
		var nft schema.NFT
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.NFTID).
			First(&nft).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock nft: %w", err)
		}

		if nft.OwnerID != input.SellerID {
			return domain.ErrNotOwner
		}

		var activeCount int64
		err = tx.Model(&schema.Listing{}).
			Where("nft_id = ? AND status = ?", input.NFTID, domain.ListingStatusActive).
			Count(&activeCount).Error
		if err != nil {
			return fmt.Errorf("failed to check existing listings: %w", err)
		}
		if activeCount > 0 {
			return domain.ErrListingConflict
		}

		currency := input.Currency
		if currency == "" {
			currency = "ETH"
		}

		listing = schema.Listing{
			NFTID:    input.NFTID,
			SellerID: input.SellerID,
			PriceWei: input.PriceWei,
			Currency: currency,
			Status:   domain.ListingStatusActive,
		}
		if err := tx.Create(&listing).Error; err != nil {
			// The partial unique index catches the race the count check misses
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrListingConflict
			}
			return fmt.Errorf("failed to create listing: %w", err)
		}

		return appendJournal(tx, domain.JournalSubjectListing, listing.ID, "created", map[string]any{
			"nft_id":    listing.NFTID,
			"seller_id": listing.SellerID,
			"price_wei": listing.PriceWei,
		})
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListingByID retrieves a listing with its NFT and seller preloaded
func (s *pgStore) GetListingByID(ctx context.Context, id int64) (*schema.Listing, error) {
	var listing schema.Listing
	err := s.db.WithContext(ctx).
		Preload("NFT").
		Preload("NFT.Collection").
		Preload("Seller").
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// ListActiveListings retrieves ACTIVE listings matching the filter, newest first
func (s *pgStore) ListActiveListings(ctx context.Context, filter ListingQueryFilter) ([]schema.Listing, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Listing{}).
		Where("listings.status = ?", domain.ListingStatusActive)

	if filter.SellerID != nil {
		query = query.Where("listings.seller_id = ?", *filter.SellerID)
	}
	if filter.CollectionID != nil {
		query = query.
			Joins("JOIN nfts ON nfts.id = listings.nft_id").
			Where("nfts.collection_id = ?", *filter.CollectionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var listings []schema.Listing
	err := query.
		Preload("NFT").
		Preload("NFT.Collection").
		Preload("Seller").
		Order("listings.id DESC").
		Limit(limit).
		Offset(int(filter.Offset)). //nolint:gosec,G115
		Find(&listings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}

	return listings, uint64(total), nil //nolint:gosec,G115
}

// CancelListing cancels an ACTIVE, unreserved listing owned by the seller
func (s *pgStore) CancelListing(ctx context.Context, listingID int64, sellerID int64) (*schema.Listing, error) {
	var listing schema.Listing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", listingID).
			First(&listing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		if listing.SellerID != sellerID {
			return domain.ErrNotOwner
		}
		if listing.Status.Terminal() {
			return domain.ErrInvalidState
		}
		// A pending order holds the listing; the seller must wait for it to resolve
		if listing.ReservedOrderID != nil {
			return domain.ErrListingConflict
		}

		listing.Status = domain.ListingStatusCancelled
		listing.UpdatedAt = time.Now()
		if err := tx.Save(&listing).Error; err != nil {
			return fmt.Errorf("failed to cancel listing: %w", err)
		}

		return appendJournal(tx, domain.JournalSubjectListing, listing.ID, "cancelled", nil)
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// PlaceOrder creates a PENDING order and reserves the listing for it
func (s *pgStore) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*schema.Order, error) {
	var order schema.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the listing row. Concurrent orders against the same listing
		// serialize here; the loser of the race sees the reservation and fails.
		var listing schema.Listing
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.ListingID).
			First(&listing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		if listing.Status != domain.ListingStatusActive {
			return domain.ErrAlreadySold
		}
		if listing.ReservedOrderID != nil {
			return domain.ErrListingConflict
		}
		if listing.SellerID == input.BuyerID {
			return domain.ErrSelfPurchase
		}

		order = schema.Order{
			ListingID: listing.ID,
			BuyerID:   input.BuyerID,
			PriceWei:  listing.PriceWei,
			Currency:  listing.Currency,
			Status:    domain.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		listing.ReservedOrderID = &order.ID
		listing.UpdatedAt = time.Now()
		if err := tx.Save(&listing).Error; err != nil {
			return fmt.Errorf("failed to reserve listing: %w", err)
		}

		return appendJournal(tx, domain.JournalSubjectOrder, order.ID, "reserved", map[string]any{
			"listing_id": listing.ID,
			"buyer_id":   order.BuyerID,
			"price_wei":  order.PriceWei,
		})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByID retrieves an order with its listing preloaded
func (s *pgStore) GetOrderByID(ctx context.Context, id int64) (*schema.Order, error) {
	var order schema.Order
	err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Buyer").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ConfirmOrder settles a PENDING order atomically
func (s *pgStore) ConfirmOrder(ctx context.Context, orderID int64, txHash string) (*schema.Order, error) {
	var order schema.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock order first, then listing, then NFT. Every writer takes locks in
		// this order so confirmations and placements cannot deadlock.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		// Re-delivered confirmation of the same settlement is a no-op
		if order.Status == domain.OrderStatusConfirmed &&
			order.TxHash != nil && *order.TxHash == txHash {
			return nil
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrInvalidState
		}

		var listing schema.Listing
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", order.ListingID).
			First(&listing).Error
		if err != nil {
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		if listing.Status != domain.ListingStatusActive {
			return domain.ErrAlreadySold
		}
		if listing.ReservedOrderID == nil || *listing.ReservedOrderID != order.ID {
			return domain.ErrInvalidState
		}

		var nft schema.NFT
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", listing.NFTID).
			First(&nft).Error
		if err != nil {
			return fmt.Errorf("failed to lock nft: %w", err)
		}

		now := time.Now()

		order.Status = domain.OrderStatusConfirmed
		order.TxHash = &txHash
		order.ResolvedAt = &now
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to confirm order: %w", err)
		}

		listing.Status = domain.ListingStatusSold
		listing.ReservedOrderID = nil
		listing.UpdatedAt = now
		if err := tx.Save(&listing).Error; err != nil {
			return fmt.Errorf("failed to mark listing sold: %w", err)
		}

		nft.OwnerID = order.BuyerID
		nft.UpdatedAt = now
		if err := tx.Save(&nft).Error; err != nil {
			return fmt.Errorf("failed to transfer nft ownership: %w", err)
		}

		// The reservation should prevent sibling pending orders from existing,
		// but resolve any stragglers rather than leaving them dangling forever.
		err = tx.Model(&schema.Order{}).
			Where("listing_id = ? AND id != ? AND status = ?",
				listing.ID, order.ID, domain.OrderStatusPending).
			Updates(map[string]any{
				"status":         domain.OrderStatusFailed,
				"failure_reason": FailureReasonSuperseded,
				"resolved_at":    now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to fail sibling orders: %w", err)
		}

		if err := appendJournal(tx, domain.JournalSubjectOrder, order.ID, "confirmed", map[string]any{
			"listing_id": listing.ID,
			"tx_hash":    txHash,
		}); err != nil {
			return err
		}

		return appendJournal(tx, domain.JournalSubjectListing, listing.ID, "sold", map[string]any{
			"order_id":     order.ID,
			"buyer_id":     order.BuyerID,
			"new_owner_id": nft.OwnerID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FailOrder marks a PENDING order FAILED and releases its reservation
func (s *pgStore) FailOrder(ctx context.Context, orderID int64, reason string) (*schema.Order, error) {
	var order schema.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.failOrderLocked(tx, &order, orderID, reason)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// failOrderLocked fails one order inside an existing transaction,
// taking locks in the order -> listing order
func (s *pgStore) failOrderLocked(tx *gorm.DB, order *schema.Order, orderID int64, reason string) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to lock order: %w", err)
	}

	if order.Status != domain.OrderStatusPending {
		return domain.ErrInvalidState
	}

	var listing schema.Listing
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", order.ListingID).
		First(&listing).Error
	if err != nil {
		return fmt.Errorf("failed to lock listing: %w", err)
	}

	now := time.Now()

	order.Status = domain.OrderStatusFailed
	order.FailureReason = &reason
	order.ResolvedAt = &now
	if err := tx.Save(order).Error; err != nil {
		return fmt.Errorf("failed to fail order: %w", err)
	}

	if listing.ReservedOrderID != nil && *listing.ReservedOrderID == order.ID {
		listing.ReservedOrderID = nil
		listing.UpdatedAt = now
		if err := tx.Save(&listing).Error; err != nil {
			return fmt.Errorf("failed to release reservation: %w", err)
		}

		if err := appendJournal(tx, domain.JournalSubjectListing, listing.ID, "released", map[string]any{
			"order_id": order.ID,
		}); err != nil {
			return err
		}
	}

	return appendJournal(tx, domain.JournalSubjectOrder, order.ID, "failed", map[string]any{
		"reason": reason,
	})
}

// ListStaleOrderIDs returns IDs of PENDING orders created before the cutoff
func (s *pgStore) ListStaleOrderIDs(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 100
	}

	var staleIDs []int64
	err := s.db.WithContext(ctx).Model(&schema.Order{}).
		Where("status = ? AND created_at < ?", domain.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &staleIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale orders: %w", err)
	}
	return staleIDs, nil
}

// ExpireStaleOrders fails PENDING orders created before the cutoff
func (s *pgStore) ExpireStaleOrders(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	staleIDs, err := s.ListStaleOrderIDs(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}

	// Each order expires in its own transaction so one contested row cannot
	// hold locks across the whole batch.
	expired := make([]int64, 0, len(staleIDs))
	for _, id := range staleIDs {
		var order schema.Order
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.failOrderLocked(tx, &order, id, FailureReasonExpired)
		})
		if err != nil {
			// A concurrent confirmation may have resolved the order already
			if errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return expired, err
		}
		expired = append(expired, id)
	}

	return expired, nil
}

// ListJournal retrieves activity journal entries ordered by cursor
func (s *pgStore) ListJournal(ctx context.Context, filter JournalQueryFilter) ([]schema.ActivityJournal, error) {
	query := s.db.WithContext(ctx).Model(&schema.ActivityJournal{})

	if filter.SubjectType != nil {
		query = query.Where("subject_type = ?", string(*filter.SubjectType))
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.AfterCursor > 0 {
		query = query.Where(`"cursor" > ?`, filter.AfterCursor)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var entries []schema.ActivityJournal
	err := query.Order(`"cursor" ASC`).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}

	return entries, nil
}
