package shared

import (
	"context"
	"time"

	"aurelia-commerce/internal/domain/authtoken"
	"aurelia-commerce/internal/domain/cart"
	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/domain/order"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: write transaction with bounded retry on transient conflicts
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads: direct access to command reads outside any transaction
	Reads() CommandReads
}

type Tx interface {
	Products() ProductRepository
	Stock() StockRepository
	Orders() OrderRepository
	Carts() CartRepository
	RefreshTokens() RefreshTokenRepository
	Users() UserRepository
	Notifications() NotificationRepository
	Reads() CommandReads
}

// CommandReads serves write-path validation reads. Implementations bound to
// a transaction see that transaction's state.
type CommandReads interface {
	ProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	CartForOwner(ctx context.Context, owner CartOwner) (*cart.Cart, error)
	OrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	OrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*order.Order, error)
	RefreshTokenByHash(ctx context.Context, hash string) (*authtoken.Token, error)
	UserByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	UserByEmail(ctx context.Context, email string) (*UserSnapshot, error)
}

// StockRepository mutates the ledger through conditional atomic updates.
// Every method returning level pairs reports the counters before and after
// the update so the caller can append a consistent inventory log entry.
type StockRepository interface {
	// Reserve fails with catalog.InsufficientStockError when availability is
	// short and backorder is disallowed.
	Reserve(ctx context.Context, productID uuid.UUID, qty int) (prev, next StockLevels, err error)
	// Release floors reservedQuantity at zero; over-release is not an error.
	Release(ctx context.Context, productID uuid.UUID, qty int) (prev, next StockLevels, err error)
	// CommitSale releases the hold and decrements on-hand in one update.
	CommitSale(ctx context.Context, productID uuid.UUID, qty int) (prev, next StockLevels, err error)
	Restock(ctx context.Context, productID uuid.UUID, qty int) (prev, next StockLevels, err error)
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (prev, next StockLevels, err error)
	// Return restores on-hand after a cancellation.
	Return(ctx context.Context, productID uuid.UUID, qty int) (prev, next StockLevels, err error)
	AppendLog(ctx context.Context, entry *catalog.InventoryLog) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	UpdateStatus(ctx context.Context, o *order.Order) error
}

type CartRepository interface {
	// Save upserts the cart row and replaces its lines wholesale.
	Save(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ExpiredCarts pages ripe guest carts for the reaper, oldest first.
	ExpiredCarts(ctx context.Context, now time.Time, limit int32) ([]*cart.Cart, error)
}

type RefreshTokenRepository interface {
	Insert(ctx context.Context, t *authtoken.Token) error
	// MarkReplaced revokes the old token and links it to its successor.
	MarkReplaced(ctx context.Context, oldID, newID uuid.UUID, usedAt time.Time) error
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeFamily(ctx context.Context, familyID uuid.UUID) (int64, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, params NewUser) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *catalog.Product) error
	Update(ctx context.Context, p *catalog.Product) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}
