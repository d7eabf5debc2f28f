//go:build unit

package commands_test

import (
	"context"
	"time"

	"aurelia-commerce/internal/domain/authtoken"
	"aurelia-commerce/internal/domain/cart"
	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/domain/order"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeUoW backs the command tests with maps instead of Postgres. Reads hand
// out copies and writes store copies, so command code mutating an aggregate
// before a failed save cannot leak state between test steps.
type fakeUoW struct {
	products map[uuid.UUID]*catalog.Product
	carts    map[uuid.UUID]*cart.Cart
	orders   map[uuid.UUID]*order.Order
	tokens   map[uuid.UUID]*authtoken.Token
	users    map[uuid.UUID]*shared.UserSnapshot
	logs     []*catalog.InventoryLog
	jobs     []fakeJob
}

type fakeJob struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{
		products: map[uuid.UUID]*catalog.Product{},
		carts:    map[uuid.UUID]*cart.Cart{},
		orders:   map[uuid.UUID]*order.Order{},
		tokens:   map[uuid.UUID]*authtoken.Token{},
		users:    map[uuid.UUID]*shared.UserSnapshot{},
	}
}

// Within mirrors the real unit of work: an error from fn rolls every write
// of the attempt back.
func (f *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	snap := f.snapshot()
	if err := fn(ctx, &fakeTx{f}); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeUoW) snapshot() *fakeUoW {
	snap := newFakeUoW()
	for id, p := range f.products {
		cp := *p
		snap.products[id] = &cp
	}
	for id, c := range f.carts {
		snap.carts[id] = copyCart(c)
	}
	for id, o := range f.orders {
		snap.orders[id] = copyOrder(o)
	}
	for id, tok := range f.tokens {
		cp := *tok
		snap.tokens[id] = &cp
	}
	for id, u := range f.users {
		cp := *u
		snap.users[id] = &cp
	}
	snap.logs = append([]*catalog.InventoryLog(nil), f.logs...)
	snap.jobs = append([]fakeJob(nil), f.jobs...)
	return snap
}

func (f *fakeUoW) restore(snap *fakeUoW) {
	f.products = snap.products
	f.carts = snap.carts
	f.orders = snap.orders
	f.tokens = snap.tokens
	f.users = snap.users
	f.logs = snap.logs
	f.jobs = snap.jobs
}

func (f *fakeUoW) Reads() shared.CommandReads { return &fakeReads{f} }

// --- seeding helpers ---

func (f *fakeUoW) addProduct(p catalog.Product) *catalog.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := p
	f.products[stored.ID] = &stored
	return &stored
}

func (f *fakeUoW) addCart(c *cart.Cart) {
	f.carts[c.ID] = copyCart(c)
}

func (f *fakeUoW) addOrder(o *order.Order) {
	f.orders[o.ID] = copyOrder(o)
}

func (f *fakeUoW) addToken(t *authtoken.Token) {
	stored := *t
	f.tokens[stored.ID] = &stored
}

func (f *fakeUoW) addUser(u shared.UserSnapshot) {
	stored := u
	f.users[stored.ID] = &stored
}

func (f *fakeUoW) cartForOwner(owner shared.CartOwner) *cart.Cart {
	for _, c := range f.carts {
		if owner.UserID != nil && c.UserID != nil && *c.UserID == *owner.UserID {
			return c
		}
		if owner.SessionID != nil && c.SessionID != nil && *c.SessionID == *owner.SessionID {
			return c
		}
	}
	return nil
}

func (f *fakeUoW) tokenByID(id uuid.UUID) *authtoken.Token {
	return f.tokens[id]
}

func (f *fakeUoW) logsOfType(t catalog.LogType) []*catalog.InventoryLog {
	var out []*catalog.InventoryLog
	for _, l := range f.logs {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}

// --- copies ---

func copyCart(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	return &cp
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	return &cp
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func duplicateKey(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindDuplicateKey)
}

// --- reads ---

type fakeReads struct{ f *fakeUoW }

func (r *fakeReads) ProductByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.f.products[id]
	if !ok {
		return nil, notFound("product not found")
	}
	cp := *p
	return &cp, nil
}

func (r *fakeReads) CartForOwner(_ context.Context, owner shared.CartOwner) (*cart.Cart, error) {
	c := r.f.cartForOwner(owner)
	if c == nil {
		return nil, notFound("cart not found")
	}
	return copyCart(c), nil
}

func (r *fakeReads) OrderByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.f.orders[id]
	if !ok {
		return nil, notFound("order not found")
	}
	return copyOrder(o), nil
}

func (r *fakeReads) OrderByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*order.Order, error) {
	for _, o := range r.f.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return copyOrder(o), nil
		}
	}
	return nil, notFound("order not found")
}

func (r *fakeReads) RefreshTokenByHash(_ context.Context, hash string) (*authtoken.Token, error) {
	for _, t := range r.f.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, notFound("refresh token not found")
}

func (r *fakeReads) UserByID(_ context.Context, id uuid.UUID) (*shared.UserSnapshot, error) {
	u, ok := r.f.users[id]
	if !ok {
		return nil, notFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeReads) UserByEmail(_ context.Context, email string) (*shared.UserSnapshot, error) {
	for _, u := range r.f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user not found")
}

// --- tx ---

type fakeTx struct{ f *fakeUoW }

func (t *fakeTx) Products() shared.ProductRepository           { return &fakeProducts{t.f} }
func (t *fakeTx) Stock() shared.StockRepository                { return &fakeStock{t.f} }
func (t *fakeTx) Orders() shared.OrderRepository               { return &fakeOrders{t.f} }
func (t *fakeTx) Carts() shared.CartRepository                 { return &fakeCarts{t.f} }
func (t *fakeTx) RefreshTokens() shared.RefreshTokenRepository { return &fakeTokens{t.f} }
func (t *fakeTx) Users() shared.UserRepository                 { return &fakeUsers{t.f} }
func (t *fakeTx) Notifications() shared.NotificationRepository { return &fakeNotifications{t.f} }
func (t *fakeTx) Reads() shared.CommandReads                   { return &fakeReads{t.f} }

type fakeProducts struct{ f *fakeUoW }

func (p *fakeProducts) Create(_ context.Context, prod *catalog.Product) error {
	for _, existing := range p.f.products {
		if existing.SKU == prod.SKU {
			return duplicateKey("sku already exists")
		}
	}
	cp := *prod
	p.f.products[cp.ID] = &cp
	return nil
}

func (p *fakeProducts) Update(_ context.Context, prod *catalog.Product) error {
	if _, ok := p.f.products[prod.ID]; !ok {
		return notFound("product not found")
	}
	for _, existing := range p.f.products {
		if existing.ID != prod.ID && existing.SKU == prod.SKU {
			return duplicateKey("sku already exists")
		}
	}
	cp := *prod
	p.f.products[cp.ID] = &cp
	return nil
}

type fakeStock struct{ f *fakeUoW }

func (s *fakeStock) levels(id uuid.UUID) (*catalog.Product, shared.StockLevels, error) {
	p, ok := s.f.products[id]
	if !ok {
		return nil, shared.StockLevels{}, notFound("product not found")
	}
	return p, shared.StockLevels{
		Quantity:         p.Inventory.Quantity,
		ReservedQuantity: p.Inventory.ReservedQuantity,
	}, nil
}

func (s *fakeStock) Reserve(_ context.Context, id uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	p, prev, err := s.levels(id)
	if err != nil {
		return prev, prev, err
	}
	if !p.Inventory.AllowBackorder && p.Inventory.AvailableQuantity() < qty {
		return prev, prev, &catalog.InsufficientStockError{
			ProductID: id, Requested: qty, Available: p.Inventory.AvailableQuantity(),
		}
	}
	p.Inventory.ReservedQuantity += qty
	_, next, _ := s.levels(id)
	return prev, next, nil
}

func (s *fakeStock) Release(_ context.Context, id uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	p, prev, err := s.levels(id)
	if err != nil {
		return prev, prev, err
	}
	p.Inventory.ReservedQuantity -= qty
	if p.Inventory.ReservedQuantity < 0 {
		p.Inventory.ReservedQuantity = 0
	}
	_, next, _ := s.levels(id)
	return prev, next, nil
}

func (s *fakeStock) CommitSale(_ context.Context, id uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	p, prev, err := s.levels(id)
	if err != nil {
		return prev, prev, err
	}
	if !p.Inventory.AllowBackorder && p.Inventory.Quantity < qty {
		return prev, prev, &catalog.InsufficientStockError{
			ProductID: id, Requested: qty, Available: p.Inventory.AvailableQuantity(),
		}
	}
	p.Inventory.Quantity -= qty
	p.Inventory.ReservedQuantity -= qty
	if p.Inventory.ReservedQuantity < 0 {
		p.Inventory.ReservedQuantity = 0
	}
	_, next, _ := s.levels(id)
	return prev, next, nil
}

func (s *fakeStock) Restock(_ context.Context, id uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	p, prev, err := s.levels(id)
	if err != nil {
		return prev, prev, err
	}
	p.Inventory.Quantity += qty
	_, next, _ := s.levels(id)
	return prev, next, nil
}

func (s *fakeStock) Adjust(_ context.Context, id uuid.UUID, delta int) (shared.StockLevels, shared.StockLevels, error) {
	p, prev, err := s.levels(id)
	if err != nil {
		return prev, prev, err
	}
	if p.Inventory.Quantity+delta < 0 {
		return prev, prev, &catalog.InsufficientStockError{
			ProductID: id, Requested: -delta, Available: p.Inventory.Quantity,
		}
	}
	p.Inventory.Quantity += delta
	_, next, _ := s.levels(id)
	return prev, next, nil
}

func (s *fakeStock) Return(ctx context.Context, id uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	return s.Restock(ctx, id, qty)
}

func (s *fakeStock) AppendLog(_ context.Context, entry *catalog.InventoryLog) error {
	if entry.IdempotencyKey != nil {
		for _, l := range s.f.logs {
			if l.IdempotencyKey != nil && *l.IdempotencyKey == *entry.IdempotencyKey {
				return duplicateKey("inventory log idempotency key already exists")
			}
		}
	}
	cp := *entry
	s.f.logs = append(s.f.logs, &cp)
	return nil
}

type fakeOrders struct{ f *fakeUoW }

func (o *fakeOrders) Create(_ context.Context, ord *order.Order) error {
	for _, existing := range o.f.orders {
		if existing.Number == ord.Number {
			return duplicateKey("order number already exists")
		}
		if ord.IdempotencyKey != nil && existing.IdempotencyKey != nil &&
			existing.UserID == ord.UserID && *existing.IdempotencyKey == *ord.IdempotencyKey {
			return duplicateKey("idempotency key already exists")
		}
	}
	o.f.orders[ord.ID] = copyOrder(ord)
	return nil
}

func (o *fakeOrders) UpdateStatus(_ context.Context, ord *order.Order) error {
	if _, ok := o.f.orders[ord.ID]; !ok {
		return notFound("order not found")
	}
	o.f.orders[ord.ID] = copyOrder(ord)
	return nil
}

type fakeCarts struct{ f *fakeUoW }

func (c *fakeCarts) Save(_ context.Context, ct *cart.Cart) error {
	c.f.carts[ct.ID] = copyCart(ct)
	return nil
}

func (c *fakeCarts) Delete(_ context.Context, id uuid.UUID) error {
	delete(c.f.carts, id)
	return nil
}

func (c *fakeCarts) ExpiredCarts(_ context.Context, now time.Time, limit int32) ([]*cart.Cart, error) {
	var out []*cart.Cart
	for _, ct := range c.f.carts {
		if ct.ExpiresAt != nil && ct.ExpiresAt.Before(now) {
			out = append(out, copyCart(ct))
			if len(out) == int(limit) {
				break
			}
		}
	}
	return out, nil
}

type fakeTokens struct{ f *fakeUoW }

func (t *fakeTokens) Insert(_ context.Context, tok *authtoken.Token) error {
	cp := *tok
	t.f.tokens[cp.ID] = &cp
	return nil
}

func (t *fakeTokens) MarkReplaced(_ context.Context, oldID, newID uuid.UUID, usedAt time.Time) error {
	tok, ok := t.f.tokens[oldID]
	if !ok {
		return notFound("refresh token not found")
	}
	tok.Revoked = true
	id := newID
	tok.ReplacedBy = &id
	tok.LastUsedAt = usedAt
	return nil
}

func (t *fakeTokens) Revoke(_ context.Context, id uuid.UUID) error {
	tok, ok := t.f.tokens[id]
	if !ok {
		return notFound("refresh token not found")
	}
	tok.Revoked = true
	return nil
}

func (t *fakeTokens) RevokeFamily(_ context.Context, familyID uuid.UUID) (int64, error) {
	var n int64
	for _, tok := range t.f.tokens {
		if tok.FamilyID == familyID && !tok.Revoked {
			tok.Revoked = true
			n++
		}
	}
	return n, nil
}

func (t *fakeTokens) RevokeAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, tok := range t.f.tokens {
		if tok.UserID == userID && !tok.Revoked {
			tok.Revoked = true
			n++
		}
	}
	return n, nil
}

type fakeUsers struct{ f *fakeUoW }

func (u *fakeUsers) Create(_ context.Context, params shared.NewUser) (uuid.UUID, error) {
	for _, existing := range u.f.users {
		if existing.Email == params.Email {
			return uuid.Nil, duplicateKey("email already exists")
		}
	}
	id := uuid.New()
	u.f.users[id] = &shared.UserSnapshot{
		ID:           id,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		IsActive:     true,
	}
	return id, nil
}

func (u *fakeUsers) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	if _, ok := u.f.users[userID]; !ok {
		return notFound("user not found")
	}
	return nil
}

func (u *fakeUsers) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash string) error {
	usr, ok := u.f.users[userID]
	if !ok {
		return notFound("user not found")
	}
	usr.PasswordHash = hash
	return nil
}

type fakeNotifications struct{ f *fakeUoW }

func (n *fakeNotifications) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	n.f.jobs = append(n.f.jobs, fakeJob{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}
