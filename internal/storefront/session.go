package storefront

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/mhhmod/tes3/internal/domain"
	"github.com/mhhmod/tes3/internal/notify"
	"github.com/mhhmod/tes3/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ProductSource resolves product ids against the live catalog.
type ProductSource interface {
	Product(id string) (domain.Product, error)
}

type ChangeKind string

const (
	ChangeCart     ChangeKind = "cart"
	ChangeWishlist ChangeKind = "wishlist"
	ChangeOrders   ChangeKind = "orders"
)

type Change struct {
	SessionID string     `json:"sessionId"`
	Kind      ChangeKind `json:"kind"`
}

// Session owns the cart, wishlist and order history of one shopper.
// Mutations are serialized; every operation reads through to the store.
type Session struct {
	id       string
	store    repository.Store
	products ProductSource
	logger   *zap.Logger
	toasts   *notify.Timer

	mu sync.Mutex

	obsMu     sync.Mutex
	observers []func(Change)
}

func (s *Session) ID() string { return s.id }

// Toasts is the session's notification timer.
func (s *Session) Toasts() *notify.Timer { return s.toasts }

// Subscribe registers fn for every committed change of this session.
func (s *Session) Subscribe(fn func(Change)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Session) emit(kind ChangeKind) {
	s.obsMu.Lock()
	observers := slices.Clone(s.observers)
	s.obsMu.Unlock()

	ch := Change{SessionID: s.id, Kind: kind}
	for _, fn := range observers {
		fn(ch)
	}
}

// AddLine adds quantity units of a product variant, merging into the line
// with the same variant key when one exists.
func (s *Session) AddLine(ctx context.Context, productID string, quantity int, size, color string) (domain.CartLine, error) {
	if quantity < 1 {
		return domain.CartLine{}, ErrInvalidQuantity
	}
	product, err := s.products.Product(productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	size, color, err = product.ResolveVariant(size, color)
	if err != nil {
		return domain.CartLine{}, err
	}
	id := domain.LineID(product.ID, size, color)

	s.mu.Lock()
	lines := s.loadCart(ctx)
	var line domain.CartLine
	if i := indexOf(lines, id); i >= 0 {
		lines[i].Quantity += quantity
		line = lines[i]
	} else {
		line = domain.CartLine{
			ID:            id,
			ProductID:     product.ID,
			Quantity:      quantity,
			SelectedSize:  size,
			SelectedColor: color,
		}
		lines = append(lines, line)
	}
	err = s.saveCart(ctx, lines)
	s.mu.Unlock()
	if err != nil {
		return domain.CartLine{}, err
	}

	s.emit(ChangeCart)
	return line, nil
}

// SetLineQuantity overwrites a line's quantity; zero or less removes it.
// removed reports whether the line is gone afterwards.
func (s *Session) SetLineQuantity(ctx context.Context, lineID string, quantity int) (removed bool, err error) {
	s.mu.Lock()
	lines := s.loadCart(ctx)
	i := indexOf(lines, lineID)
	if i < 0 {
		s.mu.Unlock()
		return false, domain.ErrLineNotFound
	}
	if quantity <= 0 {
		lines = slices.Delete(lines, i, i+1)
		removed = true
	} else {
		lines[i].Quantity = quantity
	}
	err = s.saveCart(ctx, lines)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.emit(ChangeCart)
	return removed, nil
}

// ChangeLineQuantity adjusts a line by delta, removing it at zero, and
// returns the new quantity.
func (s *Session) ChangeLineQuantity(ctx context.Context, lineID string, delta int) (int, error) {
	s.mu.Lock()
	lines := s.loadCart(ctx)
	i := indexOf(lines, lineID)
	if i < 0 {
		s.mu.Unlock()
		return 0, domain.ErrLineNotFound
	}
	quantity := max(lines[i].Quantity+delta, 0)
	if quantity == 0 {
		lines = slices.Delete(lines, i, i+1)
	} else {
		lines[i].Quantity = quantity
	}
	err := s.saveCart(ctx, lines)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.emit(ChangeCart)
	return quantity, nil
}

// RemoveLine is idempotent.
func (s *Session) RemoveLine(ctx context.Context, lineID string) error {
	s.mu.Lock()
	lines := s.loadCart(ctx)
	i := indexOf(lines, lineID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	lines = slices.Delete(lines, i, i+1)
	err := s.saveCart(ctx, lines)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.emit(ChangeCart)
	return nil
}

func (s *Session) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	err := s.saveCart(ctx, nil)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.emit(ChangeCart)
	return nil
}

func (s *Session) Lines(ctx context.Context) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCart(ctx)
}

// Cart joins the lines with live catalog prices. Lines whose product left
// the catalog are skipped.
func (s *Session) Cart(ctx context.Context) domain.CartView {
	lines := s.Lines(ctx)

	view := domain.CartView{Items: make([]domain.CartItem, 0, len(lines))}
	total := decimal.Zero
	for _, l := range lines {
		view.Count += l.Quantity
		p, err := s.products.Product(l.ProductID)
		if err != nil {
			s.logger.Debug("Cart line references unknown product",
				zap.String("sessionId", s.id),
				zap.String("productId", l.ProductID))
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(lineTotal)
		view.Items = append(view.Items, domain.CartItem{CartLine: l, Product: p, LineTotal: lineTotal})
	}
	view.Total = domain.RoundForDisplay(total)
	return view
}

// CartTotal is the full-precision sum of live price times quantity.
func (s *Session) CartTotal(ctx context.Context) decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines(ctx) {
		p, err := s.products.Product(l.ProductID)
		if err != nil {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (s *Session) CartCount(ctx context.Context) int {
	count := 0
	for _, l := range s.Lines(ctx) {
		count += l.Quantity
	}
	return count
}

// ToggleWishlist flips membership and reports whether the id was added.
func (s *Session) ToggleWishlist(ctx context.Context, productID string) (bool, error) {
	s.mu.Lock()
	ids := s.loadWishlist(ctx)
	added := true
	if i := slices.Index(ids, productID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
		added = false
	} else {
		ids = append(ids, productID)
	}
	if ids == nil {
		ids = []string{}
	}
	err := s.save(ctx, wishlistKey, ids)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.emit(ChangeWishlist)
	return added, nil
}

func (s *Session) Wishlist(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.loadWishlist(ctx)
	if ids == nil {
		return []string{}
	}
	return ids
}

func (s *Session) InWishlist(ctx context.Context, productID string) bool {
	return slices.Contains(s.Wishlist(ctx), productID)
}

func (s *Session) Orders(ctx context.Context) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.loadOrders(ctx)
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}

func (s *Session) Order(ctx context.Context, orderID string) (domain.Order, error) {
	for _, o := range s.Orders(ctx) {
		if o.ID == orderID {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

// Checkout hands a copy of the current cart to build. When build succeeds
// the order is appended to the history and the cart is cleared; when it
// fails nothing changes. The session stays locked for the whole call.
func (s *Session) Checkout(ctx context.Context, build func(lines []domain.CartLine) (domain.Order, error)) (domain.Order, error) {
	s.mu.Lock()
	lines := s.loadCart(ctx)
	if len(lines) == 0 {
		s.mu.Unlock()
		return domain.Order{}, domain.ErrEmptyCart
	}

	order, err := build(slices.Clone(lines))
	if err != nil {
		s.mu.Unlock()
		return domain.Order{}, err
	}

	orders := append(s.loadOrders(ctx), order)
	if err := s.save(ctx, ordersKey, orders); err != nil {
		s.mu.Unlock()
		return domain.Order{}, err
	}
	if err := s.saveCart(ctx, nil); err != nil {
		s.logger.Error("Order saved but cart not cleared",
			zap.String("sessionId", s.id),
			zap.String("orderId", order.ID),
			zap.Error(err))
	}
	s.mu.Unlock()

	s.emit(ChangeOrders)
	s.emit(ChangeCart)
	return order, nil
}

func indexOf(lines []domain.CartLine, id string) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.ID == id })
}
