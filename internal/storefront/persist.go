package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mhhmod/tes3/internal/domain"
	"github.com/mhhmod/tes3/internal/repository"
	"go.uber.org/zap"
)

const (
	cartKey     = "grindctrl_cart"
	wishlistKey = "grindctrl_wishlist"
	ordersKey   = "grindctrl_orders"
)

func (s *Session) key(name string) string {
	return s.id + ":" + name
}

// loadList reads a stored collection. Missing keys, unreadable values and
// values that do not decode as a whole yield nil; partial decodes are discarded.
func loadList[T any](ctx context.Context, s *Session, name string) []T {
	raw, err := s.store.Get(ctx, s.key(name))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Warn("Failed to read session state, using empty default",
			zap.String("key", name),
			zap.Error(err))
		return nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn("Corrupt session state, using empty default",
			zap.String("key", name),
			zap.Error(err))
		return nil
	}
	return list
}

func (s *Session) save(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.store.Put(ctx, s.key(name), raw); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}

func (s *Session) loadCart(ctx context.Context) []domain.CartLine {
	lines := loadList[domain.CartLine](ctx, s, cartKey)
	valid := lines[:0]
	for _, l := range lines {
		if l.ID != "" && l.Quantity > 0 {
			valid = append(valid, l)
		}
	}
	return valid
}

func (s *Session) loadWishlist(ctx context.Context) []string {
	return loadList[string](ctx, s, wishlistKey)
}

func (s *Session) loadOrders(ctx context.Context) []domain.Order {
	return loadList[domain.Order](ctx, s, ordersKey)
}

// saveCart drops the key once the cart is empty.
func (s *Session) saveCart(ctx context.Context, lines []domain.CartLine) error {
	if len(lines) == 0 {
		if err := s.store.Delete(ctx, s.key(cartKey)); err != nil {
			return fmt.Errorf("clear %s: %w", cartKey, err)
		}
		return nil
	}
	return s.save(ctx, cartKey, lines)
}
