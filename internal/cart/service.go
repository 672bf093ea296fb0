package cart

import (
	"context"
	"fmt"
	"slices"
)

// Service runs the cart engine against carts held in a Store. Keys are
// built by the caller, typically from the storefront and a cart id.
type Service struct {
	Store Store
}

func (s *Service) mutate(ctx context.Context, key string, fn func([]Line) []Line) (State, error) {
	lines, err := s.Store.Update(ctx, key, fn)
	if err != nil {
		return State{}, fmt.Errorf("update cart %s: %w", key, err)
	}
	return newState("", lines), nil
}

func (s *Service) Get(ctx context.Context, key string) (State, error) {
	lines, err := s.Store.Load(ctx, key)
	if err != nil {
		return State{}, fmt.Errorf("load cart %s: %w", key, err)
	}
	return newState("", Restore(lines)), nil
}

func (s *Service) AddItem(ctx context.Context, key string, it Item) (State, error) {
	return s.mutate(ctx, key, func(ls []Line) []Line { return AddItem(ls, it) })
}

func (s *Service) RemoveItem(ctx context.Context, key, id string) (State, error) {
	return s.mutate(ctx, key, func(ls []Line) []Line { return RemoveItem(ls, id) })
}

func (s *Service) UpdateQuantity(ctx context.Context, key, id string, quantity int) (State, error) {
	return s.mutate(ctx, key, func(ls []Line) []Line { return UpdateQuantity(ls, id, quantity) })
}

func (s *Service) Clear(ctx context.Context, key string) (State, error) {
	return s.mutate(ctx, key, ClearCart)
}

// Merge adds lines back into whatever the cart holds now, e.g. after a
// failed checkout. Quantities of shared ids are summed and clamped.
func (s *Service) Merge(ctx context.Context, key string, lines []Line) (State, error) {
	return s.mutate(ctx, key, func(ls []Line) []Line {
		return Restore(append(slices.Clone(ls), lines...))
	})
}

// Take empties the cart and returns what it held, in one atomic step.
func (s *Service) Take(ctx context.Context, key string) (State, error) {
	var taken []Line
	_, err := s.Store.Update(ctx, key, func(ls []Line) []Line {
		taken = ls
		return ClearCart(ls)
	})
	if err != nil {
		return State{}, fmt.Errorf("take cart %s: %w", key, err)
	}
	return newState("", taken), nil
}
