package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/models"
)

type State struct {
	Items   []models.CartItem
	Total   decimal.Decimal
	Loading bool
}

func (s State) clone() State {
	s.Items = slices.Clone(s.Items)
	return s
}

type Action interface {
	isAction()
}

// CartSet replaces the cart with the server's view of it.
type CartSet struct {
	Cart models.Cart
}

type CartCleared struct{}

type LoadingSet struct {
	Loading bool
}

func (CartSet) isAction()     {}
func (CartCleared) isAction() {}
func (LoadingSet) isAction()  {}

func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case CartSet:
		return State{Items: slices.Clone(a.Cart.Items), Total: a.Cart.Total}
	case CartCleared:
		return State{Items: []models.CartItem{}, Total: decimal.Zero}
	case LoadingSet:
		s.Loading = a.Loading
		return s
	default:
		return s
	}
}

func ItemCount(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// ComputedTotal is the sum of price times quantity over the items.
func ComputedTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
