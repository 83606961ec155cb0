package domain

import (
	productDomain "github.com/ridloal/storefront-dashboard/internal/product/domain"
)

type State string

const (
	StateLoading   State = "loading"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

// Snapshot is an immutable view of the product list. Apply returns a new
// snapshot and never touches the receiver's backing array.
type Snapshot struct {
	loaded   bool
	products []productDomain.Product
}

// Loaded is the snapshot after a fetch returned products.
func Loaded(products []productDomain.Product) Snapshot {
	return Snapshot{loaded: true, products: clone(products)}
}

func (s Snapshot) State() State {
	switch {
	case !s.loaded:
		return StateLoading
	case len(s.products) == 0:
		return StateEmpty
	default:
		return StatePopulated
	}
}

// Products returns a copy of the list in display order.
func (s Snapshot) Products() []productDomain.Product {
	return clone(s.products)
}

func (s Snapshot) Len() int { return len(s.products) }

func (s Snapshot) Find(id productDomain.ID) (productDomain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return productDomain.Product{}, false
}

// Apply patches the list with e, matching by product id. Created appends,
// Updated replaces in place, Deleted removes. Unknown ids on update/delete
// leave the list unchanged. A snapshot still Loading has no list to patch and
// is returned as is; the fetch that loads it already carries the change.
func (s Snapshot) Apply(e Event) Snapshot {
	if !s.loaded {
		return s
	}
	next := Snapshot{loaded: true}
	switch e.Type {
	case EventCreated:
		next.products = append(clone(s.products), e.Product)
	case EventUpdated:
		next.products = clone(s.products)
		for i := range next.products {
			if next.products[i].ID == e.ProductID {
				next.products[i] = e.Product
			}
		}
	case EventDeleted:
		next.products = make([]productDomain.Product, 0, len(s.products))
		for _, p := range s.products {
			if p.ID != e.ProductID {
				next.products = append(next.products, p)
			}
		}
	default:
		next.products = clone(s.products)
	}
	return next
}

// Replay folds events over s, in order.
func (s Snapshot) Replay(events ...Event) Snapshot {
	for _, e := range events {
		s = s.Apply(e)
	}
	return s
}

func clone(products []productDomain.Product) []productDomain.Product {
	out := make([]productDomain.Product, len(products))
	copy(out, products)
	return out
}
