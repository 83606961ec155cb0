package service

import (
	"sync"

	"github.com/ridloal/storefront-dashboard/internal/catalog/domain"
	productDomain "github.com/ridloal/storefront-dashboard/internal/product/domain"
)

// View is the catalog state of one dashboard session. The product list held
// here is the single source of truth between fetches.
type View struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	stale    bool
	buying   productDomain.ID
	inflight map[productDomain.ID]struct{}
	notices  []domain.Notice
}

func NewView() *View {
	return &View{inflight: make(map[productDomain.ID]struct{})}
}

// Card is one product as the dashboard grid shows it.
type Card struct {
	Product productDomain.Product
	Busy    bool
}

// Disabled reports whether the purchase control must not be clickable.
func (c Card) Disabled() bool {
	return !c.Product.Purchasable() || c.Busy
}

// Screen is what a render of the view needs. Taking one drains the notices.
type Screen struct {
	State   domain.State
	Cards   []Card
	Notices []domain.Notice
}

func (v *View) Screen() Screen {
	v.mu.Lock()
	defer v.mu.Unlock()

	products := v.snapshot.Products()
	cards := make([]Card, len(products))
	for i, p := range products {
		cards[i] = Card{Product: p, Busy: v.buying != "" && p.ID == v.buying}
	}
	notices := v.notices
	v.notices = nil
	return Screen{State: v.snapshot.State(), Cards: cards, Notices: notices}
}

func (v *View) State() domain.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot.State()
}

func (v *View) Find(id productDomain.ID) (productDomain.Product, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot.Find(id)
}

// Buying returns the product currently in the purchase sub-state, if any.
func (v *View) Buying() (productDomain.ID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buying, v.buying != ""
}

func (v *View) Notify(kind domain.NoticeKind, msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, domain.Notice{Kind: kind, Message: msg})
}

func (v *View) needsLoad(force bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return force || v.stale || v.snapshot.State() == domain.StateLoading
}

func (v *View) loaded(products []productDomain.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = domain.Loaded(products)
	v.stale = false
}

// loadFailed leaves a loaded view as it was; a view that never loaded shows
// the empty state and retries on the next visit.
func (v *View) loadFailed() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot.State() == domain.StateLoading {
		v.snapshot = domain.Loaded(nil)
		v.stale = true
	}
}

func (v *View) apply(e domain.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = v.snapshot.Apply(e)
}

func (v *View) beginMutation(id productDomain.ID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, busy := v.inflight[id]; busy {
		return false
	}
	v.inflight[id] = struct{}{}
	return true
}

func (v *View) endMutation(id productDomain.ID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.inflight, id)
}

func (v *View) beginPurchase(id productDomain.ID) (productDomain.Product, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.snapshot.Find(id)
	if !ok {
		return productDomain.Product{}, ErrProductNotFound
	}
	if !p.Purchasable() {
		return productDomain.Product{}, ErrNotPurchasable
	}
	if v.buying != "" {
		return productDomain.Product{}, ErrPurchaseInProgress
	}
	v.buying = id
	return p, nil
}

func (v *View) endPurchase() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buying = ""
}
