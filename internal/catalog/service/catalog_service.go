package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridloal/storefront-dashboard/internal/catalog/domain"
	checkoutService "github.com/ridloal/storefront-dashboard/internal/checkout/service"
	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/product/client"
	productDomain "github.com/ridloal/storefront-dashboard/internal/product/domain"
	sessionDomain "github.com/ridloal/storefront-dashboard/internal/session/domain"
)

var (
	ErrProductNotFound    = errors.New("product not found in catalog")
	ErrNotPurchasable     = errors.New("product is out of stock")
	ErrPurchaseInProgress = errors.New("another purchase is in progress")
	ErrMutationInFlight   = errors.New("another change to this product is in progress")
)

// Notice texts shown on the dashboard.
const (
	MsgLoadFailed     = "Falha ao carregar produtos"
	MsgCreated        = "Produto criado com sucesso"
	MsgCreateFailed   = "Falha ao criar produto"
	MsgUpdated        = "Produto atualizado com sucesso"
	MsgUpdateFailed   = "Falha ao atualizar produto"
	MsgDeleted        = "Produto deletado com sucesso"
	MsgDeleteFailed   = "Falha ao deletar produto"
	MsgPurchaseFailed = "Erro na compra"
	MsgPurchaseBusy   = "Aguarde a compra em andamento"
	MsgOutOfStock     = "Produto esgotado"
	MsgMutationBusy   = "Aguarde a alteração em andamento"
	MsgNotFound       = "Produto não encontrado"
)

// EventPublisher receives every mutation applied to a catalog view.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

type noopPublisher struct{}

// NewNoopPublisher discards events.
func NewNoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }

type CatalogService interface {
	Load(ctx context.Context, view *View, creds client.Credentials, force bool) error
	Create(ctx context.Context, view *View, creds client.Credentials, in productDomain.Input) (*productDomain.Product, error)
	Update(ctx context.Context, view *View, creds client.Credentials, id productDomain.ID, in productDomain.Input) (*productDomain.Product, error)
	Delete(ctx context.Context, view *View, creds client.Credentials, id productDomain.ID) error
	Buy(ctx context.Context, view *View, id productDomain.ID) (<-chan error, error)
}

type catalogService struct {
	products  client.ProductClient
	checkout  checkoutService.CheckoutService
	publisher EventPublisher
}

func NewCatalogService(products client.ProductClient, checkout checkoutService.CheckoutService, publisher EventPublisher) CatalogService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	return &catalogService{products: products, checkout: checkout, publisher: publisher}
}

// Load fetches the product list when the view has never loaded, is stale, or
// force is set. Session errors are returned without touching the view.
func (s *catalogService) Load(ctx context.Context, view *View, creds client.Credentials, force bool) error {
	if !view.needsLoad(force) {
		return nil
	}

	products, err := s.products.ListProducts(ctx, creds)
	if err != nil {
		if sessionDomain.IsSessionError(err) {
			return err
		}
		logger.Error("CatalogService.Load: failed to list products", err)
		view.loadFailed()
		view.Notify(domain.NoticeError, MsgLoadFailed)
		return err
	}

	view.loaded(products)
	return nil
}

func (s *catalogService) Create(ctx context.Context, view *View, creds client.Credentials, in productDomain.Input) (*productDomain.Product, error) {
	if err := s.ensureLoaded(ctx, view, creds); err != nil {
		return nil, err
	}

	product, err := s.products.CreateProduct(ctx, creds, in)
	if err != nil {
		return nil, s.failed(view, err, MsgCreateFailed)
	}

	s.commit(ctx, view, domain.Created(*product))
	view.Notify(domain.NoticeSuccess, MsgCreated)
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, view *View, creds client.Credentials, id productDomain.ID, in productDomain.Input) (*productDomain.Product, error) {
	if !view.beginMutation(id) {
		view.Notify(domain.NoticeError, MsgMutationBusy)
		return nil, fmt.Errorf("%w: product %s", ErrMutationInFlight, id)
	}
	defer view.endMutation(id)

	if err := s.ensureLoaded(ctx, view, creds); err != nil {
		return nil, err
	}

	product, err := s.products.UpdateProduct(ctx, creds, id, in)
	if err != nil {
		return nil, s.failed(view, err, MsgUpdateFailed)
	}

	// The list is patched under the id the user edited, whatever the
	// backend echoes back.
	updated := *product
	updated.ID = id
	s.commit(ctx, view, domain.Updated(updated))
	view.Notify(domain.NoticeSuccess, MsgUpdated)
	return &updated, nil
}

func (s *catalogService) Delete(ctx context.Context, view *View, creds client.Credentials, id productDomain.ID) error {
	if !view.beginMutation(id) {
		view.Notify(domain.NoticeError, MsgMutationBusy)
		return fmt.Errorf("%w: product %s", ErrMutationInFlight, id)
	}
	defer view.endMutation(id)

	if err := s.ensureLoaded(ctx, view, creds); err != nil {
		return err
	}

	if err := s.products.DeleteProduct(ctx, creds, id); err != nil {
		return s.failed(view, err, MsgDeleteFailed)
	}

	s.commit(ctx, view, domain.Deleted(id))
	view.Notify(domain.NoticeSuccess, MsgDeleted)
	return nil
}

// Buy puts the product in the Buying sub-state and runs the checkout in the
// background. A refused purchase is reported at once; otherwise the returned
// channel yields the checkout result when the product leaves Buying. ctx must
// outlive the request that started the purchase. Stock is not decremented.
func (s *catalogService) Buy(ctx context.Context, view *View, id productDomain.ID) (<-chan error, error) {
	product, err := view.beginPurchase(id)
	if err != nil {
		switch {
		case errors.Is(err, ErrPurchaseInProgress):
			view.Notify(domain.NoticeError, MsgPurchaseBusy)
		case errors.Is(err, ErrNotPurchasable):
			view.Notify(domain.NoticeError, MsgOutOfStock)
		default:
			view.Notify(domain.NoticeError, MsgNotFound)
		}
		return nil, fmt.Errorf("%w: product %s", err, id)
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.purchase(ctx, view, product)
	}()
	return done, nil
}

func (s *catalogService) purchase(ctx context.Context, view *View, product productDomain.Product) error {
	defer view.endPurchase()

	if err := s.checkout.Purchase(ctx, product); err != nil {
		logger.Error("CatalogService.Buy: checkout failed", err, "product", product.ID)
		view.Notify(domain.NoticeError, MsgPurchaseFailed)
		return err
	}

	view.Notify(domain.NoticeSuccess, "Compra realizada: "+product.Name)
	return nil
}

// ensureLoaded fetches the list of a view that has none yet, so a mutation
// patches the full list. Only session errors stop the mutation; a failed
// fetch leaves the view stale and is retried on the next visit.
func (s *catalogService) ensureLoaded(ctx context.Context, view *View, creds client.Credentials) error {
	if err := s.Load(ctx, view, creds, false); err != nil && sessionDomain.IsSessionError(err) {
		return err
	}
	return nil
}

// failed reports a mutation error. Session errors are left to the caller,
// which sends the user back to the login page.
func (s *catalogService) failed(view *View, err error, msg string) error {
	if !sessionDomain.IsSessionError(err) {
		view.Notify(domain.NoticeError, msg)
	}
	return err
}

func (s *catalogService) commit(ctx context.Context, view *View, e domain.Event) {
	view.apply(e)
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Warn("CatalogService: failed to publish catalog event", "type", e.Type, "product", e.ProductID, "error", err)
	}
}
