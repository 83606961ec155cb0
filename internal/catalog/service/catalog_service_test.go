package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ridloal/storefront-dashboard/internal/catalog/domain"
	catalogMocks "github.com/ridloal/storefront-dashboard/internal/catalog/service/mocks"
	checkoutMocks "github.com/ridloal/storefront-dashboard/internal/checkout/service/mocks"
	"github.com/ridloal/storefront-dashboard/internal/product/client"
	clientMocks "github.com/ridloal/storefront-dashboard/internal/product/client/mocks"
	productDomain "github.com/ridloal/storefront-dashboard/internal/product/domain"
	sessionDomain "github.com/ridloal/storefront-dashboard/internal/session/domain"
)

var creds = clientMocks.StaticCredentials{Token: "tok"}

func sample(id, name string, amount int) productDomain.Product {
	return productDomain.Product{ID: productDomain.ID(id), Name: name, Price: decimal.RequireFromString("19.90"), Amount: amount}
}

type fixture struct {
	products  *clientMocks.MockProductClient
	checkout  *checkoutMocks.MockCheckoutService
	publisher *catalogMocks.MockEventPublisher
	svc       CatalogService
}

func newFixture() *fixture {
	f := &fixture{
		products:  new(clientMocks.MockProductClient),
		checkout:  new(checkoutMocks.MockCheckoutService),
		publisher: new(catalogMocks.MockEventPublisher),
	}
	f.svc = NewCatalogService(f.products, f.checkout, f.publisher)
	return f
}

// loadedView returns a view already holding products.
func (f *fixture) loadedView(t *testing.T, products ...productDomain.Product) *View {
	t.Helper()
	view := NewView()
	view.loaded(products)
	return view
}

func TestCatalogService_Load(t *testing.T) {
	t.Run("Zero products shows the empty state", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		f.products.On("ListProducts", mock.Anything, creds).Return([]productDomain.Product{}, nil).Once()

		require.NoError(t, f.svc.Load(context.Background(), view, creds, false))

		screen := view.Screen()
		assert.Equal(t, domain.StateEmpty, screen.State)
		assert.Empty(t, screen.Cards)
		f.products.AssertExpectations(t)
	})

	t.Run("Loaded view is not fetched again unless forced", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		f.products.On("ListProducts", mock.Anything, creds).Return([]productDomain.Product{sample("1", "Café", 2)}, nil).Twice()

		require.NoError(t, f.svc.Load(context.Background(), view, creds, false))
		require.NoError(t, f.svc.Load(context.Background(), view, creds, false))
		require.NoError(t, f.svc.Load(context.Background(), view, creds, true))

		assert.Equal(t, domain.StatePopulated, view.State())
		f.products.AssertNumberOfCalls(t, "ListProducts", 2)
	})

	t.Run("Failure leaves a stale empty view with an error notice", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		f.products.On("ListProducts", mock.Anything, creds).Return(nil, client.ErrListProductsFailed).Once()
		f.products.On("ListProducts", mock.Anything, creds).Return([]productDomain.Product{sample("1", "Café", 2)}, nil).Once()

		err := f.svc.Load(context.Background(), view, creds, false)
		assert.ErrorIs(t, err, client.ErrRequestFailed)

		screen := view.Screen()
		assert.Equal(t, domain.StateEmpty, screen.State)
		require.Len(t, screen.Notices, 1)
		assert.Equal(t, domain.Notice{Kind: domain.NoticeError, Message: MsgLoadFailed}, screen.Notices[0])

		require.NoError(t, f.svc.Load(context.Background(), view, creds, false))
		assert.Equal(t, domain.StatePopulated, view.State())
	})

	t.Run("Session error leaves the view untouched", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		f.products.On("ListProducts", mock.Anything, creds).Return(nil, sessionDomain.ErrExpired).Once()

		err := f.svc.Load(context.Background(), view, creds, false)
		assert.ErrorIs(t, err, sessionDomain.ErrExpired)
		screen := view.Screen()
		assert.Equal(t, domain.StateLoading, screen.State)
		assert.Empty(t, screen.Notices)
	})
}

func TestCatalogService_Create(t *testing.T) {
	in := productDomain.Input{Name: "Chá", Price: decimal.RequireFromString("5.5"), Amount: 3, Description: "verde"}

	t.Run("Success appends exactly one item and notifies", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2))
		created := productDomain.Product{ID: "2", Name: in.Name, Price: in.Price, Amount: in.Amount, Description: in.Description}
		f.products.On("CreateProduct", mock.Anything, creds, in).Return(&created, nil).Once()
		f.publisher.On("Publish", mock.Anything, domain.Created(created)).Return(nil).Once()

		got, err := f.svc.Create(context.Background(), view, creds, in)
		require.NoError(t, err)
		assert.Equal(t, &created, got)

		screen := view.Screen()
		require.Len(t, screen.Cards, 2)
		assert.Equal(t, created, screen.Cards[1].Product)
		assert.Equal(t, []domain.Notice{{Kind: domain.NoticeSuccess, Message: MsgCreated}}, screen.Notices)
		f.publisher.AssertExpectations(t)
	})

	t.Run("Failure leaves the list unchanged with an error notice", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2))
		f.products.On("CreateProduct", mock.Anything, creds, in).Return(nil, client.ErrCreateProductFailed).Once()

		_, err := f.svc.Create(context.Background(), view, creds, in)
		assert.ErrorIs(t, err, client.ErrCreateProductFailed)

		screen := view.Screen()
		require.Len(t, screen.Cards, 1)
		assert.Equal(t, []domain.Notice{{Kind: domain.NoticeError, Message: MsgCreateFailed}}, screen.Notices)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("Publish failure does not fail the mutation", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t)
		created := productDomain.Product{ID: "9", Name: in.Name, Amount: 1}
		f.products.On("CreateProduct", mock.Anything, creds, in).Return(&created, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		_, err := f.svc.Create(context.Background(), view, creds, in)
		require.NoError(t, err)
		assert.Equal(t, domain.StatePopulated, view.State())
	})
}

func TestCatalogService_MutationsLoadFirst(t *testing.T) {
	in := productDomain.Input{Name: "Novo", Price: decimal.NewFromInt(1), Amount: 1, Description: "d"}

	t.Run("Create on a view that never loaded patches the fetched list", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		created := sample("3", "Novo", 1)
		f.products.On("ListProducts", mock.Anything, creds).
			Return([]productDomain.Product{sample("1", "Café", 2), sample("2", "Chá", 1)}, nil).Once()
		f.products.On("CreateProduct", mock.Anything, creds, in).Return(&created, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.Create(context.Background(), view, creds, in)
		require.NoError(t, err)

		screen := view.Screen()
		require.Len(t, screen.Cards, 3)
		assert.Equal(t, "Café", screen.Cards[0].Product.Name)
		assert.Equal(t, "Novo", screen.Cards[2].Product.Name)
		f.products.AssertExpectations(t)
	})

	t.Run("Delete on a view that never loaded patches the fetched list", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		f.products.On("ListProducts", mock.Anything, creds).
			Return([]productDomain.Product{sample("1", "Café", 2), sample("2", "Chá", 1)}, nil).Once()
		f.products.On("DeleteProduct", mock.Anything, creds, productDomain.ID("1")).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, f.svc.Delete(context.Background(), view, creds, "1"))

		screen := view.Screen()
		assert.Equal(t, domain.StatePopulated, screen.State)
		require.Len(t, screen.Cards, 1)
		assert.Equal(t, "Chá", screen.Cards[0].Product.Name)
	})

	t.Run("Session error while loading stops the mutation", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		f.products.On("ListProducts", mock.Anything, creds).Return(nil, sessionDomain.ErrExpired).Once()

		_, err := f.svc.Create(context.Background(), view, creds, in)
		assert.ErrorIs(t, err, sessionDomain.ErrExpired)
		f.products.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, domain.StateLoading, view.State())
	})

	t.Run("Failed fetch keeps the view stale for the next visit", func(t *testing.T) {
		f := newFixture()
		view := NewView()
		created := sample("3", "Novo", 1)
		f.products.On("ListProducts", mock.Anything, creds).Return(nil, client.ErrListProductsFailed).Once()
		f.products.On("CreateProduct", mock.Anything, creds, in).Return(&created, nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		f.products.On("ListProducts", mock.Anything, creds).
			Return([]productDomain.Product{sample("1", "Café", 2), created}, nil).Once()

		_, err := f.svc.Create(context.Background(), view, creds, in)
		require.NoError(t, err)

		require.NoError(t, f.svc.Load(context.Background(), view, creds, false))
		screen := view.Screen()
		require.Len(t, screen.Cards, 2)
		assert.Equal(t, "Café", screen.Cards[0].Product.Name)
		f.products.AssertNumberOfCalls(t, "ListProducts", 2)
	})
}

func TestCatalogService_Update(t *testing.T) {
	in := productDomain.Input{Name: "Café forte", Price: decimal.NewFromInt(30), Amount: 7, Description: "d"}

	t.Run("Success replaces the item in place", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2), sample("2", "Chá", 1))
		echoed := productDomain.Product{ID: "1", Name: in.Name, Price: in.Price, Amount: in.Amount, Description: in.Description}
		f.products.On("UpdateProduct", mock.Anything, creds, productDomain.ID("1"), in).Return(&echoed, nil).Once()
		f.publisher.On("Publish", mock.Anything, domain.Updated(echoed)).Return(nil).Once()

		_, err := f.svc.Update(context.Background(), view, creds, "1", in)
		require.NoError(t, err)

		screen := view.Screen()
		require.Len(t, screen.Cards, 2)
		assert.Equal(t, "Café forte", screen.Cards[0].Product.Name)
		assert.Equal(t, "Chá", screen.Cards[1].Product.Name)
		assert.Equal(t, []domain.Notice{{Kind: domain.NoticeSuccess, Message: MsgUpdated}}, screen.Notices)
	})

	t.Run("Failure keeps the old item", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2))
		f.products.On("UpdateProduct", mock.Anything, creds, productDomain.ID("1"), in).Return(nil, client.ErrUpdateProductFailed).Once()

		_, err := f.svc.Update(context.Background(), view, creds, "1", in)
		assert.ErrorIs(t, err, client.ErrUpdateProductFailed)

		p, _ := view.Find("1")
		assert.Equal(t, "Café", p.Name)
		assert.Equal(t, []domain.Notice{{Kind: domain.NoticeError, Message: MsgUpdateFailed}}, view.Screen().Notices)
	})

	t.Run("Second change to the same id is refused while one runs", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2), sample("2", "Chá", 1))
		release := make(chan struct{})
		started := make(chan struct{})
		echoed := sample("1", "Café forte", 7)
		f.products.On("UpdateProduct", mock.Anything, creds, productDomain.ID("1"), in).
			Run(func(mock.Arguments) { close(started); <-release }).
			Return(&echoed, nil).Once()
		f.products.On("DeleteProduct", mock.Anything, creds, productDomain.ID("2")).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		done := make(chan error, 1)
		go func() {
			_, err := f.svc.Update(context.Background(), view, creds, "1", in)
			done <- err
		}()
		<-started

		err := f.svc.Delete(context.Background(), view, creds, "1")
		assert.ErrorIs(t, err, ErrMutationInFlight)

		require.NoError(t, f.svc.Delete(context.Background(), view, creds, "2"), "other ids are independent")

		close(release)
		require.NoError(t, <-done)

		screen := view.Screen()
		require.Len(t, screen.Cards, 1)
		assert.Equal(t, "Café forte", screen.Cards[0].Product.Name)
		f.products.AssertNotCalled(t, "DeleteProduct", mock.Anything, creds, productDomain.ID("1"))
	})
}

func TestCatalogService_Delete(t *testing.T) {
	t.Run("Deleting the last item empties the view", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2))
		f.products.On("DeleteProduct", mock.Anything, creds, productDomain.ID("1")).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, domain.Deleted("1")).Return(nil).Once()

		require.NoError(t, f.svc.Delete(context.Background(), view, creds, "1"))

		screen := view.Screen()
		assert.Equal(t, domain.StateEmpty, screen.State)
		assert.Equal(t, []domain.Notice{{Kind: domain.NoticeSuccess, Message: MsgDeleted}}, screen.Notices)
	})

	t.Run("Session error adds no notice", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2))
		f.products.On("DeleteProduct", mock.Anything, creds, productDomain.ID("1")).Return(sessionDomain.ErrNoToken).Once()

		err := f.svc.Delete(context.Background(), view, creds, "1")
		assert.ErrorIs(t, err, sessionDomain.ErrNoToken)
		screen := view.Screen()
		assert.Len(t, screen.Cards, 1)
		assert.Empty(t, screen.Notices)
	})
}

func TestCatalogService_Buy(t *testing.T) {
	t.Run("Only the bought item is busy while the purchase runs", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 2), sample("2", "Chá", 4))
		release := make(chan struct{})
		started := make(chan struct{})
		f.checkout.On("Purchase", mock.Anything, sample("1", "Café", 2)).
			Run(func(mock.Arguments) { close(started); <-release }).
			Return(nil).Once()

		done, err := f.svc.Buy(context.Background(), view, "1")
		require.NoError(t, err)
		<-started

		screen := view.Screen()
		assert.True(t, screen.Cards[0].Busy)
		assert.True(t, screen.Cards[0].Disabled())
		assert.False(t, screen.Cards[1].Busy)
		assert.False(t, screen.Cards[1].Disabled())

		refused, err := f.svc.Buy(context.Background(), view, "2")
		assert.ErrorIs(t, err, ErrPurchaseInProgress)
		assert.Nil(t, refused)

		close(release)
		require.NoError(t, <-done)

		screen = view.Screen()
		assert.False(t, screen.Cards[0].Busy)
		assert.Equal(t, 2, screen.Cards[0].Product.Amount, "stock is owned by the backend")
		assert.Equal(t, []domain.Notice{
			{Kind: domain.NoticeError, Message: MsgPurchaseBusy},
			{Kind: domain.NoticeSuccess, Message: "Compra realizada: Café"},
		}, screen.Notices)
	})

	t.Run("Out of stock is disabled and refused", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 0))

		assert.True(t, view.Screen().Cards[0].Disabled())

		_, err := f.svc.Buy(context.Background(), view, "1")
		assert.ErrorIs(t, err, ErrNotPurchasable)
		f.checkout.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything)
	})

	t.Run("Unknown product", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t)
		_, err := f.svc.Buy(context.Background(), view, "7")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Checkout failure notifies and clears busy", func(t *testing.T) {
		f := newFixture()
		view := f.loadedView(t, sample("1", "Café", 1))
		f.checkout.On("Purchase", mock.Anything, mock.Anything).Return(context.Canceled).Once()

		done, err := f.svc.Buy(context.Background(), view, "1")
		require.NoError(t, err)
		assert.ErrorIs(t, <-done, context.Canceled)
		_, buying := view.Buying()
		assert.False(t, buying)
		assert.Equal(t, []domain.Notice{{Kind: domain.NoticeError, Message: MsgPurchaseFailed}}, view.Screen().Notices)
	})
}

func TestView_NoticesAreShownOnce(t *testing.T) {
	view := NewView()
	view.Notify(domain.NoticeSuccess, "ok")
	assert.Len(t, view.Screen().Notices, 1)
	assert.Empty(t, view.Screen().Notices)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	a := r.View("a")
	assert.Same(t, a, r.View("a"))
	assert.NotSame(t, a, r.View("b"))
	assert.Equal(t, domain.StateLoading, a.State())

	r.now = func() time.Time { return base.Add(time.Hour) }
	r.View("b")

	assert.Equal(t, 1, r.Prune(base.Add(90*time.Minute), time.Hour))
	assert.Equal(t, 1, r.Len())

	r.Drop("b")
	assert.Equal(t, 0, r.Len())
}
