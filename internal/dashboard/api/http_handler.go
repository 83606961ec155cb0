package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	catalogDomain "github.com/ridloal/storefront-dashboard/internal/catalog/domain"
	catalogService "github.com/ridloal/storefront-dashboard/internal/catalog/service"
	"github.com/ridloal/storefront-dashboard/internal/dashboard/form"
	"github.com/ridloal/storefront-dashboard/internal/money"
	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/product/client"
	productDomain "github.com/ridloal/storefront-dashboard/internal/product/domain"
	sessionDomain "github.com/ridloal/storefront-dashboard/internal/session/domain"
	sessionService "github.com/ridloal/storefront-dashboard/internal/session/service"
)

type DashboardHandler struct {
	sessions sessionService.SessionService
	catalog  catalogService.CatalogService
	views    *catalogService.Registry
}

func NewDashboardHandler(ss sessionService.SessionService, cs catalogService.CatalogService, views *catalogService.Registry) *DashboardHandler {
	return &DashboardHandler{sessions: ss, catalog: cs, views: views}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	router.GET("/health", h.Health)
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/money/format", h.FormatMoney)

	dashboardRoutes := router.Group("/dashboard", RequireLogin())
	{
		dashboardRoutes.GET("", h.Dashboard)
		dashboardRoutes.POST("/products", h.CreateProduct)
		dashboardRoutes.POST("/products/:id", h.UpdateProduct)
		dashboardRoutes.POST("/products/:id/delete", h.DeleteProduct)
		dashboardRoutes.POST("/products/:id/buy", h.BuyProduct)
	}
}

type loginPage struct {
	Username string
	Error    string
}

// dashboardPage is everything dashboard.gohtml renders.
type dashboardPage struct {
	catalogService.Screen
	Busy   bool
	Form   *form.ProductForm
	Delete *form.DeleteConfirmation
}

func (h *DashboardHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *DashboardHandler) LoginPage(c *gin.Context) {
	if _, err := currentSession(c).ValidToken(c.Request.Context()); err == nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.gohtml", loginPage{})
}

func (h *DashboardHandler) Login(c *gin.Context) {
	var req sessionDomain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "login.gohtml", loginPage{Username: req.Username, Error: "Informe usuário e senha"})
		return
	}

	sess := currentSession(c)
	if _, err := h.sessions.Login(c.Request.Context(), sess, req); err != nil {
		switch {
		case errors.Is(err, sessionService.ErrInvalidLogin):
			c.HTML(http.StatusBadRequest, "login.gohtml", loginPage{Username: req.Username, Error: "Informe usuário e senha"})
		case errors.Is(err, client.ErrInvalidCredentials):
			c.HTML(http.StatusUnauthorized, "login.gohtml", loginPage{Username: req.Username, Error: "Usuário ou senha inválidos"})
		case errors.Is(err, client.ErrRequestFailed):
			logger.Error("Login: commerce API unavailable", err)
			c.HTML(http.StatusBadGateway, "login.gohtml", loginPage{Username: req.Username, Error: "Não foi possível entrar"})
		default:
			logger.Error("Login: service error", err)
			c.HTML(http.StatusInternalServerError, "login.gohtml", loginPage{Username: req.Username, Error: "Não foi possível entrar"})
		}
		return
	}

	h.views.Drop(sess.ID())
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *DashboardHandler) Logout(c *gin.Context) {
	sess := currentSession(c)
	if err := h.sessions.Logout(c.Request.Context(), sess); err != nil {
		c.String(http.StatusInternalServerError, "Falha ao sair")
		return
	}
	h.views.Drop(sess.ID())
	c.Redirect(http.StatusSeeOther, "/login")
}

// FormatMoney applies the price field's keystroke rule to raw.
func (h *DashboardHandler) FormatMoney(c *gin.Context) {
	in := money.New(decimal.Zero, nil)
	value := in.Keystroke(c.Query("raw"))
	c.JSON(http.StatusOK, gin.H{"value": value, "display": in.Display()})
}

// Dashboard renders the catalog. Modals open through ?modal=create,
// ?modal=edit&id=… and ?modal=delete&id=…; ?refresh=1 forces a fetch.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	sess := currentSession(c)
	view := h.views.View(sess.ID())

	if err := h.catalog.Load(c.Request.Context(), view, sess, c.Query("refresh") == "1"); err != nil && h.sessionExpired(c, err) {
		return
	}

	var page dashboardPage
	switch c.Query("modal") {
	case "create":
		f := form.NewProductForm(nil)
		page.Form = &f
	case "edit":
		if p, ok := h.findProduct(view, c.Query("id")); ok {
			f := form.NewProductForm(&p)
			page.Form = &f
		}
	case "delete":
		if p, ok := h.findProduct(view, c.Query("id")); ok {
			d := form.NewDeleteConfirmation(p)
			page.Delete = &d
		}
	}
	h.render(c, http.StatusOK, view, page)
}

func (h *DashboardHandler) CreateProduct(c *gin.Context) {
	sess := currentSession(c)
	view := h.views.View(sess.ID())

	var sub form.Submission
	if err := c.ShouldBind(&sub); err != nil {
		c.String(http.StatusBadRequest, "Formulário inválido")
		return
	}
	in, err := sub.Input()
	if err != nil {
		h.reopen(c, view, form.NewProductForm(nil), sub, err)
		return
	}

	if _, err := h.catalog.Create(c.Request.Context(), view, sess, in); err != nil && h.sessionExpired(c, err) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *DashboardHandler) UpdateProduct(c *gin.Context) {
	sess := currentSession(c)
	view := h.views.View(sess.ID())

	if err := h.catalog.Load(c.Request.Context(), view, sess, false); err != nil && h.sessionExpired(c, err) {
		return
	}
	p, ok := h.findProduct(view, c.Param("id"))
	if !ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	var sub form.Submission
	if err := c.ShouldBind(&sub); err != nil {
		c.String(http.StatusBadRequest, "Formulário inválido")
		return
	}
	in, err := sub.Input()
	if err != nil {
		h.reopen(c, view, form.NewProductForm(&p), sub, err)
		return
	}

	if _, err := h.catalog.Update(c.Request.Context(), view, sess, p.ID, in); err != nil && h.sessionExpired(c, err) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *DashboardHandler) DeleteProduct(c *gin.Context) {
	sess := currentSession(c)
	view := h.views.View(sess.ID())

	id := productDomain.ID(c.Param("id"))
	if err := h.catalog.Delete(c.Request.Context(), view, sess, id); err != nil && h.sessionExpired(c, err) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// BuyProduct starts the purchase and returns at once; the dashboard shows the
// product as busy until the checkout finishes.
func (h *DashboardHandler) BuyProduct(c *gin.Context) {
	sess := currentSession(c)
	view := h.views.View(sess.ID())

	if err := h.catalog.Load(c.Request.Context(), view, sess, false); err != nil && h.sessionExpired(c, err) {
		return
	}
	id := productDomain.ID(c.Param("id"))
	if _, err := h.catalog.Buy(context.WithoutCancel(c.Request.Context()), view, id); err != nil {
		logger.Warn("BuyProduct: purchase refused", "sid", sess.ID(), "product", id, "reason", err)
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *DashboardHandler) findProduct(view *catalogService.View, id string) (productDomain.Product, bool) {
	p, ok := view.Find(productDomain.ID(id))
	if !ok {
		view.Notify(catalogDomain.NoticeError, catalogService.MsgNotFound)
	}
	return p, ok
}

// reopen shows the form modal again with what the user typed and the
// validation error as a notice.
func (h *DashboardHandler) reopen(c *gin.Context, view *catalogService.View, f form.ProductForm, sub form.Submission, err error) {
	view.Notify(catalogDomain.NoticeError, validationMessage(err))
	f = f.Reopen(sub)
	h.render(c, http.StatusUnprocessableEntity, view, dashboardPage{Form: &f})
}

func (h *DashboardHandler) render(c *gin.Context, status int, view *catalogService.View, page dashboardPage) {
	page.Screen = view.Screen()
	for _, card := range page.Cards {
		if card.Busy {
			page.Busy = true
		}
	}
	c.HTML(status, "dashboard.gohtml", page)
}

// sessionExpired removes the stored token and sends the user to the login page
// when err means the session is gone. Other errors are already shown to the
// user as notices.
func (h *DashboardHandler) sessionExpired(c *gin.Context, err error) bool {
	if !sessionDomain.IsSessionError(err) {
		return false
	}
	sess := currentSession(c)
	// Clear logs its own failure; the redirect happens either way.
	_ = sess.Clear(c.Request.Context())
	h.views.Drop(sess.ID())
	c.Redirect(http.StatusSeeOther, "/login")
	return true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, form.ErrNameRequired):
		return "Informe o nome do produto"
	case errors.Is(err, form.ErrDescriptionRequired):
		return "Informe a descrição do produto"
	case errors.Is(err, form.ErrNegativeAmount):
		return "A quantidade não pode ser negativa"
	default:
		return "Dados do produto inválidos"
	}
}
