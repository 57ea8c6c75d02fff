package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

const checkoutLockPrefix = "checkout:"

type Deps struct {
	Catalog    port.CatalogRepository
	Addresses  port.AddressRepository
	Cache      port.CacheRepository
	Carts      *service.CartService
	Wishlists  *service.WishlistService
	Checkout   *service.CheckoutService
	Orders     *service.OrderService
	Management *Management

	CheckoutLockTTL time.Duration
}

type HTTPHandler struct {
	Deps
	auth *TokenVerifier
}

func NewHTTPHandler(deps Deps, auth *TokenVerifier) *HTTPHandler {
	if deps.CheckoutLockTTL <= 0 {
		deps.CheckoutLockTTL = 30 * time.Second
	}
	return &HTTPHandler{Deps: deps, auth: auth}
}

// Router builds the gin engine with every BFF route mounted.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.HealthCheck)

	public := r.Group("/api", OptionalAuthMiddleware(h.auth))
	{
		public.GET("/products", h.ListProducts)
		public.GET("/products/:id", h.GetProduct)
	}

	api := r.Group("/api", AuthMiddleware(h.auth))
	{
		api.GET("/cart", h.GetCart)
		api.DELETE("/cart", h.ClearCart)
		api.POST("/cart/items", h.AddCartItem)
		api.PUT("/cart/items", h.UpdateCartItem)
		api.DELETE("/cart/items", h.RemoveCartItem)

		api.GET("/wishlist", h.GetWishlist)
		api.POST("/wishlist/items", h.AddWishlistItem)
		api.DELETE("/wishlist/items", h.RemoveWishlistItem)
		api.POST("/wishlist/items/move", h.MoveWishlistItem)

		api.POST("/checkout", h.PlaceOrder)

		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:token", h.GetOrder)
		api.POST("/orders/:token/cancel", h.CancelOrder)
	}

	mgmt := api.Group("/management", RequireOperator())
	{
		mgmt.GET("/orders", h.ListAllOrders)
		mgmt.PUT("/orders/:token/status", h.UpdateOrderStatus)
		mgmt.POST("/orders/:token/finalize", h.FinalizeOrder)
		mgmt.GET("/sales", h.ListSales)
	}
	return r
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	var filter domain.ProductFilter
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid category_id %q", v))
			return
		}
		filter.CategoryID = id
	}
	for param, dst := range map[string]*decimal.NullDecimal{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid %s %q", param, v))
			return
		}
		*dst = decimal.NewNullDecimal(d)
	}

	products, err := h.Catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, newProductView(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Errorf("invalid product id %q", c.Param("id")))
		return
	}
	p, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductView(p))
}

func (h *HTTPHandler) GetCart(c *gin.Context) {
	cart, err := h.Carts.Load(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (h *HTTPHandler) ClearCart(c *gin.Context) {
	cart, err := h.Carts.Clear(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (h *HTTPHandler) AddCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.Carts.AddLine(c.Request.Context(), sessionFrom(c), req.ProductID, req.Color, req.size(), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (h *HTTPHandler) UpdateCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.Carts.UpdateQuantity(c.Request.Context(), sessionFrom(c), req.key(), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (h *HTTPHandler) RemoveCartItem(c *gin.Context) {
	var req lineKeyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.Carts.RemoveLine(c.Request.Context(), sessionFrom(c), req.key())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(cart))
}

func (h *HTTPHandler) GetWishlist(c *gin.Context) {
	w, err := h.Wishlists.Load(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWishlistView(w))
}

func (h *HTTPHandler) AddWishlistItem(c *gin.Context) {
	var req lineKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := h.Wishlists.Add(c.Request.Context(), sessionFrom(c), req.ProductID, req.Color, req.size())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWishlistView(w))
}

func (h *HTTPHandler) RemoveWishlistItem(c *gin.Context) {
	var req lineKeyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := h.Wishlists.Remove(c.Request.Context(), sessionFrom(c), req.key())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWishlistView(w))
}

func (h *HTTPHandler) MoveWishlistItem(c *gin.Context) {
	var req lineKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, w, err := h.Wishlists.MoveToCart(c.Request.Context(), sessionFrom(c), req.key())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": newCartView(cart), "wishlist": newWishlistView(w)})
}

// PlaceOrder serializes checkouts per session with a short-lived lock so a
// double submit cannot create two orders from one cart.
func (h *HTTPHandler) PlaceOrder(c *gin.Context) {
	defer recordOperation(c, "checkout")

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	sess := sessionFrom(c)

	lockKey := checkoutLockPrefix + sess.ID
	acquired, err := h.Cache.SetIdempotency(ctx, lockKey, h.CheckoutLockTTL)
	if err != nil {
		writeError(c, fmt.Errorf("%w: checkout lock: %v", domain.ErrUnavailable, err))
		return
	}
	if !acquired {
		writeError(c, service.ErrCheckoutInProgress)
		return
	}
	defer func() {
		if err := h.Cache.ReleaseIdempotency(context.WithoutCancel(ctx), lockKey); err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("failed to release checkout lock")
		}
	}()

	cart, err := h.Carts.Load(ctx, sess)
	if err != nil {
		writeError(c, err)
		return
	}

	addr := req.Address.toDomain()
	if addr == nil {
		if addr, err = h.savedAddress(ctx, sess); err != nil {
			writeError(c, err)
			return
		}
	}

	order, err := h.Checkout.PlaceOrder(ctx, sess, cart, addr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newOrderView(order))
}

func (h *HTTPHandler) savedAddress(ctx context.Context, sess domain.Session) (*domain.Address, error) {
	if h.Addresses == nil {
		return nil, nil
	}
	addr, err := h.Addresses.GetAddress(ctx, sess)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	orders, err := h.Orders.List(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderViews(orders))
}

func (h *HTTPHandler) GetOrder(c *gin.Context) {
	order, err := h.Orders.Get(c.Request.Context(), sessionFrom(c), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order))
}

func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	defer recordOperation(c, "cancel")

	order, err := h.Orders.CancelByToken(c.Request.Context(), sessionFrom(c), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderView(order))
}

func (h *HTTPHandler) ListAllOrders(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderViews(orders))
}

func (h *HTTPHandler) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.Management.UpdateStatus(c.Request.Context(), sessionFrom(c), c.Param("token"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) FinalizeOrder(c *gin.Context) {
	view, err := h.Management.Finalize(c.Request.Context(), sessionFrom(c), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	code := http.StatusCreated
	if view.Outcome == service.OutcomeAlreadyExists.String() {
		code = http.StatusOK
	}
	c.JSON(code, view)
}

func (h *HTTPHandler) ListSales(c *gin.Context) {
	view, err := h.Management.Sales(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
