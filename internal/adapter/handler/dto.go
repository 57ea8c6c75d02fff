package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/token"
)

type lineKeyRequest struct {
	ProductID int64  `json:"product_id" form:"product_id" binding:"required"`
	Color     string `json:"color" form:"color" binding:"required"`
	Size      string `json:"size" form:"size" binding:"required"`
}

func (r lineKeyRequest) size() domain.Size {
	return domain.Size(strings.ToUpper(strings.TrimSpace(r.Size)))
}

func (r lineKeyRequest) key() domain.LineKey {
	return domain.NewLineKey(r.ProductID, r.Color, r.size())
}

type cartItemRequest struct {
	lineKeyRequest
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	Address *addressPayload `json:"address"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type addressPayload struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

func (p *addressPayload) toDomain() *domain.Address {
	if p == nil {
		return nil
	}
	return &domain.Address{
		StreetAddress: p.StreetAddress,
		City:          p.City,
		State:         p.State,
		PostalCode:    p.PostalCode,
		Country:       p.Country,
	}
}

func newAddressPayload(a *domain.Address) *addressPayload {
	if a == nil {
		return nil
	}
	return &addressPayload{
		StreetAddress: a.StreetAddress,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
	}
}

// Money is rendered as a JSON number.
type Money struct {
	decimal.Decimal
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

type productView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Money  `json:"price"`
	ImageURL    string `json:"image_url,omitempty"`
	Category    string `json:"category,omitempty"`
}

func newProductView(p domain.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       Money{p.Price},
		ImageURL:    p.ImageURL,
		Category:    p.Category,
	}
}

type cartLineView struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Color       string      `json:"color"`
	Size        domain.Size `json:"size"`
	Quantity    int         `json:"quantity"`
	UnitPrice   Money       `json:"unit_price"`
	Subtotal    Money       `json:"subtotal"`
}

type cartView struct {
	Lines []cartLineView `json:"lines"`
	Total Money          `json:"total"`
}

func newCartView(c *domain.Cart) cartView {
	view := cartView{Lines: []cartLineView{}, Total: Money{decimal.Zero}}
	if c == nil {
		return view
	}
	for _, l := range c.Lines() {
		view.Lines = append(view.Lines, cartLineView{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Color:       l.Color,
			Size:        l.Size,
			Quantity:    l.Quantity,
			UnitPrice:   Money{l.UnitPrice},
			Subtotal:    Money{l.Subtotal()},
		})
	}
	view.Total = Money{c.Total()}
	return view
}

type wishlistLineView struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Color       string      `json:"color"`
	Size        domain.Size `json:"size"`
	Price       Money       `json:"price"`
}

type wishlistView struct {
	Lines []wishlistLineView `json:"lines"`
}

func newWishlistView(w *domain.Wishlist) wishlistView {
	view := wishlistView{Lines: []wishlistLineView{}}
	if w == nil {
		return view
	}
	for _, l := range w.Lines() {
		view.Lines = append(view.Lines, wishlistLineView{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Color:       l.Color,
			Size:        l.Size,
			Price:       Money{l.Product.Price},
		})
	}
	return view
}

type OrderLineView struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	Color       string      `json:"color"`
	Size        domain.Size `json:"size"`
	Price       Money       `json:"price"`
}

// OrderView is the public shape of an order. The internal id never leaves
// the process.
type OrderView struct {
	Token     string          `json:"token"`
	Status    string          `json:"status"`
	Total     Money           `json:"total"`
	Lines     []OrderLineView `json:"lines"`
	Address   *addressPayload `json:"address,omitempty"`
	BuyerName string          `json:"buyer_name,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newOrderView(o domain.Order) OrderView {
	view := OrderView{
		Token:     o.Token,
		Status:    o.Status.String(),
		Total:     Money{o.Total},
		Lines:     make([]OrderLineView, 0, len(o.Lines)),
		Address:   newAddressPayload(o.Address),
		BuyerName: o.Buyer.FullName,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, l := range o.Lines {
		view.Lines = append(view.Lines, OrderLineView{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Color:       l.Color,
			Size:        l.Size,
			Price:       Money{l.Price},
		})
	}
	return view
}

func newOrderViews(orders []domain.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderView(o))
	}
	return out
}

type SalesRecordView struct {
	OrderToken string    `json:"order_token"`
	BuyerName  string    `json:"buyer_name"`
	DateOfSale time.Time `json:"date_of_sale"`
	Price      Money     `json:"price"`
}

func newSalesRecordView(codec *token.Codec, r domain.SalesRecord) (SalesRecordView, error) {
	tok, err := codec.Encode(r.OrderID)
	if err != nil {
		return SalesRecordView{}, err
	}
	return SalesRecordView{
		OrderToken: tok,
		BuyerName:  r.BuyerName,
		DateOfSale: r.DateOfSale,
		Price:      Money{r.Price},
	}, nil
}

type SalesView struct {
	Records []SalesRecordView `json:"records"`
	Total   Money             `json:"total"`
}

type FinalizeView struct {
	Outcome string           `json:"outcome"`
	Record  *SalesRecordView `json:"record,omitempty"`
}
