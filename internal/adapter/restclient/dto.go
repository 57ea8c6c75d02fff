package restclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// apiTime accepts the timestamp layouts the API emits, with or without zone.
type apiTime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unsupported time %q", s)
}

func (t apiTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// apiPrice is sent as a JSON number; the API accepts quoted or bare prices.
type apiPrice struct {
	decimal.Decimal
}

func (p apiPrice) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

type productDTO struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       apiPrice `json:"price"`
	ImageURL    string   `json:"image_url"`
	Category    *string  `json:"category"`
	CreatedAt   apiTime  `json:"created_at"`
	UpdatedAt   apiTime  `json:"updated_at"`
}

func (p productDTO) toDomain() domain.Product {
	out := domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Decimal,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	return out
}

type cartItemDTO struct {
	ID       int64      `json:"id"`
	Product  productDTO `json:"product"`
	Quantity int        `json:"quantity"`
	Color    string     `json:"color"`
	Size     string     `json:"size"`
}

func (i cartItemDTO) toDomain() domain.CartLine {
	p := i.Product.toDomain()
	return domain.CartLine{
		ItemID:    i.ID,
		Product:   p,
		Color:     i.Color,
		Size:      domain.Size(i.Size),
		Quantity:  i.Quantity,
		UnitPrice: p.Price,
	}
}

type cartDTO struct {
	ID     int64         `json:"id"`
	UserID int64         `json:"user_id"`
	Items  []cartItemDTO `json:"items"`
}

type addCartItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type wishlistItemDTO struct {
	ID      int64      `json:"id"`
	Product productDTO `json:"product"`
	Color   string     `json:"color"`
	Size    string     `json:"size"`
}

func (i wishlistItemDTO) toDomain() domain.WishlistLine {
	return domain.WishlistLine{
		ItemID:  i.ID,
		Product: i.Product.toDomain(),
		Color:   i.Color,
		Size:    domain.Size(i.Size),
	}
}

type addWishlistItemRequest struct {
	ProductID int64  `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type addressDTO struct {
	StreetAddress string  `json:"street_address"`
	City          string  `json:"city"`
	State         *string `json:"state,omitempty"`
	PostalCode    string  `json:"postal_code"`
	Country       string  `json:"country"`
}

func (a addressDTO) toDomain() domain.Address {
	out := domain.Address{
		StreetAddress: a.StreetAddress,
		City:          a.City,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
	}
	if a.State != nil {
		out.State = *a.State
	}
	return out
}

func addressFromDomain(a domain.Address) addressDTO {
	out := addressDTO{
		StreetAddress: a.StreetAddress,
		City:          a.City,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
	}
	if a.State != "" {
		state := a.State
		out.State = &state
	}
	return out
}

type orderItemDTO struct {
	ID          int64    `json:"id,omitempty"`
	ProductID   int64    `json:"product_id"`
	ProductName string   `json:"product_name,omitempty"`
	Quantity    int      `json:"quantity"`
	Color       *string  `json:"color"`
	Size        *string  `json:"size"`
	Price       apiPrice `json:"price"`
}

type orderUserDTO struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type orderDTO struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"user_id"`
	Status     string         `json:"status"`
	TotalPrice apiPrice       `json:"total_price"`
	Items      []orderItemDTO `json:"items"`
	User       *orderUserDTO  `json:"user"`
	Address    *addressDTO    `json:"address"`
	CreatedAt  apiTime        `json:"created_at"`
	UpdatedAt  apiTime        `json:"updated_at"`
}

func (o orderDTO) toDomain() (domain.Order, error) {
	status, err := domain.ParseOrderStatus(o.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %d: %w", o.ID, err)
	}
	out := domain.Order{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    status,
		Total:     o.TotalPrice.Decimal,
		Lines:     make([]domain.OrderLine, 0, len(o.Items)),
		CreatedAt: o.CreatedAt.Time,
		UpdatedAt: o.UpdatedAt.Time,
	}
	for _, it := range o.Items {
		line := domain.OrderLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price.Decimal,
		}
		if it.Color != nil {
			line.Color = *it.Color
		}
		if it.Size != nil {
			line.Size = domain.Size(*it.Size)
		}
		out.Lines = append(out.Lines, line)
	}
	if o.User != nil {
		out.Buyer = domain.Buyer{FullName: o.User.FullName, Email: o.User.Email}
	}
	if o.Address != nil {
		addr := o.Address.toDomain()
		out.Address = &addr
	}
	return out, nil
}

func ordersToDomain(in []orderDTO) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(in))
	for _, o := range in {
		order, err := o.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

type createOrderRequest struct {
	Status     string         `json:"status"`
	TotalPrice apiPrice       `json:"total_price"`
	Items      []orderItemDTO `json:"items"`
	Address    addressDTO     `json:"address"`
}

func createOrderFromDraft(d domain.OrderDraft) createOrderRequest {
	req := createOrderRequest{
		Status:     d.Status.String(),
		TotalPrice: apiPrice{d.Total},
		Items:      make([]orderItemDTO, 0, len(d.Lines)),
		Address:    addressFromDomain(d.Address),
	}
	for _, l := range d.Lines {
		color, size := l.Color, string(l.Size)
		req.Items = append(req.Items, orderItemDTO{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Color:       &color,
			Size:        &size,
			Price:       apiPrice{l.Price},
		})
	}
	return req
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type salesRecordDTO struct {
	ID         int64    `json:"id,omitempty"`
	OrderID    int64    `json:"order_id"`
	UserID     int64    `json:"user_id"`
	BuyerName  string   `json:"buyer_name"`
	DateOfSale apiTime  `json:"date_of_sale"`
	Price      apiPrice `json:"price"`
}

func (r salesRecordDTO) toDomain() domain.SalesRecord {
	return domain.SalesRecord{
		ID:         r.ID,
		OrderID:    r.OrderID,
		UserID:     r.UserID,
		BuyerName:  r.BuyerName,
		DateOfSale: r.DateOfSale.Time,
		Price:      r.Price.Decimal,
	}
}
