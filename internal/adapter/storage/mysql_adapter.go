package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

var ErrOptimisticLock = &domain.Error{Kind: domain.ErrConflict, Msg: "optimistic lock conflict"}

// MySQLAdapter serves orders and sales records straight from the shop
// database, bypassing the REST API.
type MySQLAdapter struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMySQLAdapter(db *sqlx.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, now: time.Now}
}

type orderRow struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	Status        string          `db:"status"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	StreetAddress string          `db:"street_address"`
	City          string          `db:"city"`
	State         string          `db:"state"`
	PostalCode    string          `db:"postal_code"`
	Country       string          `db:"country"`
	BuyerName     string          `db:"buyer_name"`
	BuyerEmail    string          `db:"buyer_email"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type orderItemRow struct {
	OrderID     int64           `db:"order_id"`
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	Color       string          `db:"color"`
	Size        string          `db:"size"`
	Price       decimal.Decimal `db:"price"`
}

type salesRow struct {
	ID         int64           `db:"id"`
	OrderID    int64           `db:"order_id"`
	UserID     int64           `db:"user_id"`
	BuyerName  string          `db:"buyer_name"`
	DateOfSale time.Time       `db:"date_of_sale"`
	Price      decimal.Decimal `db:"price"`
}

const selectOrders = `
	SELECT o.id, o.user_id, o.status, o.total_price,
	       o.street_address, o.city, o.state, o.postal_code, o.country,
	       COALESCE(u.full_name, '') AS buyer_name, COALESCE(u.email, '') AS buyer_email,
	       o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

func (r orderRow) toDomain(items []orderItemRow) (domain.Order, error) {
	status, err := domain.ParseOrderStatus(r.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %d: %w", r.ID, err)
	}
	order := domain.Order{
		ID:     r.ID,
		UserID: r.UserID,
		Status: status,
		Total:  r.TotalPrice,
		Lines:  make([]domain.OrderLine, 0, len(items)),
		Address: &domain.Address{
			StreetAddress: r.StreetAddress,
			City:          r.City,
			State:         r.State,
			PostalCode:    r.PostalCode,
			Country:       r.Country,
		},
		Buyer:     domain.Buyer{FullName: r.BuyerName, Email: r.BuyerEmail},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, it := range items {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Color:       it.Color,
			Size:        domain.Size(it.Size),
			Price:       it.Price,
		})
	}
	return order, nil
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, sess domain.Session, draft domain.OrderDraft) (domain.Order, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := m.now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, status, total_price, street_address, city, state, postal_code, country, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		draft.UserID, draft.Status, draft.Total,
		draft.Address.StreetAddress, draft.Address.City, draft.Address.State, draft.Address.PostalCode, draft.Address.Country,
		now, now,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range draft.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, color, size, price)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, l.ProductID, l.ProductName, l.Quantity, l.Color, l.Size, l.Price,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	order, err := m.getOrder(ctx, tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

func (m *MySQLAdapter) getOrder(ctx context.Context, q sqlx.QueryerContext, id int64) (domain.Order, error) {
	var row orderRow
	err := sqlx.GetContext(ctx, q, &row, selectOrders+` WHERE o.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order: %w", err)
	}

	var items []orderItemRow
	if err := sqlx.SelectContext(ctx, q, &items, `
		SELECT order_id, product_id, product_name, quantity, color, size, price
		FROM order_items WHERE order_id = ? ORDER BY id`, id); err != nil {
		return domain.Order{}, fmt.Errorf("query order items: %w", err)
	}
	return row.toDomain(items)
}

// GetOrder hides other users' orders from non-operator sessions.
func (m *MySQLAdapter) GetOrder(ctx context.Context, sess domain.Session, id int64) (domain.Order, error) {
	order, err := m.getOrder(ctx, m.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !sess.IsOperator() && order.UserID != sess.UserID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (m *MySQLAdapter) listOrders(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	var rows []orderRow
	if err := m.db.SelectContext(ctx, &rows, selectOrders+where+` ORDER BY o.created_at DESC, o.id DESC`, args...); err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	if len(rows) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	query, inArgs, err := sqlx.In(`
		SELECT order_id, product_id, product_name, quantity, color, size, price
		FROM order_items WHERE order_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}
	var items []orderItemRow
	if err := m.db.SelectContext(ctx, &items, m.db.Rebind(query), inArgs...); err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	byOrder := make(map[int64][]orderItemRow, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.toDomain(byOrder[r.ID])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *MySQLAdapter) ListOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	return m.listOrders(ctx, ` WHERE o.user_id = ?`, sess.UserID)
}

func (m *MySQLAdapter) ListAllOrders(ctx context.Context, sess domain.Session) ([]domain.Order, error) {
	return m.listOrders(ctx, "")
}

// UpdateStatus only applies when the row is still in from, so two operators
// racing on the same order cannot both win.
func (m *MySQLAdapter) UpdateStatus(ctx context.Context, sess domain.Session, id int64, from, to domain.OrderStatus) (domain.Order, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND status = ?`,
		to, m.now().UTC(), id, from,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.Order{}, m.missOrConflict(ctx, tx, id)
	}

	order, err := m.getOrder(ctx, tx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit status: %w", err)
	}
	return order, nil
}

func (m *MySQLAdapter) CancelOrder(ctx context.Context, sess domain.Session, id int64) error {
	query := `
		UPDATE orders
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND status IN (?, ?)`
	args := []any{domain.OrderStatusCancelled, m.now().UTC(), id, domain.OrderStatusCreated, domain.OrderStatusPending}
	if !sess.IsOperator() {
		query += ` AND user_id = ?`
		args = append(args, sess.UserID)
	}

	result, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return m.missOrConflict(ctx, m.db, id)
	}
	return nil
}

func (m *MySQLAdapter) missOrConflict(ctx context.Context, q sqlx.QueryerContext, id int64) error {
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, id); err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return domain.ErrOrderNotFound
	}
	return ErrOptimisticLock
}

func (m *MySQLAdapter) CreateSalesRecord(ctx context.Context, sess domain.Session, draft domain.SalesRecordDraft) (domain.SalesRecord, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO sales_records (order_id, user_id, buyer_name, date_of_sale, price)
		VALUES (?, ?, ?, ?, ?)`,
		draft.OrderID, draft.UserID, draft.BuyerName, draft.DateOfSale.UTC(), draft.Price,
	)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return domain.SalesRecord{}, fmt.Errorf("insert sales record for order %d: %w", draft.OrderID, domain.ErrDuplicate)
	}
	if err != nil {
		return domain.SalesRecord{}, fmt.Errorf("insert sales record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.SalesRecord{}, fmt.Errorf("insert sales record: %w", err)
	}
	return domain.SalesRecord{
		ID:         id,
		OrderID:    draft.OrderID,
		UserID:     draft.UserID,
		BuyerName:  draft.BuyerName,
		DateOfSale: draft.DateOfSale,
		Price:      draft.Price,
	}, nil
}

func (m *MySQLAdapter) ListSalesRecords(ctx context.Context, sess domain.Session) ([]domain.SalesRecord, error) {
	var rows []salesRow
	if err := m.db.SelectContext(ctx, &rows, `
		SELECT id, order_id, user_id, buyer_name, date_of_sale, price
		FROM sales_records ORDER BY date_of_sale DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("query sales records: %w", err)
	}
	records := make([]domain.SalesRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, domain.SalesRecord{
			ID:         r.ID,
			OrderID:    r.OrderID,
			UserID:     r.UserID,
			BuyerName:  r.BuyerName,
			DateOfSale: r.DateOfSale,
			Price:      r.Price,
		})
	}
	return records, nil
}
