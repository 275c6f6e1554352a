package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, tracking_number, customer_name, email, phone_number,
	extra_requests, payment_method, receipt_path, status, total_amount,
	created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.TrackingNumber, &o.CustomerName, &o.Email, &o.PhoneNumber,
		&o.ExtraRequests, &o.PaymentMethod, &o.ReceiptPath, &o.Status,
		&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

type CreateOrderParams struct {
	ID             uuid.UUID
	TrackingNumber string
	CustomerName   string
	Email          string
	PhoneNumber    string
	ExtraRequests  pgtype.Text
	PaymentMethod  string
	ReceiptPath    pgtype.Text
	TotalAmount    pgtype.Numeric
}

// CreateOrder inserts a new order in status pending.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (id, tracking_number, customer_name, email, phone_number,
			extra_requests, payment_method, receipt_path, status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
		RETURNING `+orderColumns,
		arg.ID, arg.TrackingNumber, arg.CustomerName, arg.Email, arg.PhoneNumber,
		arg.ExtraRequests, arg.PaymentMethod, arg.ReceiptPath, arg.TotalAmount,
	)
	return scanOrder(row)
}

type CreateOrderItemParams struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Name     string
	NameAr   string
	Price    pgtype.Numeric
	Quantity int32
	Position int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (id, order_id, name, name_ar, price, quantity, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, order_id, name, name_ar, price, quantity, position`,
		arg.ID, arg.OrderID, arg.Name, arg.NameAr, arg.Price, arg.Quantity, arg.Position,
	)
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.Name, &it.NameAr, &it.Price, &it.Quantity, &it.Position)
	return it, err
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (q *Queries) GetOrderByTrackingNumber(ctx context.Context, trackingNumber string) (Order, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tracking_number = $1`, trackingNumber)
	return scanOrder(row)
}

// ListOrders returns all orders newest first.
func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListOrderItemsByOrder returns line items in insertion order.
func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, name, name_ar, price, quantity, position
		FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.NameAr, &it.Price, &it.Quantity, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	PrevStatus string
}

// UpdateOrderStatus advances an order's status. The WHERE clause pins the
// previous status so a concurrent transition surfaces as pgx.ErrNoRows
// instead of silently overwriting.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+orderColumns,
		arg.ID, arg.Status, arg.PrevStatus,
	)
	return scanOrder(row)
}

// OrderAnalytics aggregates the dashboard stats in a single query.
func (q *Queries) OrderAnalytics(ctx context.Context) (OrderAnalyticsRow, error) {
	var a OrderAnalyticsRow
	err := q.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_amount), 0),
			COUNT(*),
			COALESCE(AVG(total_amount), 0),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM orders`,
	).Scan(&a.TotalRevenue, &a.TotalOrders, &a.AverageOrderValue, &a.PendingOrders)
	return a, err
}
