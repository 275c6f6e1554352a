// Package store is the Postgres persistence layer for orders and shop
// settings. Money columns are numeric(10,2) and surface as pgtype.Numeric;
// conversion to decimal happens at the service/handler boundary.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same queries run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs all storefront queries against the given DBTX.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// --- Models ---

type Order struct {
	ID             uuid.UUID
	TrackingNumber string
	CustomerName   string
	Email          string
	PhoneNumber    string
	ExtraRequests  pgtype.Text
	PaymentMethod  string
	ReceiptPath    pgtype.Text
	Status         string
	TotalAmount    pgtype.Numeric
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Name     string
	NameAr   string
	Price    pgtype.Numeric
	Quantity int32
	Position int32
}

type Settings struct {
	IsOpen          bool
	ClosedMessageEn string
	ClosedMessageAr string
	OpeningHours    string
	OpeningHoursAr  string
}

type Admin struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
}

type OrderAnalyticsRow struct {
	TotalRevenue      pgtype.Numeric
	TotalOrders       int64
	AverageOrderValue pgtype.Numeric
	PendingOrders     int64
}
