package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

type SessionHistory struct {
	Token        string         `json:"token"`
	TableID      uint           `json:"table_id"`
	SessionState string         `json:"session_state"`
	TotalOrders  int            `json:"total_orders"`
	Orders       []models.Order `json:"orders"`
}

// OrderHistoryQuery reads the orders of a session. Once the session is
// finalized its orders are hidden from the table.
type OrderHistoryQuery struct {
	db       *gorm.DB
	sessions *SessionRegistry
}

func NewOrderHistoryQuery(db *gorm.DB, sessions *SessionRegistry) *OrderHistoryQuery {
	return &OrderHistoryQuery{db: db, sessions: sessions}
}

func (q *OrderHistoryQuery) GetHistory(ctx context.Context, token string) (*SessionHistory, error) {
	session, err := q.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	history := &SessionHistory{
		Token:        session.Token,
		TableID:      session.TableID,
		SessionState: session.State,
		Orders:       []models.Order{},
	}
	if !session.IsActive() {
		return history, nil
	}

	orders, err := ordersWithLines(ctx, q.db, session.ID)
	if err != nil {
		return nil, err
	}
	history.Orders = orders
	history.TotalOrders = len(orders)
	return history, nil
}

// ordersWithLines loads a session's orders with their lines and line options.
func ordersWithLines(ctx context.Context, db *gorm.DB, sessionID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Options", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("load orders for session %d: %w", sessionID, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}
