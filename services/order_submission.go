package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemInput struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
	OptionIDs []uint `json:"option_ids"`
}

type SubmitOrderInput struct {
	Token        string           `json:"token"`
	Items        []OrderItemInput `json:"items"`
	ClientNotes  string           `json:"client_notes"`
	KitchenNotes string           `json:"kitchen_notes"`
}

// OrderSubmission validates, prices and persists an order against an
// ACTIVE session in a single transaction.
type OrderSubmission struct {
	db       *gorm.DB
	sessions *SessionRegistry
	catalog  *CatalogResolver
	mesas    MesaDirectory
	pricing  PricingPolicy
	now      Clock
	notify   Notifier
	log      *logrus.Logger
}

func NewOrderSubmission(deps Deps, sessions *SessionRegistry, catalog *CatalogResolver, mesas MesaDirectory, pricing PricingPolicy) *OrderSubmission {
	deps = deps.withDefaults()
	if pricing == nil {
		pricing = NoAdjustments{}
	}
	return &OrderSubmission{
		db:       deps.DB,
		sessions: sessions,
		catalog:  catalog,
		mesas:    mesas,
		pricing:  pricing,
		now:      deps.Clock,
		notify:   deps.Notifier,
		log:      deps.Logger,
	}
}

func (s *OrderSubmission) Submit(ctx context.Context, input SubmitOrderInput) (*models.Order, error) {
	if err := validateOrderShape(input); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.sessions.validateActive(ctx, tx, input.Token, true)
		if err != nil {
			return err
		}
		placement, err := s.mesas.Placement(ctx, tx, session.TableID)
		if err != nil {
			return err
		}

		catalog := s.catalog.WithDB(tx)
		lines := make([]models.OrderLineItem, 0, len(input.Items))
		priced := make([]PricedLine, 0, len(input.Items))
		subtotal := decimal.Zero
		for _, item := range input.Items {
			line, err := priceLine(ctx, catalog, placement.LocationID, item)
			if err != nil {
				return err
			}
			subtotal = subtotal.Add(line.LineTotal)
			lines = append(lines, *line)
			priced = append(priced, PricedLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				LineTotal: line.LineTotal,
			})
		}

		taxes, discounts, err := s.pricing.Adjust(ctx, *placement, subtotal, priced)
		if err != nil {
			return fmt.Errorf("apply pricing policy: %w", err)
		}

		order = models.Order{
			SessionID:    session.ID,
			TableID:      session.TableID,
			Status:       models.OrderStatusPending,
			Subtotal:     utils.RoundMoney(subtotal),
			Taxes:        utils.RoundMoney(taxes),
			Discounts:    utils.RoundMoney(discounts),
			Total:        orderTotal(subtotal, taxes, discounts),
			ClientNotes:  input.ClientNotes,
			KitchenNotes: input.KitchenNotes,
			CreatedAt:    s.now(),
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range lines {
			lines[i].OrderID = order.ID
			options := lines[i].Options
			if err := tx.Omit(clause.Associations).Create(&lines[i]).Error; err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}
			for j := range options {
				options[j].LineItemID = lines[i].ID
			}
			if len(options) > 0 {
				if err := tx.Omit(clause.Associations).Create(&options).Error; err != nil {
					return fmt.Errorf("insert order line options: %w", err)
				}
			}
			lines[i].Options = options
		}
		order.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"session_id": order.SessionID,
		"table_id":   order.TableID,
		"lines":      len(order.Lines),
		"total":      utils.FormatMoney(order.Total),
	}).Info("order submitted")
	s.notify.Publish(EventOrderCreated, order)
	return &order, nil
}

func validateOrderShape(input SubmitOrderInput) error {
	if len(input.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	for i, item := range input.Items {
		if item.ProductID == 0 {
			return invalid(fmt.Sprintf("items[%d].product_id", i), "is required")
		}
		if item.Quantity < 1 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		seen := make(map[uint]struct{}, len(item.OptionIDs))
		for _, id := range item.OptionIDs {
			if _, dup := seen[id]; dup {
				return invalid(fmt.Sprintf("items[%d].option_ids", i), fmt.Sprintf("option %d repeated", id))
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

// priceLine resolves one requested item at the location and returns the
// unsaved line with its option snapshots.
func priceLine(ctx context.Context, catalog *CatalogResolver, locationID uint, item OrderItemInput) (*models.OrderLineItem, error) {
	product, err := catalog.ResolveProduct(ctx, item.ProductID, locationID)
	if err != nil {
		return nil, err
	}
	if !product.Available {
		return nil, &ProductUnavailableError{ProductID: product.ProductID, LocationID: locationID, Reason: "product is out of stock"}
	}

	applicable, err := catalog.ApplicableOptionTypes(ctx, item.ProductID, locationID)
	if err != nil {
		return nil, err
	}
	allowed := make(map[uint]bool, len(applicable))
	for _, id := range applicable {
		allowed[id] = true
	}

	counts := make(map[uint]int)
	options := make([]models.OrderLineOption, 0, len(item.OptionIDs))
	adjustments := make([]decimal.Decimal, 0, len(item.OptionIDs))
	for _, optionID := range item.OptionIDs {
		opt, err := catalog.ResolveOption(ctx, optionID, locationID)
		if err != nil {
			var selErr *OptionSelectionError
			if errors.As(err, &selErr) {
				selErr.ProductID = item.ProductID
			}
			return nil, err
		}
		if !opt.Available {
			return nil, &OptionSelectionError{ProductID: item.ProductID, OptionTypeID: opt.OptionTypeID, OptionID: optionID, Reason: "option is out of stock"}
		}
		if !allowed[opt.OptionTypeID] {
			return nil, &OptionSelectionError{ProductID: item.ProductID, OptionTypeID: opt.OptionTypeID, OptionID: optionID, Reason: "option does not apply to this product"}
		}
		counts[opt.OptionTypeID]++
		adjustments = append(adjustments, opt.PriceAdjustment)
		options = append(options, models.OrderLineOption{
			ProductOptionID: opt.OptionID,
			OptionName:      opt.Name,
			PriceAdjustment: utils.RoundMoney(opt.PriceAdjustment),
		})
	}

	for _, typeID := range applicable {
		rules, err := catalog.ResolveOptionTypeRules(ctx, typeID)
		if err != nil {
			return nil, err
		}
		if !rules.Allows(counts[typeID]) {
			return nil, &OptionSelectionError{
				ProductID:    item.ProductID,
				OptionTypeID: typeID,
				Reason:       cardinalityReason(*rules, counts[typeID]),
			}
		}
	}

	return &models.OrderLineItem{
		ProductID:            product.ProductID,
		ProductName:          product.Name,
		Quantity:             item.Quantity,
		UnitPrice:            utils.RoundMoney(product.Price),
		LineTotal:            lineTotal(item.Quantity, product.Price, adjustments),
		PersonalizationNotes: item.Notes,
		Options:              options,
	}, nil
}

func cardinalityReason(rules OptionTypeRules, got int) string {
	if rules.Max == nil {
		return fmt.Sprintf("%s requires at least %d selection(s), got %d", rules.Name, rules.Min, got)
	}
	return fmt.Sprintf("%s requires between %d and %d selection(s), got %d", rules.Name, rules.Min, *rules.Max, got)
}
