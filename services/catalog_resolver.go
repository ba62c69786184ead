package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-ordering/models"
	"gorm.io/gorm"
)

// EffectiveProduct is a product as seen from one location.
type EffectiveProduct struct {
	ProductID   uint              `json:"product_id"`
	LocationID  uint              `json:"location_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Available   bool              `json:"available"`
	Activation  models.Activation `json:"-"`
}

// EffectiveOption is a product option as seen from one location.
type EffectiveOption struct {
	OptionID        uint            `json:"option_id"`
	OptionTypeID    uint            `json:"option_type_id"`
	LocationID      uint            `json:"location_id"`
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	Available       bool            `json:"available"`
}

// OptionTypeRules bounds how many options of one type a line may carry.
// A nil Max means unbounded.
type OptionTypeRules struct {
	OptionTypeID uint   `json:"option_type_id"`
	Name         string `json:"name"`
	Min          int    `json:"min"`
	Max          *int   `json:"max"`
}

// Allows reports whether count selections satisfy the rules.
func (r OptionTypeRules) Allows(count int) bool {
	if count < r.Min {
		return false
	}
	return r.Max == nil || count <= *r.Max
}

type CatalogResolver struct {
	db *gorm.DB
}

func NewCatalogResolver(db *gorm.DB) *CatalogResolver {
	return &CatalogResolver{db: db}
}

// WithDB returns a resolver reading through db, typically an open transaction.
func (c *CatalogResolver) WithDB(db *gorm.DB) *CatalogResolver {
	return &CatalogResolver{db: db}
}

func (c *CatalogResolver) ResolveProduct(ctx context.Context, productID, locationID uint) (*EffectiveProduct, error) {
	var product models.Product
	if err := c.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product", productID)
		}
		return nil, fmt.Errorf("load product %d: %w", productID, err)
	}

	override, found, err := loadOverride[models.ProductLocation](ctx, c.db,
		"product_id = ? AND location_id = ?", productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("load product %d override at location %d: %w", productID, locationID, err)
	}
	activation := models.ActivationOf(found, found && override.Active)
	if activation != models.ActivationActive {
		return nil, &ProductUnavailableError{
			ProductID:  productID,
			LocationID: locationID,
			Reason:     "product is " + activation.String() + " at this location",
		}
	}

	return &EffectiveProduct{
		ProductID:   product.ID,
		LocationID:  locationID,
		Name:        stringOr(override.NameOverride, product.Name),
		Description: stringOr(override.DescriptionOverride, product.Description),
		Price:       decimalOr(override.PriceOverride, product.PriceBase),
		Available:   boolOr(override.AvailableOverride, product.Available),
		Activation:  activation,
	}, nil
}

// ResolveOption requires both the option and its option type to be active at
// the location.
func (c *CatalogResolver) ResolveOption(ctx context.Context, optionID, locationID uint) (*EffectiveOption, error) {
	var option models.ProductOption
	if err := c.db.WithContext(ctx).First(&option, optionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product option", optionID)
		}
		return nil, fmt.Errorf("load option %d: %w", optionID, err)
	}

	override, found, err := loadOverride[models.OptionLocation](ctx, c.db,
		"product_option_id = ? AND location_id = ?", optionID, locationID)
	if err != nil {
		return nil, fmt.Errorf("load option %d override at location %d: %w", optionID, locationID, err)
	}
	if a := models.ActivationOf(found, found && override.Active); a != models.ActivationActive {
		return nil, &OptionSelectionError{
			OptionTypeID: option.OptionTypeID,
			OptionID:     optionID,
			Reason:       "option is " + a.String() + " at this location",
		}
	}

	typeOverride, typeFound, err := loadOverride[models.OptionTypeLocation](ctx, c.db,
		"option_type_id = ? AND location_id = ?", option.OptionTypeID, locationID)
	if err != nil {
		return nil, fmt.Errorf("load option type %d override at location %d: %w", option.OptionTypeID, locationID, err)
	}
	if a := models.ActivationOf(typeFound, typeFound && typeOverride.Active); a != models.ActivationActive {
		return nil, &OptionSelectionError{
			OptionTypeID: option.OptionTypeID,
			OptionID:     optionID,
			Reason:       "option type is " + a.String() + " at this location",
		}
	}

	return &EffectiveOption{
		OptionID:        option.ID,
		OptionTypeID:    option.OptionTypeID,
		LocationID:      locationID,
		Name:            stringOr(override.NameOverride, option.Name),
		PriceAdjustment: decimalOr(override.PriceAdjustmentOverride, option.PriceAdjustment),
		Available:       boolOr(override.AvailableOverride, option.Available),
	}, nil
}

func (c *CatalogResolver) ResolveOptionTypeRules(ctx context.Context, optionTypeID uint) (*OptionTypeRules, error) {
	var ot models.OptionType
	if err := c.db.WithContext(ctx).First(&ot, optionTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("option type", optionTypeID)
		}
		return nil, fmt.Errorf("load option type %d: %w", optionTypeID, err)
	}
	if ot.MinSelections < 0 {
		return nil, invalid("min_selections", fmt.Sprintf("option type %d has negative minimum", ot.ID))
	}
	if ot.MaxSelections != nil && *ot.MaxSelections < ot.MinSelections {
		return nil, invalid("max_selections", fmt.Sprintf("option type %d max %d is below min %d",
			ot.ID, *ot.MaxSelections, ot.MinSelections))
	}
	return &OptionTypeRules{
		OptionTypeID: ot.ID,
		Name:         ot.Name,
		Min:          ot.MinSelections,
		Max:          ot.MaxSelections,
	}, nil
}

// ApplicableOptionTypes lists the option types linked to the product that
// are active at the location, in id order.
func (c *CatalogResolver) ApplicableOptionTypes(ctx context.Context, productID, locationID uint) ([]uint, error) {
	var ids []uint
	err := c.db.WithContext(ctx).
		Table("product_option_types").
		Joins("JOIN option_type_locations ON option_type_locations.option_type_id = product_option_types.option_type_id AND option_type_locations.location_id = ?", locationID).
		Where("product_option_types.product_id = ? AND option_type_locations.active = ?", productID, true).
		Order("product_option_types.option_type_id").
		Pluck("product_option_types.option_type_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list option types for product %d at location %d: %w", productID, locationID, err)
	}
	return ids, nil
}

// loadOverride fetches at most one location override row. A missing row is
// not an error.
func loadOverride[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, bool, error) {
	var rows []T
	if err := db.WithContext(ctx).Where(query, args...).Limit(1).Find(&rows).Error; err != nil {
		return new(T), false, err
	}
	if len(rows) == 0 {
		return new(T), false, nil
	}
	return &rows[0], true, nil
}

func stringOr(override *string, canonical string) string {
	if override != nil {
		return *override
	}
	return canonical
}

func boolOr(override *bool, canonical bool) bool {
	if override != nil {
		return *override
	}
	return canonical
}

func decimalOr(override decimal.NullDecimal, canonical decimal.Decimal) decimal.Decimal {
	if override.Valid {
		return override.Decimal
	}
	return canonical
}
