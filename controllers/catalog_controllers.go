package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type CatalogController struct {
	Catalog *services.CatalogResolver
	Log     *logrus.Logger
}

func NewCatalogController(catalog *services.CatalogResolver, log *logrus.Logger) *CatalogController {
	return &CatalogController{Catalog: catalog, Log: log}
}

// GetEffectiveProduct -> product as served at one location
func (cc *CatalogController) GetEffectiveProduct(c *gin.Context) {
	locationID, err := parseID(c, "location_id")
	if err != nil {
		return
	}
	productID, err := parseID(c, "product_id")
	if err != nil {
		return
	}

	product, err := cc.Catalog.ResolveProduct(c.Request.Context(), productID, locationID)
	if err != nil {
		respondServiceError(c, cc.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Effective product", product)
}

// parseID reads a positive numeric path parameter, answering 400 itself on
// failure.
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		err = errors.New(name + " must be a positive integer")
		utils.RespondErrorCode(c, http.StatusBadRequest, CodeValidation, err.Error())
		return 0, err
	}
	return uint(id), nil
}
