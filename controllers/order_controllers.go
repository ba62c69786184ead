package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type OrderController struct {
	Orders *services.OrderSubmission
	Log    *logrus.Logger
}

func NewOrderController(orders *services.OrderSubmission, log *logrus.Logger) *OrderController {
	return &OrderController{Orders: orders, Log: log}
}

// CreateOrder -> price and persist an order for the session token
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body services.SubmitOrderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.Orders.Submit(c.Request.Context(), body)
	if err != nil {
		respondServiceError(c, oc.Log, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{"order": order})
}
