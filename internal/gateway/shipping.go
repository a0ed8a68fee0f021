package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	retapp "github.com/wms-platform/fulfillment/internal/returns/application"
	shipdomain "github.com/wms-platform/fulfillment/internal/shipping/domain"
)

type registerCarrierRequest struct {
	CarrierID    string                          `json:"carrierId" binding:"required"`
	Name         string                          `json:"name" binding:"required"`
	ServiceAreas []string                        `json:"serviceAreas" binding:"required,min=1"`
	Capabilities shipdomain.Capabilities         `json:"capabilities"`
	Rates        shipdomain.Rates                `json:"rates"`
	TransitDays  map[shipdomain.ServiceLevel]int `json:"transitDays"`
}

func (g *Gateway) registerCarrier(c *gin.Context) {
	var req registerCarrierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	carrier := &shipdomain.Carrier{
		CarrierID:    req.CarrierID,
		Name:         req.Name,
		Active:       true,
		ServiceAreas: req.ServiceAreas,
		Capabilities: req.Capabilities,
		Rates:        req.Rates,
		TransitDays:  req.TransitDays,
	}
	if err := g.shipping.RegisterCarrier(c.Request.Context(), carrier); err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carrier)
}

func (g *Gateway) recordCarrierDelivery(c *gin.Context) {
	var req struct {
		OnTime  bool `json:"onTime"`
		Damaged bool `json:"damaged"`
		Lost    bool `json:"lost"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := g.shipping.RecordCarrierDelivery(c.Request.Context(), c.Param("carrierId"),
		req.OnTime, req.Damaged, req.Lost)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) getShipment(c *gin.Context) {
	shipment, err := g.shipping.GetShipment(c.Request.Context(), c.Param("shipmentId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (g *Gateway) getOrderShipment(c *gin.Context) {
	shipment, err := g.shipping.GetOrderShipment(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	if shipment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no shipment for order"})
		return
	}
	c.JSON(http.StatusOK, shipment)
}

// updateTracking is the carrier webhook: raw carrier statuses are translated
// into shipment transitions
func (g *Gateway) updateTracking(c *gin.Context) {
	var req struct {
		Status      string `json:"status" binding:"required"`
		Location    string `json:"location"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	shipment, err := g.shipping.UpdateShipmentTracking(c.Request.Context(), c.Param("shipmentId"),
		req.Status, req.Location, req.Description)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (g *Gateway) authorizeReturn(c *gin.Context) {
	var cmd retapp.AuthorizeReturnCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	rma, err := g.returns.CreateReturnAuthorization(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rma)
}

func (g *Gateway) getRMA(c *gin.Context) {
	rma, err := g.returns.GetRMA(c.Request.Context(), c.Param("rmaNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rma)
}

func (g *Gateway) getOrderReturns(c *gin.Context) {
	rmas, err := g.returns.GetOrderReturns(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rmas)
}

func (g *Gateway) receiveReturn(c *gin.Context) {
	var req struct {
		Items []retapp.ReceivedItem `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rma, err := g.returns.ProcessReceivedReturn(c.Request.Context(), c.Param("rmaNumber"), req.Items)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rma)
}
