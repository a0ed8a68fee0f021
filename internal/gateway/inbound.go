package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	facapp "github.com/wms-platform/fulfillment/internal/facility/application"
	facdomain "github.com/wms-platform/fulfillment/internal/facility/domain"
	invdomain "github.com/wms-platform/fulfillment/internal/inventory/domain"
	recapp "github.com/wms-platform/fulfillment/internal/receiving/application"
)

func (g *Gateway) createLocation(c *gin.Context) {
	var cmd facapp.CreateLocationCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	location, err := g.directory.CreateLocation(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

func (g *Gateway) getLocation(c *gin.Context) {
	location, err := g.directory.GetLocation(c.Request.Context(), c.Param("code"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

type createProductRequest struct {
	SKU         string                        `json:"sku" binding:"required"`
	Name        string                        `json:"name" binding:"required"`
	Description string                        `json:"description"`
	Dimensions  facdomain.Dimensions          `json:"dimensions"`
	Storage     facdomain.StorageRequirements `json:"storage"`
	Tracking    facdomain.Tracking            `json:"tracking"`
	UnitPrice   float64                       `json:"unitPrice"`
}

func (g *Gateway) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := facdomain.NewProduct(req.SKU, req.Name)
	if err != nil {
		badRequest(c, err)
		return
	}
	product.Description = req.Description
	product.Dimensions = req.Dimensions
	product.Storage = req.Storage
	product.Tracking = req.Tracking
	product.UnitPrice = req.UnitPrice
	if err := g.directory.CreateProduct(c.Request.Context(), product); err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (g *Gateway) getProduct(c *gin.Context) {
	product, err := g.directory.GetProduct(c.Request.Context(), c.Param("sku"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) getInventory(c *gin.Context) {
	summary, err := g.ledger.GetInventory(c.Request.Context(), c.Param("sku"), c.Query("location"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type adjustInventoryRequest struct {
	SKU          string `json:"sku" binding:"required"`
	LocationCode string `json:"locationCode" binding:"required"`
	Delta        int    `json:"delta" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
}

func (g *Gateway) adjustInventory(c *gin.Context) {
	var req adjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	record, err := g.ledger.AdjustInventory(c.Request.Context(), req.SKU, req.LocationCode, req.Delta, req.Reason)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type holdRequest struct {
	SKU          string `json:"sku" binding:"required"`
	LocationCode string `json:"locationCode" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
	Reason       string `json:"reason" binding:"required"`
}

func (g *Gateway) holdInventory(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := g.ledger.HoldInventory(c.Request.Context(), req.SKU, req.LocationCode, req.Quantity, req.Reason); err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) releaseHold(c *gin.Context) {
	var req holdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := g.ledger.ReleaseHold(c.Request.Context(), req.SKU, req.LocationCode, req.Quantity, req.Reason); err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createLotRequest struct {
	LotNumber    string    `json:"lotNumber" binding:"required"`
	SKU          string    `json:"sku" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,gt=0"`
	Manufactured time.Time `json:"manufactured"`
	Expires      time.Time `json:"expires"`
}

func (g *Gateway) createLot(c *gin.Context) {
	var req createLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lot, err := g.ledger.CreateLot(c.Request.Context(), req.LotNumber, req.SKU, req.Quantity,
		req.Manufactured, req.Expires)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

func (g *Gateway) getLotsByProduct(c *gin.Context) {
	lots, err := g.ledger.GetLotsByProduct(c.Request.Context(), c.Param("sku"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

func (g *Gateway) updateLotQuality(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lot, err := g.ledger.UpdateLotQuality(c.Request.Context(), c.Param("lotNumber"), invdomain.LotQualityStatus(req.Status))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (g *Gateway) getExpiringLots(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		badRequest(c, err)
		return
	}
	lots, err := g.ledger.GetExpiringLots(c.Request.Context(), days)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

func (g *Gateway) createPurchaseOrder(c *gin.Context) {
	var cmd recapp.CreatePurchaseOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	po, err := g.receiving.CreatePurchaseOrder(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

func (g *Gateway) getPurchaseOrder(c *gin.Context) {
	po, err := g.receiving.GetPurchaseOrder(c.Request.Context(), c.Param("poNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func (g *Gateway) processASN(c *gin.Context) {
	var cmd recapp.ProcessASNCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	asn, err := g.receiving.ProcessASN(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asn)
}

func (g *Gateway) startReceiving(c *gin.Context) {
	receipt, err := g.receiving.StartReceiving(c.Request.Context(), c.Param("asnNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (g *Gateway) processReceivedItem(c *gin.Context) {
	var cmd recapp.ProcessReceivedItemCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	cmd.ReceiptNumber = c.Param("receiptNumber")
	receipt, err := g.receiving.ProcessReceivedItem(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (g *Gateway) completeReceiving(c *gin.Context) {
	receipt, err := g.receiving.CompleteReceiving(c.Request.Context(), c.Param("receiptNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (g *Gateway) completePutAway(c *gin.Context) {
	task, err := g.receiving.CompletePutAway(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
