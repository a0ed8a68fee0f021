package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orapp "github.com/wms-platform/fulfillment/internal/orders/application"
	packapp "github.com/wms-platform/fulfillment/internal/packing/application"
	waveapp "github.com/wms-platform/fulfillment/internal/waving/application"
	wavedomain "github.com/wms-platform/fulfillment/internal/waving/domain"
)

func (g *Gateway) createOrder(c *gin.Context) {
	var cmd orapp.CreateOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	order, err := g.orders.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.orders.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (g *Gateway) cancelOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := g.orders.CancelOrder(c.Request.Context(), c.Param("orderNumber"), req.Reason)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type createWaveRequest struct {
	WaveID   string `json:"waveId" binding:"required"`
	Strategy string `json:"strategy" binding:"required"`
}

func (g *Gateway) createWave(c *gin.Context) {
	var req createWaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	wave, err := g.planner.CreateWave(c.Request.Context(), req.WaveID, wavedomain.Strategy(req.Strategy))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wave)
}

func (g *Gateway) getWave(c *gin.Context) {
	wave, err := g.planner.GetWave(c.Request.Context(), c.Param("waveId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wave)
}

func (g *Gateway) planWave(c *gin.Context) {
	var criteria waveapp.PlanWaveCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		badRequest(c, err)
		return
	}
	wave, err := g.planner.PlanWave(c.Request.Context(), c.Param("waveId"), criteria)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wave)
}

func (g *Gateway) releaseWave(c *gin.Context) {
	wave, err := g.planner.ReleaseWave(c.Request.Context(), c.Param("waveId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wave)
}

func (g *Gateway) completeWave(c *gin.Context) {
	wave, err := g.planner.CompleteWave(c.Request.Context(), c.Param("waveId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wave)
}

func (g *Gateway) cancelWave(c *gin.Context) {
	wave, err := g.planner.CancelWave(c.Request.Context(), c.Param("waveId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wave)
}

func (g *Gateway) getWaveTasks(c *gin.Context) {
	tasks, err := g.picking.GetWaveTasks(c.Request.Context(), c.Param("waveId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (g *Gateway) assignPickTask(c *gin.Context) {
	var req struct {
		StaffID string `json:"staffId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := g.picking.AssignPickTask(c.Request.Context(), c.Param("taskId"), req.StaffID)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (g *Gateway) completePickTask(c *gin.Context) {
	var req struct {
		Picked int `json:"picked" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := g.picking.CompletePickTask(c.Request.Context(), c.Param("taskId"), req.Picked)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (g *Gateway) getPickExceptions(c *gin.Context) {
	exceptions, err := g.picking.GetOpenExceptions(c.Request.Context())
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exceptions)
}

func (g *Gateway) packOrder(c *gin.Context) {
	var cmd packapp.PackOrderCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	slip, err := g.packing.CompletePackingOrder(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slip)
}

func (g *Gateway) getPackingSlip(c *gin.Context) {
	slip, err := g.packing.GetOrderPackingSlip(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slip)
}
