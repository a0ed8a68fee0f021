package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	laborapp "github.com/wms-platform/fulfillment/internal/labor/application"
)

func (g *Gateway) registerStaff(c *gin.Context) {
	var req struct {
		StaffID string   `json:"staffId" binding:"required"`
		Name    string   `json:"name" binding:"required"`
		Skills  []string `json:"skills"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := g.dispatcher.RegisterStaff(c.Request.Context(), req.StaffID, req.Name, req.Skills)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (g *Gateway) getStaffMember(c *gin.Context) {
	member, err := g.dispatcher.GetStaffMember(c.Request.Context(), c.Param("staffId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (g *Gateway) registerEquipment(c *gin.Context) {
	var req struct {
		EquipmentID string `json:"equipmentId" binding:"required"`
		Type        string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := g.dispatcher.RegisterEquipment(c.Request.Context(), req.EquipmentID, req.Type)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (g *Gateway) getEquipment(c *gin.Context) {
	item, err := g.dispatcher.GetEquipment(c.Request.Context(), c.Param("equipmentId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (g *Gateway) scheduleMaintenance(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := g.dispatcher.ScheduleMaintenance(c.Request.Context(), c.Param("equipmentId"), req.Description); err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (g *Gateway) completeMaintenance(c *gin.Context) {
	item, err := g.dispatcher.CompleteMaintenance(c.Request.Context(), c.Param("equipmentId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (g *Gateway) assignTask(c *gin.Context) {
	var cmd laborapp.AssignTaskCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		badRequest(c, err)
		return
	}
	assignment, err := g.dispatcher.AssignTask(c.Request.Context(), cmd)
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (g *Gateway) completeAssignment(c *gin.Context) {
	assignment, err := g.dispatcher.CompleteAssignment(c.Request.Context(), c.Param("assignmentId"))
	if err != nil {
		g.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (g *Gateway) cancelAssignment(c *gin.Context) {
	if err := g.dispatcher.CancelAssignment(c.Request.Context(), c.Param("assignmentId")); err != nil {
		g.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
