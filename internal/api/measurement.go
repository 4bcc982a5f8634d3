package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrack/nutrack/backend/internal/service"
)

type MeasurementHandler struct {
	measurements *service.MeasurementService
}

func NewMeasurementHandler(measurements *service.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{measurements: measurements}
}

func (h *MeasurementHandler) RegisterRoutes(router *gin.RouterGroup) {
	m := router.Group("/measurements")
	{
		m.GET("", h.ListMeasurements)
		m.POST("", h.RecordMeasurement)
		m.GET("/summary", h.GetSummary)
		m.POST("/summary/export", h.ExportSummary)
	}
}

func (h *MeasurementHandler) ListMeasurements(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.measurements.List(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"measurements": list})
}

func (h *MeasurementHandler) RecordMeasurement(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.RecordMeasurementInput
	if !bind(c, &req) {
		return
	}
	rec, err := h.measurements.Record(c.Request.Context(), user, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *MeasurementHandler) GetSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.measurements.Summary(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *MeasurementHandler) ExportSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	export, err := h.measurements.ExportSummary(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, export)
}
