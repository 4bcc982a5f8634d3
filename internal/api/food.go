package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/service"
)

type FoodHandler struct {
	foods *service.FoodService
}

func NewFoodHandler(foods *service.FoodService) *FoodHandler {
	return &FoodHandler{foods: foods}
}

func (h *FoodHandler) RegisterRoutes(router *gin.RouterGroup) {
	foods := router.Group("/foods")
	{
		foods.GET("", h.ListFoods)
		foods.POST("", h.CreateFood)
		foods.GET("/:id", h.GetFood)
		foods.GET("/:id/similar", h.SimilarFoods)
	}
}

func (h *FoodHandler) ListFoods(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	foods, err := h.foods.List(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

func (h *FoodHandler) CreateFood(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateFoodInput
	if !bind(c, &req) {
		return
	}
	food, err := h.foods.Create(c.Request.Context(), user, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *FoodHandler) GetFood(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	food, err := h.foods.Get(c.Request.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// SimilarFoods lists foods with the closest macro balance. ?limit= caps the
// result.
func (h *FoodHandler) SimilarFoods(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			fail(c, apperror.Validation("limit must be between 1 and 50"))
			return
		}
		limit = n
	}

	foods, err := h.foods.Similar(c.Request.Context(), user, id, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}
