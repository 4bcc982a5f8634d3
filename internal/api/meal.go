package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/nutrition"
	"github.com/nutrack/nutrack/backend/internal/service"
)

type MealHandler struct {
	meals *service.MealService
}

func NewMealHandler(meals *service.MealService) *MealHandler {
	return &MealHandler{meals: meals}
}

func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup) {
	meals := router.Group("/meals")
	{
		meals.GET("", h.ListMeals)
		meals.POST("", h.CreateMeal)
		meals.GET("/daily", h.DailyNutrition)
		meals.GET("/:id", h.GetMeal)
		meals.GET("/:id/nutrition", h.GetMeal)
	}

	drafts := router.Group("/meal-drafts")
	{
		drafts.POST("", h.StartDraft)
		drafts.GET("/:id", h.GetDraft)
		drafts.DELETE("/:id", h.DiscardDraft)
		drafts.POST("/:id/items", h.AddDraftItem)
		drafts.POST("/:id/finalize", h.FinalizeDraft)
	}
}

func (h *MealHandler) ListMeals(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	meals, err := h.meals.List(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *MealHandler) CreateMeal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateMealInput
	if !bind(c, &req) {
		return
	}
	meal, err := h.meals.Create(c.Request.Context(), user, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// GetMeal returns the meal with its resolved nutrition.
func (h *MealHandler) GetMeal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.meals.Nutrition(c.Request.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// DailyNutrition sums the meals of ?date=YYYY-MM-DD, today (UTC) by default.
func (h *MealHandler) DailyNutrition(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			fail(c, apperror.Validation("date must be formatted YYYY-MM-DD"))
			return
		}
		date = d
	}

	day, err := h.meals.Daily(c.Request.Context(), user, date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

type startDraftRequest struct {
	MealType nutrition.MealType `json:"meal_type" binding:"required"`
}

func (h *MealHandler) StartDraft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req startDraftRequest
	if !bind(c, &req) {
		return
	}
	view, err := h.meals.StartDraft(c.Request.Context(), user, req.MealType)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *MealHandler) GetDraft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.meals.GetDraft(c.Request.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MealHandler) AddDraftItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ComponentInput
	if !bind(c, &req) {
		return
	}
	view, err := h.meals.AddDraftItem(c.Request.Context(), user, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MealHandler) DiscardDraft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.meals.DiscardDraft(c.Request.Context(), user, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealHandler) FinalizeDraft(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	meal, err := h.meals.FinalizeDraft(c.Request.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}
