package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutrack/nutrack/backend/internal/service"
	"github.com/nutrack/nutrack/backend/internal/training"
)

type TrainingHandler struct {
	exercises *service.ExerciseService
	workouts  *service.WorkoutService
}

func NewTrainingHandler(exercises *service.ExerciseService, workouts *service.WorkoutService) *TrainingHandler {
	return &TrainingHandler{exercises: exercises, workouts: workouts}
}

func (h *TrainingHandler) RegisterRoutes(router *gin.RouterGroup) {
	exercises := router.Group("/exercises")
	{
		exercises.GET("", h.ListExercises)
		exercises.POST("", h.CreateExercise)
		exercises.GET("/muscle-groups", h.MuscleGroups)
	}

	workouts := router.Group("/workouts")
	{
		workouts.GET("", h.ListWorkouts)
		workouts.POST("", h.CreateWorkout)
		workouts.GET("/:id", h.GetWorkout)
		workouts.POST("/:id/exercises", h.AddExercise)
		workouts.POST("/:id/exercises/:weid/sets", h.LogSet)
		workouts.GET("/:id/summary", h.GetSummary)
	}
}

func (h *TrainingHandler) ListExercises(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	exercises, err := h.exercises.List(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

func (h *TrainingHandler) CreateExercise(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateExerciseInput
	if !bind(c, &req) {
		return
	}
	ex, err := h.exercises.Create(c.Request.Context(), user, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ex)
}

// MuscleGroups lists the accepted muscle group names.
func (h *TrainingHandler) MuscleGroups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"muscle_groups": training.MuscleGroups})
}

func (h *TrainingHandler) ListWorkouts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	workouts, err := h.workouts.List(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workouts": workouts})
}

func (h *TrainingHandler) CreateWorkout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateWorkoutInput
	if !bind(c, &req) {
		return
	}
	w, err := h.workouts.Create(c.Request.Context(), user, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *TrainingHandler) GetWorkout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	w, err := h.workouts.Get(c.Request.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *TrainingHandler) AddExercise(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.AddExerciseInput
	if !bind(c, &req) {
		return
	}
	we, err := h.workouts.AddExercise(c.Request.Context(), user, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, we)
}

func (h *TrainingHandler) LogSet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entryID, ok := pathID(c, "weid")
	if !ok {
		return
	}
	var req service.LogSetInput
	if !bind(c, &req) {
		return
	}
	set, err := h.workouts.LogSet(c.Request.Context(), user, id, entryID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

func (h *TrainingHandler) GetSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.workouts.Summary(c.Request.Context(), user, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
