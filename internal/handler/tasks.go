package handler

import (
	"net/http"

	"taskmanager/internal/dto"
	"taskmanager/internal/middleware"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type TasksHandler struct{ svc service.TaskService }

func NewTasksHandler(svc service.TaskService) *TasksHandler { return &TasksHandler{svc: svc} }

// Create godoc
// @Summary Crea una tarea personal
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateTaskRequest true "Tarea"
// @Success 201 {object} dto.CreateTaskResponse
// @Failure 400 {object} apierror.APIError
// @Router /tasks [post]
func (h *TasksHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetIdentity(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lista las tareas del usuario autenticado
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TaskResponse
// @Router /tasks [get]
func (h *TasksHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetIdentity(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Actualiza parcialmente una tarea propia
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskId path string true "ID de la tarea"
// @Param body body dto.UpdateTaskRequest true "Campos a modificar"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /tasks/{taskId} [put]
func (h *TasksHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetIdentity(c).ID, c.Param("taskId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TasksHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetIdentity(c).ID, c.Param("taskId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Tarea eliminada correctamente"})
}
