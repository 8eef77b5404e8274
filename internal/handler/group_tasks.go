package handler

import (
	"fmt"
	"net/http"

	"taskmanager/internal/dto"
	"taskmanager/internal/middleware"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type GroupTasksHandler struct{ svc service.GroupTaskService }

func NewGroupTasksHandler(svc service.GroupTaskService) *GroupTasksHandler {
	return &GroupTasksHandler{svc: svc}
}

// Assign godoc
// @Summary Asigna una tarea a miembros del grupo (solo Admin)
// @Tags group-tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "ID del grupo"
// @Param body body dto.AssignGroupTaskRequest true "Tarea"
// @Success 201 {object} dto.AssignGroupTaskResponse
// @Failure 400 {object} apierror.ValidationError
// @Failure 404 {object} apierror.APIError
// @Router /groups/{groupId}/tasks [post]
func (h *GroupTasksHandler) Assign(c *gin.Context) {
	var req dto.AssignGroupTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Assign(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lista las tareas de un grupo
// @Tags group-tasks
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "ID del grupo"
// @Success 200 {array} dto.GroupTaskResponse
// @Router /groups/{groupId}/tasks [get]
func (h *GroupTasksHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Cambia el estado de una tarea de grupo
// @Tags group-tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "ID del grupo"
// @Param taskId path string true "ID de la tarea"
// @Param body body dto.UpdateGroupTaskStatusRequest true "Estado"
// @Success 200 {object} dto.GroupTaskResponse
// @Failure 404 {object} apierror.APIError
// @Router /groups/{groupId}/tasks/{taskId} [put]
func (h *GroupTasksHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateGroupTaskStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"), c.Param("taskId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GroupTasksHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"), c.Param("taskId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Tarea eliminada correctamente"})
}

// Stats godoc
// @Summary Resumen de tareas por estado
// @Tags group-tasks
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "ID del grupo"
// @Success 200 {object} dto.GroupTaskStats
// @Router /groups/{groupId}/tasks/stats [get]
func (h *GroupTasksHandler) Stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Reporte PDF de las tareas del grupo
// @Tags group-tasks
// @Produce application/pdf
// @Security BearerAuth
// @Param groupId path string true "ID del grupo"
// @Success 200 {file} binary
// @Router /groups/{groupId}/report [get]
func (h *GroupTasksHandler) Report(c *gin.Context) {
	groupID := c.Param("groupId")
	pdf, err := h.svc.Report(c.Request.Context(), middleware.GetIdentity(c), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="grupo-%s.pdf"`, groupID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
