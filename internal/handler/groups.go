package handler

import (
	"net/http"

	"taskmanager/internal/dto"
	"taskmanager/internal/middleware"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type GroupsHandler struct{ svc service.GroupService }

func NewGroupsHandler(svc service.GroupService) *GroupsHandler { return &GroupsHandler{svc: svc} }

// List godoc
// @Summary Lista los grupos creados (Admin) o de los que el usuario es miembro
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.GroupResponse
// @Router /groups [get]
func (h *GroupsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Crea un grupo (solo Admin)
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateGroupRequest true "Grupo"
// @Success 201 {object} dto.CreateGroupResponse
// @Failure 400 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /groups [post]
func (h *GroupsHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GroupsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Elimina un grupo y sus tareas (solo Admin)
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "ID del grupo"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /groups/{groupId} [delete]
func (h *GroupsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Grupo eliminado correctamente"})
}

// ── Membership ───────────────────────────────────────────────────────────────

func (h *GroupsHandler) Members(c *gin.Context) {
	resp, err := h.svc.Members(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddMember godoc
// @Summary Agrega un miembro al grupo (idempotente)
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path string true "ID del grupo"
// @Param body body dto.AddMemberRequest true "Usuario"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} apierror.APIError
// @Router /groups/{groupId}/users [post]
func (h *GroupsHandler) AddMember(c *gin.Context) {
	var req dto.AddMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AddMember(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Miembro agregado correctamente"})
}

func (h *GroupsHandler) RemoveMember(c *gin.Context) {
	if err := h.svc.RemoveMember(c.Request.Context(), middleware.GetIdentity(c), c.Param("groupId"), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Miembro eliminado correctamente"})
}
