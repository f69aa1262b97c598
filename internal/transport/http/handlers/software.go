package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/repository"
	"github.com/arklim/software-access-portal/internal/transport/http/middleware"
	"github.com/arklim/software-access-portal/internal/usecase"
)

// SoftwareHandler exposes the software catalog endpoints.
type SoftwareHandler struct {
	catalog *usecase.CatalogService
}

// NewSoftwareHandler constructs SoftwareHandler.
func NewSoftwareHandler(catalog *usecase.CatalogService) *SoftwareHandler {
	return &SoftwareHandler{catalog: catalog}
}

// RegisterRoutes binds catalog routes. Reads are open to every
// authenticated role; writes require the catalog write operation.
func (h *SoftwareHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", middleware.RequireOperation(domain.OpCatalogRead), h.list)
	r.GET("/:id", middleware.RequireOperation(domain.OpCatalogRead), h.get)

	write := middleware.RequireOperation(domain.OpCatalogWrite)
	r.POST("", write, h.create)
	r.PUT("/:id", write, h.update)
	r.DELETE("/:id", write, h.remove)
}

func (h *SoftwareHandler) list(c *gin.Context) {
	catalog, err := h.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list software"))
		return
	}

	views := make([]SoftwareView, 0, len(catalog))
	for _, software := range catalog {
		views = append(views, newSoftwareView(software))
	}

	c.JSON(http.StatusOK, SoftwareListResponse{Software: views})
}

func (h *SoftwareHandler) get(c *gin.Context) {
	software, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSoftwareNotFound, Status: http.StatusNotFound, Message: "software not found"},
		}, http.StatusInternalServerError, "failed to load software")
		return
	}

	c.JSON(http.StatusOK, SoftwareResponse{Software: newSoftwareView(software)})
}

func (h *SoftwareHandler) create(c *gin.Context) {
	var req CreateSoftwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid software payload"))
		return
	}

	software, err := h.catalog.Create(c.Request.Context(), usecase.CreateSoftwareInput{
		Name:         req.Name,
		Description:  req.Description,
		AccessLevels: req.AccessLevels,
	})
	if err != nil {
		if validationErr := asValidationError(err); validationErr != "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSoftwareNameTaken, Status: http.StatusConflict, Message: "software name already exists"},
		}, http.StatusInternalServerError, "failed to create software")
		return
	}

	c.JSON(http.StatusCreated, SoftwareMutationResponse{
		Message:  "Software created successfully",
		Software: newSoftwareView(software),
	})
}

func (h *SoftwareHandler) update(c *gin.Context) {
	var req UpdateSoftwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid software payload"))
		return
	}

	software, err := h.catalog.Update(c.Request.Context(), c.Param("id"), usecase.UpdateSoftwareInput{
		Name:         req.Name,
		Description:  req.Description,
		AccessLevels: req.AccessLevels,
	})
	if err != nil {
		if validationErr := asValidationError(err); validationErr != "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSoftwareNotFound, Status: http.StatusNotFound, Message: "software not found"},
			{Err: usecase.ErrSoftwareNameTaken, Status: http.StatusConflict, Message: "software name already exists"},
		}, http.StatusInternalServerError, "failed to update software")
		return
	}

	c.JSON(http.StatusOK, SoftwareMutationResponse{
		Message:  "Software updated successfully",
		Software: newSoftwareView(software),
	})
}

func (h *SoftwareHandler) remove(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	result, err := h.catalog.Delete(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		var depErr *repository.SoftwareDependencyError
		if errors.As(err, &depErr) {
			c.JSON(http.StatusConflict, DependencyConflictResponse{
				Error:           "software has granted permissions and cannot be deleted",
				AccessRequests:  depErr.AccessRequests,
				UserPermissions: depErr.UserPermissions,
				TraceID:         middleware.GetTraceID(c),
			})
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSoftwareNotFound, Status: http.StatusNotFound, Message: "software not found"},
		}, http.StatusInternalServerError, "failed to delete software")
		return
	}

	c.JSON(http.StatusOK, SoftwareDeleteResponse{
		Message:         fmt.Sprintf("Software deleted successfully along with %d associated requests", result.RemovedRequests),
		RemovedRequests: result.RemovedRequests,
	})
}
