package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/transport/http/middleware"
	"github.com/arklim/software-access-portal/internal/usecase"
)

// RequestHandler exposes the access request endpoints.
type RequestHandler struct {
	requests *usecase.RequestService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *usecase.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// RegisterRoutes binds access request routes. The pending queue and the
// decision endpoint require the request decide operation.
func (h *RequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", middleware.RequireOperation(domain.OpRequestCreate), h.create)
	r.GET("", middleware.RequireOperation(domain.OpRequestRead), h.list)

	decide := middleware.RequireOperation(domain.OpRequestDecide)
	r.GET("/status/pending", decide, h.listPending)
	r.PATCH("/:id/status", decide, h.decide)

	r.GET("/:id", middleware.RequireOperation(domain.OpRequestRead), h.get)
}

func (h *RequestHandler) create(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req CreateAccessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	request, err := h.requests.Create(c.Request.Context(), identity.UserID, usecase.CreateRequestInput{
		SoftwareID: req.SoftwareID,
		AccessType: req.AccessType,
		Reason:     req.Reason,
	})
	if err != nil {
		if validationErr := asValidationError(err); validationErr != "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSoftwareNotFound, Status: http.StatusNotFound, Message: "software not found"},
			{Err: usecase.ErrAccessLevelUnsupported, Status: http.StatusBadRequest, Message: "requested access type is not offered by this software"},
			{Err: usecase.ErrPendingRequestExists, Status: http.StatusConflict, Message: "you already have a pending request for this software"},
		}, http.StatusInternalServerError, "failed to create request")
		return
	}

	c.JSON(http.StatusCreated, RequestMutationResponse{
		Message: "Request submitted successfully",
		Request: newRequestView(request),
	})
}

func (h *RequestHandler) list(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	requests, err := h.requests.List(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list requests"))
		return
	}

	c.JSON(http.StatusOK, RequestListResponse{Requests: newRequestViews(requests)})
}

func (h *RequestHandler) listPending(c *gin.Context) {
	requests, err := h.requests.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list pending requests"))
		return
	}

	c.JSON(http.StatusOK, RequestListResponse{Requests: newRequestViews(requests)})
}

func (h *RequestHandler) get(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	request, err := h.requests.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRequestNotFound, Status: http.StatusNotFound, Message: "request not found"},
			{Err: usecase.ErrAccessDenied, Status: http.StatusForbidden, Message: "you may only view your own requests"},
		}, http.StatusInternalServerError, "failed to load request")
		return
	}

	c.JSON(http.StatusOK, RequestResponse{Request: newRequestView(request)})
}

func (h *RequestHandler) decide(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req DecideAccessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid decision payload"))
		return
	}

	request, err := h.requests.Decide(c.Request.Context(), identity.UserID, c.Param("id"), usecase.DecideRequestInput{
		Status:   req.Status,
		Comments: req.Comments,
	})
	if err != nil {
		if validationErr := asValidationError(err); validationErr != "" {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr))
			return
		}
		if errors.Is(err, usecase.ErrRequestResolved) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRequestNotFound, Status: http.StatusNotFound, Message: "request not found"},
		}, http.StatusInternalServerError, "failed to update request")
		return
	}

	message := "Request rejected successfully"
	if request.Status == domain.RequestStatusApproved {
		message = "Request approved successfully"
	}

	c.JSON(http.StatusOK, RequestMutationResponse{
		Message: message,
		Request: newRequestView(request),
	})
}
