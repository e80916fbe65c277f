package delivery

import (
	"net/http"
	"strconv"

	"buysmart/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type WishlistHandler struct {
	useCase domain.WishlistUseCase
	log     *logrus.Logger
}

func NewWishlistHandler(uc domain.WishlistUseCase, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *WishlistHandler) RegisterRoutes(router gin.IRouter) {
	wishlist := router.Group("/wishlist")
	{
		wishlist.POST("", h.AddItem)
		wishlist.GET("", h.ListItems)
		wishlist.DELETE("/:id", h.DeleteItem)
	}
}

type wishlistAddRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

func (h *WishlistHandler) AddItem(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	var req wishlistAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.useCase.AddItem(c.Request.Context(), custID, req.ProductID)
	if err != nil {
		h.log.Warnf("Wishlist add failed for customer %d: %v", custID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to add wishlist item: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Item added to wishlist", item)
}

func (h *WishlistHandler) ListItems(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	items, err := h.useCase.ListItems(c.Request.Context(), custID)
	if err != nil {
		h.log.Errorf("Failed to list wishlist for customer %d: %v", custID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve wishlist")
		return
	}

	SuccessResponse(c, http.StatusOK, "Wishlist retrieved successfully", items)
}

func (h *WishlistHandler) DeleteItem(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid wishlist item ID format")
		return
	}

	if err := h.useCase.DeleteItem(c.Request.Context(), custID, itemID); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete wishlist item: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Item removed from wishlist", nil)
}
