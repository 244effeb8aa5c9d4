package api

import (
	"net/http"
	"strconv"

	reqdto "gin-checkout-core/internal/handler/dto/request"
	resdto "gin-checkout-core/internal/handler/dto/response"
	"gin-checkout-core/internal/handler/httperr"
	"gin-checkout-core/internal/handler/middleware"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const defaultOrderPageSize = 50

type OrderHandler struct {
	orderQueries queries.OrderQueries
}

func NewOrderHandler(orderQueries queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orderQueries: orderQueries,
	}
}

// @Summary List my orders
// @Description Orders of the authenticated buyer, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (1-200)"
// @Param offset query int false "Offset"
// @Success 200 {object} resdto.OrderListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user in context"), "User not authenticated", nil)
		return
	}

	var q reqdto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultOrderPageSize
	}

	views, err := h.orderQueries.ListByBuyer(c.Request.Context(), buyerID, q.Limit, q.Offset)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.OrderListResponse{
		Orders: resdto.FromOrderViews(views),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

// @Summary Get my order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	buyerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errs.New("missing user in context"), "User not authenticated", nil)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Wrap(errs.ErrValidation, "order id"), "Invalid order ID format", nil)
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), id, buyerID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}
