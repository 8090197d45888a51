package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"order-service/internal/models"
	"order-service/internal/service"
	"order-service/internal/shipping"
)

// OrderWorkflow is the slice of the order service the HTTP layer consumes.
type OrderWorkflow interface {
	Create(ctx context.Context, in service.CreateOrderInput) (*service.OrderDetail, error)
	GetByID(ctx context.Context, id int) (*service.OrderDetail, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID int) ([]models.Order, error)
	Pay(ctx context.Context, id int) (*service.OrderDetail, error)
	Cancel(ctx context.Context, id int) (*service.OrderDetail, error)
	Ship(ctx context.Context, id int) (*service.OrderDetail, error)
}

type OrderHandler struct {
	svc      OrderWorkflow
	log      *zap.Logger
	validate *validator.Validate
}

func NewOrderHandler(svc OrderWorkflow, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{
		svc:      svc,
		log:      log,
		validate: validator.New(),
	}
}

type CreateOrderRequest struct {
	CustomerID     int                      `json:"customer_id" validate:"required,gt=0"`
	ShippingMethod string                   `json:"shipping_method" validate:"required"`
	Items          []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "request validation failed", validationDetails(err))
		return
	}

	in := service.CreateOrderInput{
		CustomerID:     req.CustomerID,
		ShippingMethod: req.ShippingMethod,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	detail, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	w.Header().Set("Location", "/api/orders/"+strconv.Itoa(detail.OrderID))
	writeJSON(w, http.StatusCreated, detail)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.svc.Pay)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.svc.Cancel)
}

func (h *OrderHandler) Ship(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.svc.Ship)
}

func (h *OrderHandler) applyTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, int) (*service.OrderDetail, error)) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	detail, err := op(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

type shippingMethodInfo struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (h *OrderHandler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	all := shipping.All()
	methods := make([]shippingMethodInfo, 0, len(all))
	for _, strategy := range all {
		methods = append(methods, shippingMethodInfo{
			Code:        strategy.Code(),
			Description: strategy.Description(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

func (h *OrderHandler) ShippingQuote(w http.ResponseWriter, r *http.Request) {
	subtotalStr := r.URL.Query().Get("subtotal")
	method := r.URL.Query().Get("method")

	subtotal, err := decimal.NewFromString(subtotalStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "subtotal must be a decimal number", nil)
		return
	}

	quote, err := shipping.QuoteFor(method, subtotal)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

func orderID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid order id", nil)
		return 0, false
	}
	return id, true
}

func validationDetails(err error) interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]any{"error": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
