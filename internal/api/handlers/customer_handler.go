package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"order-service/internal/models"
	"order-service/internal/repository"
)

type CustomerHandler struct {
	repo     repository.CustomerRepository
	orders   OrderWorkflow
	log      *zap.Logger
	validate *validator.Validate
}

func NewCustomerHandler(repo repository.CustomerRepository, orders OrderWorkflow, log *zap.Logger) *CustomerHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerHandler{
		repo:     repo,
		orders:   orders,
		log:      log,
		validate: validator.New(),
	}
}

type CustomerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "request validation failed", validationDetails(err))
		return
	}

	c := models.Customer{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}

	if err := h.repo.Create(r.Context(), &c); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	w.Header().Set("Location", "/api/customers/"+strconv.Itoa(c.CustomerID))
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	customer, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	customers, err := h.repo.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, ok := customerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListByCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func customerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid customer id", nil)
		return 0, false
	}
	return id, true
}
