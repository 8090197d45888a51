package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"order-service/internal/models"
	"order-service/internal/repository"
)

type ProductHandler struct {
	repo      repository.ProductRepository
	movements repository.StockMovementRepository
	log       *zap.Logger
	validate  *validator.Validate
}

func NewProductHandler(repo repository.ProductRepository, movements repository.StockMovementRepository, log *zap.Logger) *ProductHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductHandler{
		repo:      repo,
		movements: movements,
		log:       log,
		validate:  validator.New(),
	}
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "request validation failed", validationDetails(err))
		return
	}
	if req.Price.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "price must be positive", nil)
		return
	}

	p := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}

	if err := h.repo.Create(r.Context(), &p); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	w.Header().Set("Location", "/api/products/"+strconv.Itoa(p.ProductID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "request validation failed", validationDetails(err))
		return
	}
	if req.Price.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "price must be positive", nil)
		return
	}

	p := models.Product{
		ProductID:   id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}

	if err := h.repo.Update(r.Context(), &p); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Movements returns the stock-movement audit trail for a product.
func (h *ProductHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	movements, err := h.movements.GetByProductID(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, movements)
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid product id", nil)
		return 0, false
	}
	return id, true
}
