package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/service"
)

// CatalogHandler exposes the product catalog under /products.
type CatalogHandler struct {
	logger  *log.Logger
	catalog *service.CatalogService
}

func NewCatalogHandler(logger *log.Logger, catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		logger:  logger,
		catalog: catalog,
	}
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/products", h.handleProducts)
	mux.HandleFunc("/products/variants", h.handleAddVariant)
	mux.HandleFunc("/products/stock", h.handleAdjustStock)
	mux.HandleFunc("/products/low-stock", h.handleLowStock)
}

func (h *CatalogHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := h.catalog.ListConfigurables(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusOK, products)
	case http.MethodPost:
		ean := r.URL.Query().Get("ean")
		name := r.URL.Query().Get("name")
		product, err := h.catalog.CreateConfigurable(r.Context(), ean, name)
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusCreated, product)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) handleAddVariant(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	productID := r.URL.Query().Get("product")
	condition := models.Condition(r.URL.Query().Get("condition"))
	priceStr := r.URL.Query().Get("price")
	if productID == "" || priceStr == "" {
		http.Error(w, "product and price query parameters are required", http.StatusBadRequest)
		return
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		http.Error(w, "Invalid price format", http.StatusBadRequest)
		return
	}
	variant, err := h.catalog.AddVariant(r.Context(), productID, condition, price)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusCreated, variant)
}

func (h *CatalogHandler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	productID := r.URL.Query().Get("product")
	deltaStr := r.URL.Query().Get("delta")
	if productID == "" || deltaStr == "" {
		http.Error(w, "product and delta query parameters are required", http.StatusBadRequest)
		return
	}
	delta, err := strconv.Atoi(deltaStr)
	if err != nil {
		http.Error(w, "Invalid delta format", http.StatusBadRequest)
		return
	}
	variant, err := h.catalog.AdjustStock(r.Context(), productID, delta)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, variant)
}

func (h *CatalogHandler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodGet) {
		return
	}
	variants, err := h.catalog.LowStockVariants(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, variants)
}
