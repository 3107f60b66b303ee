package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/service"
)

// PurchaseHandler exposes the used-goods intake workflow under /purchases.
type PurchaseHandler struct {
	logger    *log.Logger
	purchases *service.PurchaseService
}

func NewPurchaseHandler(logger *log.Logger, purchases *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		logger:    logger,
		purchases: purchases,
	}
}

func (h *PurchaseHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/purchases", h.handlePurchases)
	mux.HandleFunc("/purchases/get", h.handleGet)
}

type createPurchasePayload struct {
	Seller        models.Seller             `json:"seller"`
	Lines         []models.PurchaseLineItem `json:"lines"`
	PaymentMethod models.PaymentMethod      `json:"payment_method"`
}

func (h *PurchaseHandler) handlePurchases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		purchases, err := h.purchases.ListPurchases(r.Context())
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusOK, purchases)
	case http.MethodPost:
		var payload createPurchasePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		purchase, err := h.purchases.CreatePurchase(r.Context(), payload.Seller, payload.Lines, payload.PaymentMethod)
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusCreated, purchase)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PurchaseHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodGet) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}
	purchase, err := h.purchases.GetPurchase(r.Context(), id)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	if purchase == nil {
		http.Error(w, "Purchase not found", http.StatusNotFound)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, purchase)
}
