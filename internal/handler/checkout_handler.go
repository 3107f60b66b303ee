package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"gamestore_pos/internal/models"
	"gamestore_pos/internal/service"
)

// CheckoutHandler exposes the register flow under /pos/.
type CheckoutHandler struct {
	logger   *log.Logger
	checkout *service.CheckoutService
}

func NewCheckoutHandler(logger *log.Logger, checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		logger:   logger,
		checkout: checkout,
	}
}

func (h *CheckoutHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/pos/session", h.handleSession)
	mux.HandleFunc("/pos/cart/add", h.handleAddItem)
	mux.HandleFunc("/pos/cart/quantity", h.handleAdjustQuantity)
	mux.HandleFunc("/pos/cart/remove", h.handleRemoveItem)
	mux.HandleFunc("/pos/customer", h.handleAttachCustomer)
	mux.HandleFunc("/pos/payment", h.handleRecordPayment)
	mux.HandleFunc("/pos/remaining", h.handleRemaining)
	mux.HandleFunc("/pos/settle", h.handleSettle)
	mux.HandleFunc("/pos/pay", h.handlePayInFull)
	mux.HandleFunc("/pos/abandon", h.handleAbandon)
	mux.HandleFunc("/pos/transactions", h.handleListTransactions)
}

func (h *CheckoutHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, "session query parameter is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (h *CheckoutHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		session, err := h.checkout.StartSession(r.Context())
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusCreated, session)
	case http.MethodGet:
		id, ok := h.sessionID(w, r)
		if !ok {
			return
		}
		session, err := h.checkout.GetSession(r.Context(), id)
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusOK, session)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CheckoutHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	productID := r.URL.Query().Get("product")
	if productID == "" {
		http.Error(w, "product query parameter is required", http.StatusBadRequest)
		return
	}
	session, err := h.checkout.AddItem(r.Context(), id, productID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, session)
}

func (h *CheckoutHandler) handleAdjustQuantity(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
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
	session, err := h.checkout.AdjustQuantity(r.Context(), id, productID, delta)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, session)
}

func (h *CheckoutHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	productID := r.URL.Query().Get("product")
	if productID == "" {
		http.Error(w, "product query parameter is required", http.StatusBadRequest)
		return
	}
	session, err := h.checkout.RemoveItem(r.Context(), id, productID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, session)
}

func (h *CheckoutHandler) handleAttachCustomer(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	customerID := r.URL.Query().Get("customer")
	if customerID == "" {
		http.Error(w, "customer query parameter is required", http.StatusBadRequest)
		return
	}
	session, err := h.checkout.AttachCustomer(r.Context(), id, customerID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, session)
}

type remainingPayload struct {
	Remaining string `json:"remaining"`
}

func (h *CheckoutHandler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	method := models.PaymentMethod(r.URL.Query().Get("method"))
	amountStr := r.URL.Query().Get("amount")
	if amountStr == "" {
		http.Error(w, "amount query parameter is required", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		http.Error(w, "Invalid amount format", http.StatusBadRequest)
		return
	}
	session, err := h.checkout.RecordPayment(r.Context(), id, method, amount)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, session)
}

func (h *CheckoutHandler) handleRemaining(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodGet) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	remaining, err := h.checkout.Remaining(r.Context(), id)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, remainingPayload{Remaining: remaining.StringFixed(2)})
}

func (h *CheckoutHandler) handleSettle(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	transaction, err := h.checkout.Settle(r.Context(), id)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, transaction)
}

func (h *CheckoutHandler) handlePayInFull(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	method := models.PaymentMethod(r.URL.Query().Get("method"))
	transaction, err := h.checkout.PayInFull(r.Context(), id, method)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, transaction)
}

func (h *CheckoutHandler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.checkout.Abandon(r.Context(), id); err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func (h *CheckoutHandler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodGet) {
		return
	}
	transactions, err := h.checkout.ListTransactions(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, transactions)
}
