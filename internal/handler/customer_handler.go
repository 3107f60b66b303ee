package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"gamestore_pos/internal/service"
)

// CustomerHandler exposes the customer ledger under /customers.
type CustomerHandler struct {
	logger    *log.Logger
	customers *service.CustomerService
}

func NewCustomerHandler(logger *log.Logger, customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		logger:    logger,
		customers: customers,
	}
}

func (h *CustomerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/customers", h.handleCustomers)
	mux.HandleFunc("/customers/update", h.handleUpdate)
	mux.HandleFunc("/customers/points", h.handleAddPoints)
	mux.HandleFunc("/customers/delete", h.handleDelete)
}

func (h *CustomerHandler) decodeFields(w http.ResponseWriter, r *http.Request) (service.CustomerFields, bool) {
	var fields service.CustomerFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return service.CustomerFields{}, false
	}
	return fields, true
}

func (h *CustomerHandler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		customers, err := h.customers.SearchCustomers(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusOK, customers)
	case http.MethodPost:
		fields, ok := h.decodeFields(w, r)
		if !ok {
			return
		}
		customer, err := h.customers.CreateCustomer(r.Context(), fields)
		if err != nil {
			writeError(h.logger, w, err)
			return
		}
		writeJSON(h.logger, w, http.StatusCreated, customer)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CustomerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	customer, err := h.customers.UpdateCustomer(r.Context(), id, fields)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, customer)
}

func (h *CustomerHandler) handleAddPoints(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id := r.URL.Query().Get("id")
	pointsStr := r.URL.Query().Get("points")
	if id == "" || pointsStr == "" {
		http.Error(w, "id and points query parameters are required", http.StatusBadRequest)
		return
	}
	points, err := strconv.Atoi(pointsStr)
	if err != nil {
		http.Error(w, "Invalid points format", http.StatusBadRequest)
		return
	}
	customer, err := h.customers.AddLoyaltyPoints(r.Context(), id, points)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, customer)
}

func (h *CustomerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.logger, w, r, http.MethodPost) {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}
	if err := h.customers.DeleteCustomer(r.Context(), id); err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]string{"status": "deleted"})
}
