package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/usecase/command"
	"github.com/tair/stock-ledger/internal/ledger/usecase/query"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Usecases bundles the operation handlers the HTTP adapter dispatches to.
type Usecases struct {
	CreateItem       *command.CreateItemHandler
	UpdateItem       *command.UpdateItemHandler
	DeleteItem       *command.DeleteItemHandler
	RecordReceipt    *command.RecordReceiptHandler
	RecordIssue      *command.RecordIssueHandler
	RecordAdjustment *command.RecordAdjustmentHandler
	GetItem          *query.GetItemHandler
	ListItems        *query.ListItemsHandler
	ListCategories   *query.ListCategoriesHandler
	LowStock         *query.LowStockHandler
	GetBalance       *query.GetBalanceHandler
	ListMovements    *query.ListMovementsHandler
}

// LedgerHandler handles HTTP requests for the stock ledger
type LedgerHandler struct {
	uc Usecases
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(uc Usecases) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterRoutes registers ledger routes on the router
func (h *LedgerHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost)
	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items/categories", h.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/items/low-stock", h.LowStock).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", h.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", h.UpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/items/{id:[0-9]+}", h.DeleteItem).Methods(http.MethodDelete)

	api.HandleFunc("/stock/in", h.StockIn).Methods(http.MethodPost)
	api.HandleFunc("/stock/out", h.StockOut).Methods(http.MethodPost)
	api.HandleFunc("/stock/adjust", h.StockAdjust).Methods(http.MethodPost)
	api.HandleFunc("/stock/balance/{id:[0-9]+}", h.Balance).Methods(http.MethodGet)
	api.HandleFunc("/stock/movements/{id:[0-9]+}", h.Movements).Methods(http.MethodGet)
}

// RegisterHealthCheck registers the health check endpoint
func (h *LedgerHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "database unreachable",
			})
			return
		}
		respondJSON(w, http.StatusOK, Response{Success: true, Message: "ok"})
	}).Methods(http.MethodGet)
}

type itemRequest struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
	Unit     string  `json:"unit"`
	MinStock int64   `json:"min_stock"`
}

// CreateItem handles POST /api/items
func (h *LedgerHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	item, err := h.uc.CreateItem.Handle(r.Context(), command.CreateItemCommand{
		SKU:      req.SKU,
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		MinStock: req.MinStock,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Item created successfully", Data: item})
}

// ListItems handles GET /api/items
func (h *LedgerHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	items, err := h.uc.ListItems.Handle(r.Context(), query.ListItemsQuery{Page: page, Size: size})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: items})
}

// ListCategories handles GET /api/items/categories
func (h *LedgerHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.uc.ListCategories.Handle(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: categories})
}

// LowStock handles GET /api/items/low-stock
func (h *LedgerHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	report, err := h.uc.LowStock.Handle(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: report})
}

// GetItem handles GET /api/items/{id}
func (h *LedgerHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.uc.GetItem.Handle(r.Context(), query.GetItemQuery{ItemID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

type itemUpdateRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
	MinStock *int64  `json:"min_stock"`
}

// UpdateItem handles PUT /api/items/{id}
func (h *LedgerHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req itemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	item, err := h.uc.UpdateItem.Handle(r.Context(), command.UpdateItemCommand{
		ItemID: id,
		Update: domain.ItemUpdate{
			Name:     req.Name,
			Category: req.Category,
			Unit:     req.Unit,
			MinStock: req.MinStock,
		},
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Item updated successfully", Data: item})
}

// DeleteItem handles DELETE /api/items/{id}
func (h *LedgerHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.uc.DeleteItem.Handle(r.Context(), command.DeleteItemCommand{ItemID: id}); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Item deleted successfully"})
}

type movementRequest struct {
	ItemID uint            `json:"item_id"`
	Qty    int64           `json:"qty"`
	Ref    *string         `json:"ref"`
	Meta   domain.Metadata `json:"metadata"`
}

// StockIn handles POST /api/stock/in
func (h *LedgerHandler) StockIn(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}
	result, err := h.uc.RecordReceipt.Handle(r.Context(), command.RecordReceiptCommand{
		ItemID: req.ItemID, Qty: req.Qty, Ref: req.Ref, Meta: req.Meta,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Receipt recorded", Data: result})
}

// StockOut handles POST /api/stock/out
func (h *LedgerHandler) StockOut(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}
	result, err := h.uc.RecordIssue.Handle(r.Context(), command.RecordIssueCommand{
		ItemID: req.ItemID, Qty: req.Qty, Ref: req.Ref, Meta: req.Meta,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Issue recorded", Data: result})
}

// StockAdjust handles POST /api/stock/adjust
func (h *LedgerHandler) StockAdjust(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}
	result, err := h.uc.RecordAdjustment.Handle(r.Context(), command.RecordAdjustmentCommand{
		ItemID: req.ItemID, Qty: req.Qty, Ref: req.Ref, Meta: req.Meta,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Adjustment recorded", Data: result})
}

// Balance handles GET /api/stock/balance/{id}
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	info, err := h.uc.GetBalance.Handle(r.Context(), query.GetBalanceQuery{ItemID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: info})
}

// Movements handles GET /api/stock/movements/{id}
func (h *LedgerHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	q := query.ListMovementsQuery{ItemID: id}
	params := r.URL.Query()
	q.Limit, _ = strconv.Atoi(params.Get("limit"))
	q.Offset, _ = strconv.Atoi(params.Get("offset"))
	if v := params.Get("type"); v != "" {
		mt := domain.MovementType(v)
		q.Type = &mt
	}
	if v := params.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid start_date"})
			return
		}
		q.From = &t
	}
	if v := params.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid end_date"})
			return
		}
		q.To = &t
	}

	page, err := h.uc.ListMovements.Handle(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: page})
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid item ID"})
		return 0, false
	}
	return uint(id), true
}

// StatusForError maps the domain error taxonomy onto HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	respondJSON(w, status, Response{Success: false, Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
