package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	interf "github.com/EcoColonesInc/EcoColones-sub000/internal/interfaces"
	model "github.com/EcoColonesInc/EcoColones-sub000/internal/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	router  *mux.Router
	service interf.Ledger
	logger  *zap.Logger
}

func NewHandler(service interf.Ledger, logger *zap.Logger) *LedgerHandler {
	router := mux.NewRouter()
	handler := &LedgerHandler{router, service, logger}
	router.Use(MiddlewareLog())
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/deposits", handler.CreateDepositHandler).Methods(http.MethodPost)
	router.Handle("/redemptions", MiddlewareAuth(http.HandlerFunc(handler.CreateRedemptionHandler))).Methods(http.MethodPost)
	router.HandleFunc("/balance/{identification}", handler.GetBalanceHandler).Methods(http.MethodGet)

	return handler
}

func (h *LedgerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *LedgerHandler) Log(msg string, handler string, err error) {
	h.logger.Error(msg,
		zap.String("handler", handler),
		zap.Error(err),
	)
}

type errorResponse struct {
	Error string `json:"error"`
	// записанная транзакция при отказе начисления баллов, для ручной сверки
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

type balanceResponse struct {
	Points int64 `json:"points"`
}

// HTTP статус по виду ошибки
func statusFromError(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrUnavailable):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	j, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(j)
}

// Сдача вторсырья
func (h *LedgerHandler) CreateDepositHandler(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		h.Log("Get request body", "CreateDepositHandler", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body is empty"})
		return
	}
	defer req.Body.Close()

	deposit := model.DepositRequest{}
	err = json.Unmarshal(body, &deposit)
	if err != nil {
		h.Log("Unmarshal", "CreateDepositHandler", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body is not correct"})
		return
	}

	res, err := h.service.CreateDeposit(req.Context(), deposit)
	if err != nil {
		h.Log("CreateDeposit", "CreateDepositHandler", err)
		// журнал записан, начисление не прошло - вернуть транзакцию для сверки
		if errors.Is(err, model.ErrBalanceUpdate) {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Transaction: &res.Transaction})
			return
		}
		writeJSON(w, statusFromError(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Покупка у партнера
func (h *LedgerHandler) CreateRedemptionHandler(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		h.Log("Get request body", "CreateRedemptionHandler", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body is empty"})
		return
	}
	defer req.Body.Close()

	redemption := model.RedemptionRequest{}
	err = json.Unmarshal(body, &redemption)
	if err != nil {
		h.Log("Unmarshal", "CreateRedemptionHandler", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body is not correct"})
		return
	}

	res, err := h.service.CreateRedemption(req.Context(), redemption)
	if err != nil {
		h.Log("CreateRedemption", "CreateRedemptionHandler", err)
		writeJSON(w, statusFromError(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Баланс участника
func (h *LedgerHandler) GetBalanceHandler(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	points, err := h.service.GetBalance(req.Context(), vars["identification"])
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.Log("GetBalance", "GetBalanceHandler", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Points: points})
}
