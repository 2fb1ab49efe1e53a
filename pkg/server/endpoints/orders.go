package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/server"
	"github.com/zkmarket/broker/pkg/server/middleware"
	"github.com/zkmarket/broker/pkg/store"
)

// OrderResponse is the API representation of an order.
type OrderResponse struct {
	ID              string    `json:"id"`
	RequestID       string    `json:"request_id"`
	Client          string    `json:"client"`
	FulfillmentType string    `json:"fulfillment_type"`
	Status          string    `json:"status"`
	ImageURL        string    `json:"image_url"`
	InputURL        string    `json:"input_url,omitempty"`
	LockPrice       string    `json:"lock_price,omitempty"`
	TotalCycles     uint64    `json:"total_cycles,omitempty"`
	ExpiresAt       uint64    `json:"expires_at"`
	LockExpiresAt   uint64    `json:"lock_expires_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ErrorResponse is the body of API error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterOrderEndpoints registers order inspection endpoints.
func RegisterOrderEndpoints(s *server.Server, auth *middleware.APIAuthenticator) {
	sub := s.Router.PathPrefix("/orders").Subrouter()
	sub.Use(auth.Middleware)
	sub.HandleFunc("", handleListOrders(s)).Methods("GET")
	sub.HandleFunc("/{id}", handleGetOrder(s)).Methods("GET")
}

func handleListOrders(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var statusFilter *model.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := model.OrderStatusString(raw)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid status filter"})
				return
			}
			statusFilter = &status
		}

		orders, err := s.Store.ListOrders(r.Context(), statusFilter)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "failed to list orders"})
			return
		}

		response := make([]OrderResponse, len(orders))
		for i, order := range orders {
			response[i] = orderResponse(order)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

func handleGetOrder(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id := mux.Vars(r)["id"]

		order, err := s.Store.GetOrder(r.Context(), id)
		if errors.Is(err, store.ErrOrderNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "order not found"})
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "failed to get order"})
			return
		}
		_ = json.NewEncoder(w).Encode(orderResponse(order))
	}
}

func orderResponse(order *model.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		RequestID:       order.RequestID,
		Client:          order.Client,
		FulfillmentType: order.FulfillmentType,
		Status:          order.Status.String(),
		ImageURL:        order.ImageURL,
		InputURL:        order.InputURL,
		LockPrice:       order.LockPrice,
		TotalCycles:     order.TotalCycles,
		ExpiresAt:       order.ExpiresAt(),
		LockExpiresAt:   order.LockExpiresAt(),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
