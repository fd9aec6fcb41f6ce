package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/CatfishW/novus-pay/internal/models"
	"github.com/CatfishW/novus-pay/internal/providers"
	"github.com/CatfishW/novus-pay/pkg/utils"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// OrderService is the slice of the lifecycle manager the HTTP boundary uses.
type OrderService interface {
	CreateOrder(ctx context.Context, playerName string, amountCNY decimal.Decimal, gameCoins int64) (*models.Order, error)
	GetOrder(orderID string) (*models.Order, error)
	GetStatus(orderID string) (models.OrderStatus, error)
	ConfirmPayment(orderID string) error
	MarkCompleted(orderID string) error
}

// NotifyVerifier authenticates provider webhook requests before any state moves.
type NotifyVerifier interface {
	ParseNotify(ctx context.Context, r *http.Request) (orderRef string, paid bool, err error)
}

type PaymentHandler struct {
	orders    OrderService
	verifier  NotifyVerifier // nil when running on the mock provider
	publicURL string
}

func NewPaymentHandler(orders OrderService, verifier NotifyVerifier, publicURL string) *PaymentHandler {
	return &PaymentHandler{orders: orders, verifier: verifier, publicURL: publicURL}
}

type createOrderRequest struct {
	PlayerName string          `json:"player_name"`
	AmountCNY  decimal.Decimal `json:"amount_cny"`
	GameCoins  int64           `json:"game_coins"`
}

type orderResponse struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
	QRCodeURL   string `json:"qr_code_url"` // mirrors checkout_url for old clients
	Status      string `json:"status"`
}

type statusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// CreateOrder 创建充值订单
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req.PlayerName, req.AmountCNY, req.GameCoins)
	if err != nil {
		h.handleError(w, err)
		return
	}

	checkoutURL := fmt.Sprintf("%s/checkout/%s", h.publicURL, order.OrderID)
	utils.WriteHttpResponse(w, http.StatusOK, orderResponse{
		OrderID:     order.OrderID,
		CheckoutURL: checkoutURL,
		// old game clients cannot open weixin:// links directly, so both
		// fields carry the web checkout address
		QRCodeURL: checkoutURL,
		Status:    string(order.Status),
	})
}

// CheckStatus 查询订单状态
func (h *PaymentHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["order_id"]

	status, err := h.orders.GetStatus(orderID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	utils.WriteHttpResponse(w, http.StatusOK, statusResponse{OrderID: orderID, Status: string(status)})
}

// CompleteOrder 完成订单，由游戏侧发币后调用
func (h *PaymentHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["order_id"]

	if err := h.orders.MarkCompleted(orderID); err != nil {
		h.handleError(w, err)
		return
	}
	utils.WriteHttpResponse(w, http.StatusOK, map[string]string{"status": "success"})
}

// SimulatePayment 模拟支付成功，仅供联调
func (h *PaymentHandler) SimulatePayment(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	if err := h.orders.ConfirmPayment(orderID); err != nil {
		h.handleError(w, err)
		return
	}
	utils.WriteHttpResponse(w, http.StatusOK, map[string]string{"status": "simulated_success"})
}

// CheckoutStatus serves the checkout page's polling script. Public: no
// secret accepted, order id only, plain not-found message.
func (h *PaymentHandler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["order_id"]

	status, err := h.orders.GetStatus(orderID)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	utils.WriteHttpResponse(w, http.StatusOK, statusResponse{OrderID: orderID, Status: string(status)})
}

// handleError 统一错误处理
func (h *PaymentHandler) handleError(w http.ResponseWriter, err error) {
	slog.Error("Handler error", "error", err)

	var transitionErr *models.InvalidTransitionError
	var validationErr *models.ValidationError
	var providerErr *providers.ProviderError
	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		http.Error(w, "Order not found", http.StatusNotFound)
	case errors.As(err, &transitionErr):
		http.Error(w, transitionErr.Error(), http.StatusConflict)
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &providerErr):
		http.Error(w, "Payment Provider Error", http.StatusBadGateway)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
