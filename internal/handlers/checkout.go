package handlers

import (
	"encoding/base64"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/CatfishW/novus-pay/internal/models"
	"github.com/CatfishW/novus-pay/internal/qr"

	"github.com/gorilla/mux"
)

const checkoutHTML = `<!DOCTYPE html>
<html>
<head>
    <title>NovusPay Checkout</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f0f2f5; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; }
        .card { background: white; padding: 2rem; border-radius: 12px; box-shadow: 0 4px 6px -1px rgba(0,0,0,0.1); text-align: center; max-width: 400px; width: 100%; }
        .amount { font-size: 2rem; font-weight: bold; color: #1a1a1a; margin: 1rem 0; }
        .player { color: #666; margin-bottom: 2rem; }
        .qr-container { background: #fafafa; padding: 1rem; border-radius: 8px; display: inline-block; }
        img { width: 200px; height: 200px; }
        .status { margin-top: 1.5rem; color: #4caf50; font-weight: 500; }
        .logo { font-size: 1.5rem; font-weight: bold; color: #2196f3; margin-bottom: 0.5rem; }
    </style>
    <script>
        setInterval(function() {
            fetch("/checkout/{{.OrderID}}/status")
                .then(function(r) { return r.json(); })
                .then(function(s) { if (s.status !== "{{.Status}}") { location.reload(); } })
                .catch(function() {});
        }, 3000);
    </script>
</head>
<body>
    <div class="card">
        <div class="logo">NovusPay</div>
        <div>Payment for Novus Coins</div>
        <div class="amount">&yen;{{.Amount}}</div>
        <div class="player">Player: {{.Player}}</div>

        <div class="qr-container">
            <img src="{{.QRDataURI}}" alt="WeChat Pay QR">
        </div>

        <div class="status">Scan with WeChat to Pay</div>
        <p style="font-size: 0.8rem; color: #999; margin-top: 2rem;">Order ID: {{.OrderID}} &middot; {{.Status}}</p>
    </div>
</body>
</html>
`

var checkoutTmpl = template.Must(template.New("checkout").Parse(checkoutHTML))

type checkoutData struct {
	OrderID string
	Player  string
	Amount  string
	Status  string
	// pre-built data URI; in URL context the template engine would
	// percent-escape the base64 payload
	QRDataURI template.URL
}

// CheckoutPage renders the public payment page. It requires only a valid
// order id and never accepts the internal secret; failures are plain
// messages, never raw error text.
func (h *PaymentHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["order_id"]
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	order, err := h.orders.GetOrder(orderID)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "<h1>Order not found</h1>")
		return
	}

	if order.Status == models.OrderStatusCompleted {
		io.WriteString(w, "<h1>Payment Already Completed</h1>")
		return
	}

	png, err := qr.Render(order.ProviderRef)
	if err != nil {
		slog.Error("render checkout qr", "order_id", orderID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "<h1>Checkout temporarily unavailable</h1>")
		return
	}

	data := checkoutData{
		OrderID:   order.OrderID,
		Player:    order.PlayerName,
		Amount:    order.AmountCNY.StringFixed(2),
		Status:    string(order.Status),
		QRDataURI: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
	}
	if err := checkoutTmpl.Execute(w, data); err != nil {
		slog.Error("render checkout page", "order_id", orderID, "error", err)
	}
}
