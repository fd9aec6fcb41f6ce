package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/CatfishW/novus-pay/internal/models"
	"github.com/CatfishW/novus-pay/pkg/utils"
)

type webhookAck struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WechatNotify handles payment notifications from WeChat Pay. The body is
// authenticated against the platform certificate chain before any state moves;
// an unverifiable call is rejected and logged, never trusted. Delivery is
// at-least-once, so the underlying transition is idempotent.
func (h *PaymentHandler) WechatNotify(w http.ResponseWriter, r *http.Request) {
	orderRef, paid, err := h.verifier.ParseNotify(r.Context(), r)
	if err != nil {
		slog.Warn("rejected unverifiable payment notification", "remote", r.RemoteAddr, "error", err)
		utils.WriteHttpResponse(w, http.StatusUnauthorized, webhookAck{Code: "FAIL", Message: "verification failed"})
		return
	}

	if !paid {
		// not a success event; ack so the provider stops retrying
		utils.WriteHttpResponse(w, http.StatusOK, webhookAck{Code: "SUCCESS", Message: "ignored"})
		return
	}

	if err := h.orders.ConfirmPayment(orderRef); err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			// the notification is authentic but this process has no such
			// order (e.g. restarted on the memory store); a FAIL here would
			// only make the provider retry forever
			slog.Warn("payment notification for unknown order", "order_id", orderRef)
			utils.WriteHttpResponse(w, http.StatusOK, webhookAck{Code: "SUCCESS", Message: "order unknown"})
			return
		}
		slog.Error("confirm payment from notification", "order_id", orderRef, "error", err)
		utils.WriteHttpResponse(w, http.StatusInternalServerError, webhookAck{Code: "FAIL", Message: "processing error"})
		return
	}
	utils.WriteHttpResponse(w, http.StatusOK, webhookAck{Code: "SUCCESS", Message: "ok"})
}
