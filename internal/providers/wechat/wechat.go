package wechat

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/CatfishW/novus-pay/internal/config"
	"github.com/CatfishW/novus-pay/internal/providers"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	wechatpay_utils "github.com/wechatpay-apiv3/wechatpay-go/utils"
)

// Adapter drives WeChat Pay Native (QR) payments. The client is built once at
// construction; credential problems surface here, at startup, not per request.
type Adapter struct {
	cfg           *config.WechatPaymentConfig
	svc           native.NativeApiService
	notifyHandler *notify.Handler
}

func New(cfg *config.WechatPaymentConfig) (*Adapter, error) {
	mchPrivateKey, err := wechatpay_utils.LoadPrivateKeyWithPath(cfg.MchPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load merchant private key: %w", err)
	}

	client, err := core.NewClient(context.Background(),
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.MchAPIV3Key))
	if err != nil {
		return nil, fmt.Errorf("init wechat pay client: %w", err)
	}

	certVisitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)
	handler, err := notify.NewRSANotifyHandler(cfg.MchAPIV3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))
	if err != nil {
		return nil, fmt.Errorf("init notify handler: %w", err)
	}

	return &Adapter{
		cfg:           cfg,
		svc:           native.NativeApiService{Client: client},
		notifyHandler: handler,
	}, nil
}

func (a *Adapter) CreatePaymentIntent(ctx context.Context, amountMinorUnits int64, description string, orderRef string) (string, error) {
	resp, result, err := a.svc.Prepay(ctx, native.PrepayRequest{
		Appid:       core.String(a.cfg.AppID),
		Mchid:       core.String(a.cfg.MchID),
		Description: core.String(description),
		OutTradeNo:  core.String(orderRef),
		NotifyUrl:   core.String(a.cfg.NotifyURL),
		Amount: &native.Amount{
			Total:    core.Int64(amountMinorUnits),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		status := 0
		if result != nil && result.Response != nil {
			status = result.Response.StatusCode
		}
		return "", &providers.ProviderError{
			Provider: "wechatpay",
			Status:   status,
			Message:  "native prepay failed",
			Err:      err,
		}
	}
	if resp.CodeUrl == nil || *resp.CodeUrl == "" {
		return "", &providers.ProviderError{
			Provider: "wechatpay",
			Status:   http.StatusOK,
			Message:  "prepay response missing code_url",
		}
	}
	return *resp.CodeUrl, nil
}

// ParseNotify authenticates a payment notification against the platform
// certificate chain and returns the order reference it concerns. Requests
// that fail verification must never reach the lifecycle manager.
func (a *Adapter) ParseNotify(ctx context.Context, r *http.Request) (orderRef string, paid bool, err error) {
	transaction := new(payments.Transaction)
	if _, err := a.notifyHandler.ParseNotifyRequest(ctx, r, transaction); err != nil {
		return "", false, fmt.Errorf("verify wechat notify: %w", err)
	}
	if transaction.OutTradeNo == nil {
		return "", false, errors.New("wechat notify missing out_trade_no")
	}
	paid = transaction.TradeState != nil && *transaction.TradeState == "SUCCESS"
	return *transaction.OutTradeNo, paid, nil
}
