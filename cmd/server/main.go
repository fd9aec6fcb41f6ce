package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CatfishW/novus-pay/internal/config"
	"github.com/CatfishW/novus-pay/internal/dao"
	"github.com/CatfishW/novus-pay/internal/handlers"
	"github.com/CatfishW/novus-pay/internal/providers"
	"github.com/CatfishW/novus-pay/internal/providers/mock"
	"github.com/CatfishW/novus-pay/internal/providers/wechat"
	"github.com/CatfishW/novus-pay/internal/services"

	mux "github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

func setupLogging(logLevel string) {
	switch strings.ToLower(logLevel) {
	case "debug":
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "info":
		slog.SetLogLoggerLevel(slog.LevelInfo)
	case "warn":
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		slog.SetLogLoggerLevel(slog.LevelError)
	}
}

// initRepository 初始化订单存储
func initRepository(cfg *config.Config) (dao.Repository, error) {
	if cfg.Mysql == nil {
		slog.Info("using in-memory order store, orders will not survive a restart")
		return dao.NewMemoryRepository(), nil
	}
	return dao.NewMysqlRepository(cfg.Mysql.DSN())
}

// initProvider selects the payment adapter once at startup. Partial
// credentials abort the process here rather than silently taking
// unauthenticated payments through the mock.
func initProvider(cfg *config.Config) (providers.Provider, *wechat.Adapter, error) {
	configured, err := cfg.WechatPayment.Configured()
	if err != nil {
		return nil, nil, err
	}
	if !configured {
		slog.Warn("wechat pay not configured, using mock payment provider")
		return mock.New(), nil, nil
	}

	adapter, err := wechat.New(&cfg.WechatPayment)
	if err != nil {
		return nil, nil, fmt.Errorf("init wechat pay adapter: %w", err)
	}
	slog.Info("wechat pay adapter initialized", "mch_id", cfg.WechatPayment.MchID)
	return adapter, adapter, nil
}

func initNotifier(cfg *config.Config) (services.Notifier, error) {
	if cfg.Mqtt == nil {
		return services.NewLogNotifier(), nil
	}
	return services.NewMqttNotifier(cfg.Mqtt)
}

// setupRoutes 设置路由
func setupRoutes(h *handlers.PaymentHandler, cfg *config.Config, withWebhook bool) *mux.Router {
	r := mux.NewRouter()

	auth := handlers.ApiAuthCheck(cfg.APIKey)
	r.HandleFunc("/internal/create_order", handlers.WithMidWare(h.CreateOrder, auth)).Methods("POST")
	r.HandleFunc("/internal/check_status/{order_id}", handlers.WithMidWare(h.CheckStatus, auth)).Methods("GET")
	r.HandleFunc("/internal/complete_order/{order_id}", handlers.WithMidWare(h.CompleteOrder, auth)).Methods("POST")
	r.HandleFunc("/webhook/mock_simulate_payment", handlers.WithMidWare(h.SimulatePayment, auth)).Methods("POST")

	burst := int(cfg.PublicRateLimit)
	if burst < 1 {
		burst = 1 // fractional rates must still admit a request
	}
	limit := handlers.RateLimit(rate.NewLimiter(rate.Limit(cfg.PublicRateLimit), burst))
	r.HandleFunc("/checkout/{order_id}", handlers.WithMidWare(h.CheckoutPage, limit)).Methods("GET")
	r.HandleFunc("/checkout/{order_id}/status", handlers.WithMidWare(h.CheckoutStatus, limit)).Methods("GET")

	if withWebhook {
		r.HandleFunc("/webhook/wechat_notify", h.WechatNotify).Methods("POST")
	}
	return r
}

// startServer 启动HTTP服务器
func startServer(router *mux.Router, cfg *config.Config) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server: " + server.Addr + "...")

	if err := server.ListenAndServe(); err != nil {
		slog.Error("Failed to start HTTP server: " + err.Error())
	}
}

func main() {
	cfg, err := config.LoadConfig("./config.json")
	if err != nil {
		log.Fatal("Could not load config: ", err)
	}

	setupLogging(cfg.Loglevel)

	if cfg.APIKey == "" {
		log.Fatal("api_key must be configured, internal callers cannot be authenticated without it")
	}

	repo, err := initRepository(cfg)
	if err != nil {
		log.Fatal("Could not initialize order store: ", err)
	}

	provider, wxAdapter, err := initProvider(cfg)
	if err != nil {
		log.Fatal("Could not initialize payment provider: ", err)
	}

	notifier, err := initNotifier(cfg)
	if err != nil {
		log.Fatal("Could not initialize notifier: ", err)
	}

	orderService := services.NewOrderService(repo, provider, notifier)

	var verifier handlers.NotifyVerifier
	if wxAdapter != nil {
		verifier = wxAdapter
	}
	h := handlers.NewPaymentHandler(orderService, verifier, cfg.PublicURL)

	router := setupRoutes(h, cfg, wxAdapter != nil)
	startServer(router, cfg)
}
