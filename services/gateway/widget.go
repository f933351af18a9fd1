package gateway

import (
	"fmt"
	"sync"

	"medibook/config"
	"medibook/models"
)

// WidgetConfig is the static checkout widget setup shipped to the patient
// app alongside per-order options: the script to load and display branding.
type WidgetConfig struct {
	ScriptURL   string `json:"scriptUrl"`
	DisplayName string `json:"displayName"`
	ThemeColor  string `json:"themeColor"`
}

// CheckoutOptions is everything the patient app needs to open the gateway
// checkout widget for one order. Amount and currency are backend-supplied;
// nothing here is recomputed locally.
type CheckoutOptions struct {
	Widget   WidgetConfig       `json:"widget"`
	Key      string             `json:"key"`
	OrderID  string             `json:"orderId"`
	Amount   float64            `json:"amount"`
	Currency string             `json:"currency"`
	Prefill  models.ContactInfo `json:"prefill"`
}

var (
	widgetOnce sync.Once
	widgetCfg  WidgetConfig
)

// LoadWidgetConfig resolves the static widget config exactly once per
// process, mirroring the client-side load-once guard for the gateway script.
func LoadWidgetConfig() WidgetConfig {
	widgetOnce.Do(func() {
		widgetCfg = WidgetConfig{
			ScriptURL:   config.AppConfig.GatewayScriptURL,
			DisplayName: config.AppConfig.GatewayDisplayName,
			ThemeColor:  config.AppConfig.GatewayThemeColor,
		}
	})
	return widgetCfg
}

// BuildOptions assembles checkout options strictly from the backend-created
// order. Any missing field is a hard failure, not a best-effort checkout.
func BuildOptions(order models.Order, payer models.ContactInfo) (CheckoutOptions, error) {
	if order.GatewayKey == "" {
		return CheckoutOptions{}, fmt.Errorf("order is missing the gateway key")
	}
	if order.OrderID == "" {
		return CheckoutOptions{}, fmt.Errorf("order is missing the gateway order id")
	}
	if order.Amount <= 0 {
		return CheckoutOptions{}, fmt.Errorf("order has a non-positive amount: %v", order.Amount)
	}

	prefill := order.Prefill
	if prefill == (models.ContactInfo{}) {
		prefill = payer
	}

	return CheckoutOptions{
		Widget:   LoadWidgetConfig(),
		Key:      order.GatewayKey,
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Prefill:  prefill,
	}, nil
}
