package service

import (
	"fmt"
	"net/url"
	"strconv"
)

// GatewayOnepay is the identifier stored in reservation_payments.gateway.
const GatewayOnepay = "onepay"

// OnepayClient builds the hosted checkout redirect for the onepay
// gateway. The gateway is redirect-based: we hand the browser a URL,
// the customer pays on the gateway's pages, and the gateway redirects
// back to our return route with the outcome in query parameters.
type OnepayClient struct {
	BaseURL   string // gateway origin, e.g. https://pay.onepay.example
	ReturnURL string // absolute URL of our /v1/payments/onepay/return route
}

// NewOnepayClient constructs a client from configuration values.
func NewOnepayClient(baseURL, returnURL string) *OnepayClient {
	return &OnepayClient{BaseURL: baseURL, ReturnURL: returnURL}
}

// CheckoutURL returns the hosted checkout URL for a merchant
// transaction. Amount is in whole KRW.
func (c *OnepayClient) CheckoutURL(transactionID string, amount int64) string {
	v := url.Values{}
	v.Set("txid", transactionID)
	v.Set("amount", strconv.FormatInt(amount, 10))
	v.Set("return_url", c.ReturnURL)
	return fmt.Sprintf("%s/checkout?%s", c.BaseURL, v.Encode())
}

// CallbackOutcome classifies a gateway return callback.
type CallbackOutcome int

const (
	// OutcomeCompleted means the gateway reported a successful payment.
	OutcomeCompleted CallbackOutcome = iota
	// OutcomeFailed means the gateway reported a declined payment; the
	// failure code explains why.
	OutcomeFailed
	// OutcomeHashMismatch means the response signature did not verify.
	// This is not a payment failure: the payment state is unknown and
	// the customer is told to contact support.
	OutcomeHashMismatch
	// OutcomeInvalid means the callback parameters were malformed.
	OutcomeInvalid
)

// ClassifyCallback maps the gateway's return parameters to an outcome.
// A hash error takes precedence over the reported status because a
// request whose signature does not verify cannot be trusted either way.
func ClassifyCallback(status, errParam string) CallbackOutcome {
	if errParam == "hash" {
		return OutcomeHashMismatch
	}
	switch status {
	case "success":
		return OutcomeCompleted
	case "failed":
		return OutcomeFailed
	default:
		return OutcomeInvalid
	}
}

// failureReasons maps the gateway's numeric failure codes to the
// customer-facing Korean messages shown on the receipt page.
var failureReasons = map[int]string{
	1: "카드 승인이 거절되었습니다",
	2: "카드 한도를 초과했습니다",
	3: "유효하지 않은 카드입니다",
	4: "잔액이 부족합니다",
	5: "결제 시간이 초과되었습니다",
	6: "사용자가 결제를 취소했습니다",
	7: "기타 오류가 발생했습니다",
}

// FailureReason returns the human-readable message for a gateway
// failure code. Codes outside 1..7 fall back to the generic message.
func FailureReason(code int) string {
	if msg, ok := failureReasons[code]; ok {
		return msg
	}
	return failureReasons[7]
}
