package service

import (
	"net/url"
	"strings"
	"testing"
)

func TestCheckoutURL(t *testing.T) {
	c := NewOnepayClient("https://sandbox.onepay.example", "http://localhost:8080/v1/payments/onepay/return")
	raw := c.CheckoutURL("tx-123", 1500000)

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("CheckoutURL produced an unparseable URL: %v", err)
	}
	if !strings.HasPrefix(raw, "https://sandbox.onepay.example/checkout?") {
		t.Errorf("unexpected URL prefix: %s", raw)
	}
	q := u.Query()
	if q.Get("txid") != "tx-123" {
		t.Errorf("txid = %q", q.Get("txid"))
	}
	if q.Get("amount") != "1500000" {
		t.Errorf("amount = %q", q.Get("amount"))
	}
	if q.Get("return_url") != "http://localhost:8080/v1/payments/onepay/return" {
		t.Errorf("return_url = %q", q.Get("return_url"))
	}
}

func TestClassifyCallback(t *testing.T) {
	cases := []struct {
		status, errParam string
		want             CallbackOutcome
	}{
		{"success", "", OutcomeCompleted},
		{"failed", "", OutcomeFailed},
		{"", "", OutcomeInvalid},
		{"paid", "", OutcomeInvalid},
		// a hash error outranks any reported status
		{"success", "hash", OutcomeHashMismatch},
		{"failed", "hash", OutcomeHashMismatch},
		{"", "hash", OutcomeHashMismatch},
	}
	for _, c := range cases {
		if got := ClassifyCallback(c.status, c.errParam); got != c.want {
			t.Errorf("ClassifyCallback(%q, %q) = %v, want %v", c.status, c.errParam, got, c.want)
		}
	}
}

func TestFailureReason(t *testing.T) {
	for code := 1; code <= 7; code++ {
		if FailureReason(code) == "" {
			t.Errorf("no message for failure code %d", code)
		}
	}
	if FailureReason(1) != "카드 승인이 거절되었습니다" {
		t.Errorf("code 1 message = %q", FailureReason(1))
	}
	// unknown codes fall back to the generic message
	if FailureReason(0) != FailureReason(7) {
		t.Errorf("code 0 should fall back to the generic message")
	}
	if FailureReason(99) != FailureReason(7) {
		t.Errorf("code 99 should fall back to the generic message")
	}
}
