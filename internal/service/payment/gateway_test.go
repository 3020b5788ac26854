package payment

import (
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestGateway_UnregisteredMethod(t *testing.T) {
	g := NewGateway(nil)

	_, err := g.Processor(domain.PaymentMethodWallet)
	if !domain.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	// Decline и misconfiguration — разные классы ошибок.
	if domain.IsPaymentError(err) {
		t.Fatal("ConfigurationError must not be a PaymentError")
	}
}

func TestGateway_DefaultRegistersAllMethods(t *testing.T) {
	g := NewDefaultGateway(nil)

	methods := []domain.PaymentMethod{
		domain.PaymentMethodCreditCard,
		domain.PaymentMethodDebitCard,
		domain.PaymentMethodNetBanking,
		domain.PaymentMethodWallet,
	}
	for _, method := range methods {
		if _, err := g.Processor(method); err != nil {
			t.Fatalf("processor for %s: %v", method, err)
		}
	}
}

func TestCreditCardProcessor_Charge(t *testing.T) {
	p := NewCreditCardProcessor()

	receipt, err := p.Charge(1000, domain.PaymentInfo{InfoCardNumber: "1234567890123456"})
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if receipt.ID == "" || receipt.AmountMinor != 1000 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	_, err = p.Charge(1000, domain.PaymentInfo{InfoCardNumber: "1234"})
	if !domain.IsPaymentError(err) {
		t.Fatalf("expected PaymentError for short card number, got %v", err)
	}
	_, err = p.Charge(1000, domain.PaymentInfo{})
	if !domain.IsPaymentError(err) {
		t.Fatalf("expected PaymentError for missing card number, got %v", err)
	}
}

func TestDebitCardProcessor_RequiresCVV(t *testing.T) {
	p := NewDebitCardProcessor()

	info := domain.PaymentInfo{InfoCardNumber: "1234567890123456"}
	if _, err := p.Charge(500, info); !domain.IsPaymentError(err) {
		t.Fatalf("expected PaymentError without cvv, got %v", err)
	}

	info[InfoCardCVV] = "042"
	if _, err := p.Charge(500, info); err != nil {
		t.Fatalf("charge with cvv: %v", err)
	}
}

func TestNetBankingProcessor_Validation(t *testing.T) {
	p := NewNetBankingProcessor()

	_, err := p.Charge(500, domain.PaymentInfo{InfoBankCode: "SBIN0001"})
	if !domain.IsPaymentError(err) {
		t.Fatalf("expected PaymentError without account, got %v", err)
	}

	info := domain.PaymentInfo{InfoAccountID: "00123456", InfoBankCode: "SBIN0001"}
	if _, err := p.Charge(500, info); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if err := p.Refund(500, info); err != nil {
		t.Fatalf("refund: %v", err)
	}
}

func TestWalletProcessor_Validation(t *testing.T) {
	p := NewWalletProcessor()

	if _, err := p.Charge(500, domain.PaymentInfo{}); !domain.IsPaymentError(err) {
		t.Fatalf("expected PaymentError without wallet_id, got %v", err)
	}
	if _, err := p.Charge(500, domain.PaymentInfo{InfoWalletID: "w-1"}); err != nil {
		t.Fatalf("charge: %v", err)
	}
}
