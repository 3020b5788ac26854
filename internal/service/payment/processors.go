package payment

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Ключи реквизитов в PaymentInfo.
const (
	InfoCardNumber  = "card_number"
	InfoCardExpiry  = "expiry"
	InfoCardCVV     = "cvv"
	InfoAccountID   = "account_number"
	InfoBankCode    = "bank_code"
	InfoWalletID    = "wallet_id"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	bankCodePattern   = regexp.MustCompile(`^[A-Z0-9]{4,11}$`)
)

// creditCardProcessor проверяет номер карты (16 цифр) перед списанием.
type creditCardProcessor struct{}

// NewCreditCardProcessor возвращает процессор кредитных карт.
func NewCreditCardProcessor() domain.PaymentProcessor {
	return &creditCardProcessor{}
}

func (p *creditCardProcessor) Charge(amountMinor int64, info domain.PaymentInfo) (domain.Receipt, error) {
	if err := validateCard(domain.PaymentMethodCreditCard, info); err != nil {
		return domain.Receipt{}, err
	}
	return newReceipt("credit_card", amountMinor), nil
}

func (p *creditCardProcessor) Refund(amountMinor int64, info domain.PaymentInfo) error {
	return validateCard(domain.PaymentMethodCreditCard, info)
}

// debitCardProcessor требует, помимо номера карты, корректный CVV.
type debitCardProcessor struct{}

// NewDebitCardProcessor возвращает процессор дебетовых карт.
func NewDebitCardProcessor() domain.PaymentProcessor {
	return &debitCardProcessor{}
}

func (p *debitCardProcessor) Charge(amountMinor int64, info domain.PaymentInfo) (domain.Receipt, error) {
	if err := validateCard(domain.PaymentMethodDebitCard, info); err != nil {
		return domain.Receipt{}, err
	}
	if !cvvPattern.MatchString(info[InfoCardCVV]) {
		return domain.Receipt{}, &domain.PaymentError{
			Method: domain.PaymentMethodDebitCard,
			Reason: "invalid cvv",
		}
	}
	return newReceipt("debit_card", amountMinor), nil
}

func (p *debitCardProcessor) Refund(amountMinor int64, info domain.PaymentInfo) error {
	return validateCard(domain.PaymentMethodDebitCard, info)
}

// netBankingProcessor проверяет номер счёта и код банка.
type netBankingProcessor struct{}

// NewNetBankingProcessor возвращает процессор интернет-банкинга.
func NewNetBankingProcessor() domain.PaymentProcessor {
	return &netBankingProcessor{}
}

func (p *netBankingProcessor) Charge(amountMinor int64, info domain.PaymentInfo) (domain.Receipt, error) {
	if err := validateBankInfo(info); err != nil {
		return domain.Receipt{}, err
	}
	return newReceipt("net_banking", amountMinor), nil
}

func (p *netBankingProcessor) Refund(amountMinor int64, info domain.PaymentInfo) error {
	return validateBankInfo(info)
}

// walletProcessor требует идентификатор кошелька.
type walletProcessor struct{}

// NewWalletProcessor возвращает процессор электронных кошельков.
func NewWalletProcessor() domain.PaymentProcessor {
	return &walletProcessor{}
}

func (p *walletProcessor) Charge(amountMinor int64, info domain.PaymentInfo) (domain.Receipt, error) {
	if info[InfoWalletID] == "" {
		return domain.Receipt{}, &domain.PaymentError{
			Method: domain.PaymentMethodWallet,
			Reason: "wallet_id is required",
		}
	}
	return newReceipt("wallet", amountMinor), nil
}

func (p *walletProcessor) Refund(amountMinor int64, info domain.PaymentInfo) error {
	if info[InfoWalletID] == "" {
		return &domain.PaymentError{
			Method: domain.PaymentMethodWallet,
			Reason: "wallet_id is required",
		}
	}
	return nil
}

func validateCard(method domain.PaymentMethod, info domain.PaymentInfo) error {
	if !cardNumberPattern.MatchString(info[InfoCardNumber]) {
		return &domain.PaymentError{Method: method, Reason: "invalid card number"}
	}
	return nil
}

func validateBankInfo(info domain.PaymentInfo) error {
	if info[InfoAccountID] == "" {
		return &domain.PaymentError{
			Method: domain.PaymentMethodNetBanking,
			Reason: "account_number is required",
		}
	}
	if !bankCodePattern.MatchString(info[InfoBankCode]) {
		return &domain.PaymentError{
			Method: domain.PaymentMethodNetBanking,
			Reason: "invalid bank code",
		}
	}
	return nil
}

func newReceipt(provider string, amountMinor int64) domain.Receipt {
	return domain.Receipt{
		ID:          uuid.NewString(),
		Provider:    provider,
		AmountMinor: amountMinor,
	}
}

var (
	_ domain.PaymentProcessor = (*creditCardProcessor)(nil)
	_ domain.PaymentProcessor = (*debitCardProcessor)(nil)
	_ domain.PaymentProcessor = (*netBankingProcessor)(nil)
	_ domain.PaymentProcessor = (*walletProcessor)(nil)
)
