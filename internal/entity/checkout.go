package domain

type ShippingMethod string

const (
	ShippingRegular ShippingMethod = "regular"
	ShippingExpress ShippingMethod = "express"
)

func (m ShippingMethod) Valid() bool {
	return m == ShippingRegular || m == ShippingExpress
}

// Label is the text stored on orders.
func (m ShippingMethod) Label() string {
	if m == ShippingExpress {
		return "Express (1-2 hari)"
	}
	return "Regular (3-5 hari)"
}

// ETA is the delivery estimate shown in the checkout summary.
func (m ShippingMethod) ETA() string {
	if m == ShippingExpress {
		return "1-2 hari kerja"
	}
	return "3-5 hari kerja"
}

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentEWallet      PaymentMethod = "e_wallet"
	PaymentCreditCard   PaymentMethod = "credit_card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentBankTransfer, PaymentEWallet, PaymentCreditCard:
		return true
	}
	return false
}

// OrderLabel is the text stored on orders.
func (m PaymentMethod) OrderLabel() string {
	switch m {
	case PaymentBankTransfer:
		return "Transfer Bank"
	case PaymentEWallet:
		return "E-Wallet"
	default:
		return "Kartu Kredit"
	}
}

// DisplayLabel is the text shown while the customer is still choosing.
func (m PaymentMethod) DisplayLabel() string {
	switch m {
	case PaymentBankTransfer:
		return "Transfer Bank"
	case PaymentEWallet:
		return "E-Wallet"
	case PaymentCreditCard:
		return "Kartu Kredit/Debit"
	default:
		return ""
	}
}
