package usecase

import (
	"strconv"

	domain "github.com/aq2208/gstore-api/internal/entity"
)

type Step int

const (
	StepContact Step = iota + 1
	StepAddress
	StepPayment
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepAddress:
		return "address"
	case StepPayment:
		return "payment"
	case StepSubmitted:
		return "submitted"
	default:
		return "step" + strconv.Itoa(int(s))
	}
}

// Form is the checkout draft. Field names follow the wire names used in
// validation errors.
type Form struct {
	FullName       string                `json:"fullName"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone"`
	Address        string                `json:"address"`
	City           string                `json:"city"`
	Province       string                `json:"province"`
	PostalCode     string                `json:"postalCode"`
	ShippingMethod domain.ShippingMethod `json:"shippingMethod"`
	PaymentMethod  domain.PaymentMethod  `json:"paymentMethod"`
	CardNumber     string                `json:"cardNumber"`
	CardName       string                `json:"cardName"`
	CardExpiry     string                `json:"cardExpiry"`
	CardCVC        string                `json:"cardCVC"`
	Notes          string                `json:"notes"`
	TermsAccepted  bool                  `json:"termsAccepted"`
	Newsletter     bool                  `json:"newsletter"`
}

func DefaultForm() Form {
	return Form{
		ShippingMethod: domain.ShippingRegular,
		PaymentMethod:  domain.PaymentBankTransfer,
	}
}

// FormPatch carries the fields a shopper changed; nil means untouched.
type FormPatch struct {
	FullName       *string                `json:"fullName"`
	Email          *string                `json:"email"`
	Phone          *string                `json:"phone"`
	Address        *string                `json:"address"`
	City           *string                `json:"city"`
	Province       *string                `json:"province"`
	PostalCode     *string                `json:"postalCode"`
	ShippingMethod *domain.ShippingMethod `json:"shippingMethod"`
	PaymentMethod  *domain.PaymentMethod  `json:"paymentMethod"`
	CardNumber     *string                `json:"cardNumber"`
	CardName       *string                `json:"cardName"`
	CardExpiry     *string                `json:"cardExpiry"`
	CardCVC        *string                `json:"cardCVC"`
	Notes          *string                `json:"notes"`
	TermsAccepted  *bool                  `json:"termsAccepted"`
	Newsletter     *bool                  `json:"newsletter"`
}

// Checkout is the three step wizard: contact, address, payment. It only
// moves forward through Next, which refuses to leave a step whose fields
// do not validate, and back through Back, which keeps everything entered.
type Checkout struct {
	step Step
	form Form
	errs map[string]string
}

func NewCheckout() *Checkout {
	return &Checkout{step: StepContact, form: DefaultForm(), errs: map[string]string{}}
}

func (c *Checkout) Step() Step { return c.step }
func (c *Checkout) Form() Form { return c.form }
func (c *Checkout) Done() bool { return c.step == StepSubmitted }
func (c *Checkout) ShippingMethod() domain.ShippingMethod {
	return c.form.ShippingMethod
}

// Errors returns the messages attached to failing fields by the last Next.
func (c *Checkout) Errors() map[string]string {
	out := make(map[string]string, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// Update applies p and clears the stored error of every field it touches.
func (c *Checkout) Update(p FormPatch) {
	setStr := func(name string, dst *string, v *string) {
		if v != nil {
			*dst = *v
			delete(c.errs, name)
		}
	}
	setBool := func(name string, dst *bool, v *bool) {
		if v != nil {
			*dst = *v
			delete(c.errs, name)
		}
	}
	f := &c.form
	setStr("fullName", &f.FullName, p.FullName)
	setStr("email", &f.Email, p.Email)
	setStr("phone", &f.Phone, p.Phone)
	setStr("address", &f.Address, p.Address)
	setStr("city", &f.City, p.City)
	setStr("province", &f.Province, p.Province)
	setStr("postalCode", &f.PostalCode, p.PostalCode)
	setStr("cardNumber", &f.CardNumber, p.CardNumber)
	setStr("cardName", &f.CardName, p.CardName)
	setStr("cardExpiry", &f.CardExpiry, p.CardExpiry)
	setStr("cardCVC", &f.CardCVC, p.CardCVC)
	setStr("notes", &f.Notes, p.Notes)
	setBool("termsAccepted", &f.TermsAccepted, p.TermsAccepted)
	setBool("newsletter", &f.Newsletter, p.Newsletter)
	if p.ShippingMethod != nil {
		f.ShippingMethod = *p.ShippingMethod
		delete(c.errs, "shippingMethod")
	}
	if p.PaymentMethod != nil {
		f.PaymentMethod = *p.PaymentMethod
		delete(c.errs, "paymentMethod")
	}
}

// Next validates the current step. On failure the field messages are kept
// on the checkout and returned as a *ValidationError. Steps 1 and 2 advance
// on success; on step 3 the checkout stays put and ready reports that it
// may be submitted.
func (c *Checkout) Next() (ready bool, err error) {
	if c.step == StepSubmitted {
		return false, ErrNotReady
	}
	if fields := ValidateStep(c.step, c.form); len(fields) > 0 {
		c.errs = map[string]string{}
		for _, f := range fields {
			c.errs[f.Field] = f.Message
		}
		validationFailures.WithLabelValues(c.step.String()).Inc()
		return false, &ValidationError{Step: c.step, Fields: fields}
	}
	c.errs = map[string]string{}
	if c.step == StepPayment {
		return true, nil
	}
	c.step++
	return false, nil
}

// Back moves to the previous step. It reports false on the first step and
// after submission.
func (c *Checkout) Back() bool {
	if c.step <= StepContact || c.step == StepSubmitted {
		return false
	}
	c.step--
	return true
}

// validateAll re-checks every step up to and including the current one.
func (c *Checkout) validateAll() error {
	for s := StepContact; s <= StepPayment; s++ {
		if fields := ValidateStep(s, c.form); len(fields) > 0 {
			return &ValidationError{Step: s, Fields: fields}
		}
	}
	return nil
}

func (c *Checkout) markSubmitted() { c.step = StepSubmitted }
