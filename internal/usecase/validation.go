package usecase

import (
	"regexp"
	"strings"

	domain "github.com/aq2208/gstore-api/internal/entity"
)

var (
	emailRe      = regexp.MustCompile(`\S+@\S+\.\S+`)
	phoneRe      = regexp.MustCompile(`^[0-9+\-\s()]{10,15}$`)
	postalCodeRe = regexp.MustCompile(`^[0-9]{5}$`)
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ValidateStep returns the failing fields of step in form order; nil means
// the step passes.
func ValidateStep(step Step, f Form) []FieldError {
	var out []FieldError
	fail := func(field, msg string) { out = append(out, FieldError{Field: field, Message: msg}) }

	switch step {
	case StepContact:
		if blank(f.FullName) {
			fail("fullName", "Nama lengkap wajib diisi")
		}
		switch {
		case blank(f.Email):
			fail("email", "Email wajib diisi")
		case !emailRe.MatchString(f.Email):
			fail("email", "Email tidak valid")
		}
		switch {
		case blank(f.Phone):
			fail("phone", "Nomor telepon wajib diisi")
		case !phoneRe.MatchString(f.Phone):
			fail("phone", "Nomor telepon tidak valid")
		}

	case StepAddress:
		if blank(f.Address) {
			fail("address", "Alamat lengkap wajib diisi")
		}
		if blank(f.City) {
			fail("city", "Kota wajib diisi")
		}
		if blank(f.Province) {
			fail("province", "Provinsi wajib diisi")
		}
		switch {
		case blank(f.PostalCode):
			fail("postalCode", "Kode pos wajib diisi")
		case !postalCodeRe.MatchString(f.PostalCode):
			fail("postalCode", "Kode pos tidak valid (5 digit)")
		}

	case StepPayment:
		if !f.PaymentMethod.Valid() {
			fail("paymentMethod", "Pilih metode pembayaran")
		}
		if f.PaymentMethod == domain.PaymentCreditCard {
			if blank(f.CardNumber) {
				fail("cardNumber", "Nomor kartu wajib diisi")
			}
			if blank(f.CardName) {
				fail("cardName", "Nama di kartu wajib diisi")
			}
			if blank(f.CardExpiry) {
				fail("cardExpiry", "Tanggal kadaluarsa wajib diisi")
			}
			if blank(f.CardCVC) {
				fail("cardCVC", "CVC wajib diisi")
			}
		}
		if !f.TermsAccepted {
			fail("termsAccepted", "Anda harus menyetujui syarat dan ketentuan")
		}
	}
	return out
}
