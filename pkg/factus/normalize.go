package factus

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// paymentMethods texto libre del POS (ya normalizado) → medio de pago DIAN.
var paymentMethods = map[string]int{
	"efectivo":        PaymentMethodEfectivo,
	"cash":            PaymentMethodEfectivo,
	"tarjeta":         PaymentMethodTarjetaCredito,
	"card":            PaymentMethodTarjetaCredito,
	"tarjeta credito": PaymentMethodTarjetaCredito,
	"credit card":     PaymentMethodTarjetaCredito,
	"tarjeta debito":  PaymentMethodTarjetaDebito,
	"debit card":      PaymentMethodTarjetaDebito,
	"transferencia":   PaymentMethodTransferencia,
	"transfer":        PaymentMethodTransferencia,
	"nequi":           PaymentMethodTransferencia,
	"daviplata":       PaymentMethodTransferencia,
}

// PaymentMethodCode normaliza el medio de pago (minúsculas, sin tildes, espacios colapsados).
// Lo desconocido cae en efectivo.
func PaymentMethodCode(method string) int {
	if code, ok := paymentMethods[Fold(method)]; ok {
		return code
	}
	return PaymentMethodEfectivo
}

// Fold pasa a minúsculas, elimina diacríticos y colapsa espacios: "  Tarjeta  Débito" → "tarjeta debito".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

var (
	unsafeChars = regexp.MustCompile(`[<>"'{}\[\]\\]`)
	spaces      = regexp.MustCompile(`\s+`)
)

// SanitizeText quita caracteres que la API rechaza y colapsa espacios.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = unsafeChars.ReplaceAllString(s, "")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
