package factus

import (
	"fmt"
	"strings"
	"unicode"
)

// pesos para el cálculo del dígito de verificación NIT (Orden Administrativa 4 de 1989, DIAN).
var nitWeights = [9]int{41, 37, 29, 23, 19, 17, 13, 7, 3}

// legalEntityMinDigits a partir de este largo el documento se trata como NIT de persona jurídica.
const legalEntityMinDigits = 9

// Digits extrae solo los dígitos de s ("900.123.456-7" → "9001234567").
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsLegalEntity indica si la identificación (solo dígitos) corresponde a un NIT empresarial.
func IsLegalEntity(identification string) bool {
	return len(Digits(identification)) >= legalEntityMinDigits
}

// NITVerificationDigit calcula el DV para los 9 primeros dígitos del NIT (módulo 11).
func NITVerificationDigit(nit string) (string, error) {
	digits := Digits(nit)
	if len(digits) < 9 {
		return "", fmt.Errorf("factus: se requieren al menos 9 dígitos para el DV, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:9] {
		sum += int(d-'0') * nitWeights[i]
	}
	r := sum % 11
	if r == 0 || r == 1 {
		return fmt.Sprint(r), nil
	}
	return fmt.Sprint(11 - r), nil
}

// SplitName separa nombres y apellidos en el primer espacio.
// Sin nombre devuelve "Consumidor Final".
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return ConsumidorFinal, ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
