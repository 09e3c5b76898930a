package reminders

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const (
	DefaultClinicName  = "Andy Pet Clinic"
	DefaultCountryCode = "2"
)

const messageDateLayout = "Jan 2, 2006"

// Message arma el texto del recordatorio para el dueño.
func Message(ownerName, petName, vaccinationType string, due time.Time, clinicName string) string {
	if strings.TrimSpace(clinicName) == "" {
		clinicName = DefaultClinicName
	}
	return fmt.Sprintf(
		"Hello %s, this is a reminder that %s's %s vaccination is due on %s. Please contact our clinic to schedule an appointment.\n\nRegards,\n%s",
		ownerName, petName, vaccinationType, due.Format(messageDateLayout), clinicName,
	)
}

// WhatsAppLink devuelve el deep link wa.me con el mensaje precargado.
// Del teléfono quedan sólo dígitos; si no empieza con el código de país se
// le antepone. Devuelve "" si no queda ningún dígito.
func WhatsAppLink(phone, message, countryCode string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}

	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}

	// QueryEscape codifica espacios como "+"; wa.me espera %20.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}
