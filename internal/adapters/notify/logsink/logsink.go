// Package logsink es el notifier por defecto: escribe el recordatorio en el
// log estructurado. Sirve para dev y para clínicas sin canal saliente.
package logsink

import (
	"context"

	"pet-vaccination-tracker/internal/domain/reminders"
	"pet-vaccination-tracker/internal/platform/logger"
)

const Channel = "log"

type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{log: log.With(map[string]any{"channel": Channel})}
}

var _ reminders.Notifier = (*Notifier)(nil)

func (n *Notifier) Send(ctx context.Context, r reminders.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info("vaccination reminder", map[string]any{
		"pet_id":         r.PetID,
		"pet_name":       r.PetName,
		"owner_id":       r.OwnerID,
		"owner_phone":    r.OwnerPhone,
		"vaccination_id": r.VaccinationID,
		"type":           string(r.Type),
		"due_date":       r.DueDate,
		"days_until":     r.DaysUntil,
		"message":        r.Message,
		"whatsapp_link":  r.WhatsAppLink,
	})
	return nil
}
