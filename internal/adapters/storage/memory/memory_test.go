package memory_test

import (
	"testing"

	"pet-vaccination-tracker/internal/adapters/storage/memory"
	"pet-vaccination-tracker/internal/adapters/storage/storagetest"
	"pet-vaccination-tracker/internal/domain/clinic"
	"pet-vaccination-tracker/internal/domain/reminders"
)

func TestClinicRepo(t *testing.T) {
	storagetest.RunClinicRepo(t, func(*testing.T) clinic.Repository {
		return memory.NewClinicRepo()
	})
}

func TestAttemptRepo(t *testing.T) {
	storagetest.RunAttemptRepo(t, func(*testing.T) reminders.AttemptRepository {
		return memory.NewAttemptRepo()
	})
}
