package services

import (
	"chrona/internal/crypto"
	"chrona/internal/models"
)

// EncryptionService seals the free-text fields of notes and journal entries
// on the way into the store and opens them on the way out.
type EncryptionService struct {
	sealer *crypto.Sealer
}

func NewEncryptionService(sealer *crypto.Sealer) *EncryptionService {
	if sealer == nil {
		sealer, _ = crypto.NewSealer(nil)
	}
	return &EncryptionService{sealer: sealer}
}

// EncryptNote returns a copy of n with its content sealed.
func (s *EncryptionService) EncryptNote(n models.Note) (models.Note, error) {
	sealed, err := s.sealer.Seal(n.Content)
	if err != nil {
		return n, err
	}
	n.Content = sealed
	return n, nil
}

func (s *EncryptionService) DecryptNote(n *models.Note) error {
	plain, err := s.sealer.Open(n.Content)
	if err != nil {
		return err
	}
	n.Content = plain
	return nil
}

func (s *EncryptionService) DecryptNotes(notes []models.Note) error {
	for i := range notes {
		if err := s.DecryptNote(&notes[i]); err != nil {
			return err
		}
	}
	return nil
}

// EncryptJournal returns a copy of j with its entry sealed.
func (s *EncryptionService) EncryptJournal(j models.JournalEntry) (models.JournalEntry, error) {
	sealed, err := s.sealer.Seal(j.Entry)
	if err != nil {
		return j, err
	}
	j.Entry = sealed
	return j, nil
}

func (s *EncryptionService) DecryptJournal(j *models.JournalEntry) error {
	plain, err := s.sealer.Open(j.Entry)
	if err != nil {
		return err
	}
	j.Entry = plain
	return nil
}

func (s *EncryptionService) DecryptJournals(entries []models.JournalEntry) error {
	for i := range entries {
		if err := s.DecryptJournal(&entries[i]); err != nil {
			return err
		}
	}
	return nil
}
