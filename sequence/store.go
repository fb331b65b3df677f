package sequence

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gstbilling-backend/models"
)

// GormCounterStore keeps one sequence_counters row per owner inside the
// tenant schema. Pass the per-request tenant transaction so the counter
// update commits or rolls back together with the document write.
type GormCounterStore struct {
	DB *gorm.DB
}

func (s *GormCounterStore) LastIssued(ownerID string) (int64, error) {
	var counter models.SequenceCounter
	err := s.DB.Where("owner_id = ?", ownerID).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.LastIssuedNumber, nil
}

func (s *GormCounterStore) CompareAndSet(ownerID string, expected, next int64) error {
	res := s.DB.Model(&models.SequenceCounter{}).
		Where("owner_id = ? AND last_issued_number = ?", ownerID, expected).
		Update("last_issued_number", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	if expected == 0 {
		// First number for this owner: no counter row to update yet. The
		// unique index on owner_id turns a create race into an error here,
		// which is exactly a lost compare-and-swap.
		err := s.DB.Create(&models.SequenceCounter{OwnerID: ownerID, LastIssuedNumber: next}).Error
		if err != nil {
			return fmt.Errorf("%w (create counter: %v)", ErrConflict, err)
		}
		return nil
	}
	return ErrConflict
}

// GormDocumentIndex checks candidate numbers against the documents table.
type GormDocumentIndex struct {
	DB *gorm.DB
}

func (s *GormDocumentIndex) NumberExists(ownerID string, number int64) (bool, error) {
	var n int64
	err := s.DB.Model(&models.Document{}).
		Where("owner_id = ? AND sequence_number = ?", ownerID, number).
		Count(&n).Error
	return n > 0, err
}
