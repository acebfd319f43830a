package ledger

import (
	"fmt"
	"math/rand/v2"

	"gorm.io/gorm"

	"github.com/omidrahimi/hawala_system/internal/models"
)

const codePrefix = "HWL"

// freshCode draws HWL###### codes until one is unused. The unique index on
// transactions.code is the backstop for the window between check and insert.
func freshCode(tx *gorm.DB) (string, error) {
	for range 5 {
		code := fmt.Sprintf("%s%06d", codePrefix, rand.IntN(900000)+100000)
		var n int64
		if err := tx.Model(&models.Transaction{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return "", persistErr(err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a transaction code", ErrPersistence)
}
