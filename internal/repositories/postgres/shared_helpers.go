package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/repositories"
)

// translateError maps gorm sentinels to the repository-level signals.
// Requires gorm.Config.TranslateError so driver unique-violations surface
// as gorm.ErrDuplicatedKey.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicate
	default:
		return err
	}
}

// allowedSortColumns guards ORDER BY input per table.
var allowedSortColumns = map[string]map[string]bool{
	"users":       {"created_at": true, "email": true, "last_name": true},
	"courses":     {"created_at": true, "code": true, "start_date": true},
	"enrollments": {"enrolled_at": true, "last_updated": true, "status": true},
}

func applySort(query *gorm.DB, table, sortBy, sortOrder string) *gorm.DB {
	columns := allowedSortColumns[table]
	if sortBy == "" || !columns[sortBy] {
		sortBy = "created_at"
		if table == "enrollments" {
			sortBy = "enrolled_at"
		}
	}
	order := "desc"
	if strings.EqualFold(sortOrder, "asc") {
		order = "asc"
	}
	return query.Order(fmt.Sprintf("%s %s", sortBy, order))
}

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
