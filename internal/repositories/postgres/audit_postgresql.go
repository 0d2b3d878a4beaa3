package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type AuditLogPostgreSQL struct {
	db *gorm.DB
}

func NewAuditLogPostgreSQL(db *gorm.DB) repositories.AuditLogRepository {
	return &AuditLogPostgreSQL{db: db}
}

func (a *AuditLogPostgreSQL) Append(ctx context.Context, log *models.AuditLog) error {
	return translateError(a.db.WithContext(ctx).Create(log).Error)
}

func (a *AuditLogPostgreSQL) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, int64, error) {
	var logs []*models.AuditLog
	var total int64

	query := a.db.WithContext(ctx).Model(&models.AuditLog{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query = applyPagination(query.Order("timestamp desc"), limit, offset)
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, translateError(err)
	}

	return logs, total, nil
}
