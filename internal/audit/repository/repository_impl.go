package repository

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/fiskora/fiskora/internal/audit/domain"
	"github.com/fiskora/fiskora/pkg/db/pagination"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auditdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *auditdomain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.AuditLog, error) {
	stmt := r.db.WithContext(ctx).
		Model(&auditdomain.AuditLog{}).
		Where("company_id = ?", req.CompanyID)

	if req.Action != "" {
		stmt = stmt.Where("action = ?", req.Action)
	}
	if req.TargetType != "" {
		stmt = stmt.Where("target_type = ?", req.TargetType)
	}
	if req.TargetID != "" {
		stmt = stmt.Where("target_id = ?", req.TargetID)
	}
	if req.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", req.StartAt)
	}
	if req.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", req.EndAt)
	}

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, auditdomain.ErrInvalidPageToken
		}
		if cursor.CreatedAt != "" {
			before, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			if err != nil {
				return nil, auditdomain.ErrInvalidPageToken
			}
			stmt = stmt.Where("created_at < ?", before)
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	var logs []auditdomain.AuditLog
	if err := stmt.Order("created_at DESC").Limit(pageSize + 1).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
