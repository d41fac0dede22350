package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anthill-gaming/social/internal/models"
	"github.com/anthill-gaming/social/pkg/logger"
	"gorm.io/gorm"
)

const (
	AuditGroupCreate       = "group.create"
	AuditGroupUpdate       = "group.update"
	AuditGroupDelete       = "group.delete"
	AuditGroupMemberAdd    = "group.member_add"
	AuditGroupMemberUpdate = "group.member_update"
	AuditGroupMemberRemove = "group.member_remove"
	AuditFriendMake        = "friend.make"
	AuditFriendRemove      = "friend.remove"

	defaultAuditQueueSize = 1000
	auditExportBatch      = 10000
)

// ObjectUploader is the part of the object storage client the exporter needs.
type ObjectUploader interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

type AuditEntry struct {
	UserID       *int64
	Action       string
	ResourceType string
	ResourceID   *uint
	Details      map[string]interface{}
	IPAddress    string
	RequestID    string
}

type AuditService struct {
	DB          *gorm.DB
	Storage     ObjectUploader
	queue       chan models.AuditLog
	now         func() time.Time
	exportBatch int
}

func NewAuditService(db *gorm.DB, storage ObjectUploader, queueSize int) *AuditService {
	if queueSize <= 0 {
		queueSize = defaultAuditQueueSize
	}
	s := &AuditService{
		DB:          db,
		Storage:     storage,
		queue:       make(chan models.AuditLog, queueSize),
		now:         func() time.Time { return time.Now().UTC() },
		exportBatch: auditExportBatch,
	}
	go s.processQueue()
	return s
}

// LogAsync never blocks; entries are dropped with a warning when the queue is full.
func (s *AuditService) LogAsync(entry AuditEntry) {
	row := models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		CreatedAt:    s.now(),
	}

	select {
	case s.queue <- row:
	default:
		logger.Warn("audit_queue_full", map[string]interface{}{
			"action":  entry.Action,
			"dropped": true,
		})
	}
}

func (s *AuditService) processQueue() {
	for row := range s.queue {
		if err := s.DB.Create(&row).Error; err != nil {
			logger.Error("audit_log_insert_failed", err, map[string]interface{}{
				"action": row.Action,
			})
		}
	}
}

func (s *AuditService) StartExporter(ctx context.Context, interval time.Duration) {
	if s.Storage == nil {
		logger.Info("audit_exporter_disabled", map[string]interface{}{
			"reason": "no storage client configured",
		})
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.export(ctx); err != nil {
					logger.Error("audit_export_failed", err, nil)
				}
			}
		}
	}()

	logger.Info("audit_exporter_started", map[string]interface{}{
		"interval": interval.String(),
	})
}

// export ships up to one batch of rows past the cursor as one NDJSON object and
// returns how many it wrote. Rows are ordered by (created_at, id) so a batch
// that ends inside a run of equal timestamps resumes where it stopped.
func (s *AuditService) export(ctx context.Context) (int, error) {
	db := s.DB.WithContext(ctx)

	var cursor models.AuditExportCursor
	if err := db.First(&cursor).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("loading export cursor: %w", err)
		}
		cursor = models.AuditExportCursor{
			LastExportAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := db.Create(&cursor).Error; err != nil {
			return 0, fmt.Errorf("creating export cursor: %w", err)
		}
	}

	batch := s.exportBatch
	if batch <= 0 {
		batch = auditExportBatch
	}

	var logs []models.AuditLog
	if err := db.
		Where("created_at > ? OR (created_at = ? AND id > ?)", cursor.LastExportAt, cursor.LastExportAt, cursor.LastExportID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(batch).
		Find(&logs).Error; err != nil {
		return 0, fmt.Errorf("querying audit logs: %w", err)
	}

	if len(logs) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range logs {
		if err := enc.Encode(row); err != nil {
			logger.Error("audit_export_encode_failed", err, map[string]interface{}{
				"log_id": row.ID.String(),
			})
		}
	}

	objectName := auditObjectName(s.now())
	if err := s.Storage.Upload(ctx, objectName, &buf, int64(buf.Len()), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("uploading %s: %w", objectName, err)
	}

	last := logs[len(logs)-1]
	if err := db.Model(&cursor).Updates(map[string]interface{}{
		"last_export_at": last.CreatedAt,
		"last_export_id": last.ID.String(),
		"exported_count": gorm.Expr("exported_count + ?", len(logs)),
	}).Error; err != nil {
		return 0, fmt.Errorf("advancing export cursor: %w", err)
	}

	logger.Info("audit_export_success", map[string]interface{}{
		"object_name": objectName,
		"count":       len(logs),
	})
	return len(logs), nil
}

// UserLogs returns the newest audit rows recorded for userID.
func (s *AuditService) UserLogs(ctx context.Context, userID int64, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > auditExportBatch {
		limit = auditExportBatch
	}

	logs := []models.AuditLog{}
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func auditObjectName(at time.Time) string {
	return fmt.Sprintf("audit-logs/%s/%s.ndjson", at.Format("2006/01/02"), at.Format("15-04-05"))
}
