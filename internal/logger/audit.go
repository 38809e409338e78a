package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditAction một hành động audit trên tài nguyên
type AuditAction struct {
	Action       string                 `json:"action"`        // Tên hành động (vd: "deal_insert", "deal_update")
	ResourceID   int64                  `json:"resource_id"`   // ID tài nguyên bị ảnh hưởng
	ResourceType string                 `json:"resource_type"` // Loại tài nguyên (collection)
	Details      map[string]interface{} `json:"details"`       // Chi tiết bổ sung
	Timestamp    time.Time              `json:"timestamp"`
}

// LogAction ghi một hành động audit
func LogAction(a AuditAction) {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	fields := logrus.Fields{
		"action":        a.Action,
		"resource_id":   a.ResourceID,
		"resource_type": a.ResourceType,
		"timestamp":     a.Timestamp,
	}
	for k, v := range a.Details {
		fields[k] = v
	}
	GetAuditLogger().WithFields(fields).Info("Audit log")
}

// LogCRUD ghi audit cho các thao tác CRUD
func LogCRUD(operation string, resourceType string, resourceID int64, details map[string]interface{}) {
	LogAction(AuditAction{
		Action:       resourceType + "_" + operation,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Details:      details,
	})
}
