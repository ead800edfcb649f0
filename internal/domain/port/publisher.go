package port

import "plastic-detect/internal/domain/entity"

// SnapshotPublisher рассылает изменения состояния сессии подписчикам
type SnapshotPublisher interface {
	Publish(snap entity.Snapshot)
}
