package dto

import "time"

// AuditLogEvent 审计日志事件
// - 每次成功的变更操作（创建 / 更新 / 归档 / 运营设置）恰好发出一条
// - 日志的存储归审计服务所有，本服务只负责发出事件
type AuditLogEvent struct {
	EventID string `json:"event_id"` // 事件唯一ID，uuid

	// Title 被变更稿件的标题；归档场景下为归档前的标题快照
	Title string `json:"title"`

	// ChangeDescription 人类可读的变更描述，由状态机根据目标状态导出
	ChangeDescription string `json:"change_description"`

	PostID uint64 `json:"post_id"` // 被变更的稿件ID

	// ActorName 执行变更的操作者署名（姓+名）
	ActorName string `json:"actor_name"`

	Timestamp time.Time `json:"timestamp"`
}
