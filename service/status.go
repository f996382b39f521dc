package service

import (
	"time"

	"github.com/Xushengqwer/publication_service/models/entities"
	"github.com/Xushengqwer/publication_service/models/enums"
)

// 审计日志里的变更描述文案。
// 目标状态决定文案；同状态更新走通用文案；未映射的状态记 "N/A"。
const (
	changeCreated        = "已创建稿件"
	changeUpdated        = "已更新稿件"
	changeArchived       = "已归档稿件"
	changeSentToReview   = "已送审"
	changeReturnedToEdit = "已退回修改"
	changeScheduled      = "已排期发布"
	changePublished      = "已发布"
	changeUnmapped       = "N/A"
)

// transitionDescriptions 目标状态到变更描述的固定映射。
var transitionDescriptions = map[enums.PostStatus]string{
	enums.StatusArchived:            changeArchived,
	enums.StatusModerationFirstSign: changeSentToReview,
	enums.StatusNeedsEditing:        changeReturnedToEdit,
	enums.StatusPlanned:             changeScheduled,
	enums.StatusPublished:           changePublished,
}

// ApplyStatusTransition 对稿件实体应用状态迁移。
// - 状态机不禁止任何迁移，限制完全由权限校验承担。
// - 返回值是审计日志用的变更描述。
// - 首次进入已发布状态时写入发布时间；发布时间可能已被显式设置过，此时不覆盖。
//   离开发布状态不清空发布时间。
func ApplyStatusTransition(post *entities.Post, newStatus enums.PostStatus) string {
	if newStatus == post.Status {
		return changeUpdated
	}

	if newStatus == enums.StatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	post.Status = newStatus

	if desc, ok := transitionDescriptions[newStatus]; ok {
		return desc
	}
	return changeUnmapped
}
