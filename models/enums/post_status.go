package enums

// PostStatus 稿件生命周期状态
// - 状态机本身不禁止任何迁移，权限校验在服务层完成
// - 数值顺序有业务含义（审核流程从前到后），不要随意调整
type PostStatus int

const (
	StatusDraft                PostStatus = 0 // 草稿，save 创建的初始状态
	StatusModerationFirstSign  PostStatus = 1 // 一审中
	StatusModerationSecondSign PostStatus = 2 // 二审中
	StatusNeedsEditing         PostStatus = 3 // 退回作者修改
	StatusPlanned              PostStatus = 4 // 已排期，等待发布
	StatusPublished            PostStatus = 5 // 已发布，对外可见
	StatusArchived             PostStatus = 6 // 已归档（软删除的终态）
)

// String 返回状态的可读名称，主要用于日志与审计描述。
func (s PostStatus) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusModerationFirstSign:
		return "MODERATION_FIRST_SIGN"
	case StatusModerationSecondSign:
		return "MODERATION_SECOND_SIGN"
	case StatusNeedsEditing:
		return "NEEDS_EDITING"
	case StatusPlanned:
		return "PLANNED"
	case StatusPublished:
		return "PUBLISHED"
	case StatusArchived:
		return "ARCHIVED"
	default:
		return "UNKNOWN"
	}
}

// IsValid 校验数值是否落在已定义的状态集合内。
func (s PostStatus) IsValid() bool {
	return s >= StatusDraft && s <= StatusArchived
}
