package entities

import (
	"time"

	"github.com/Xushengqwer/go-common/models/entities"

	"github.com/Xushengqwer/publication_service/models/enums"
)

// Post 发布内容实体
// - 使用场景: 医疗内容平台的稿件主表，承载从草稿到归档的完整生命周期
// - 表名: posts (GORM 默认使用结构体名复数形式)
type Post struct {
	entities.BaseModel // 嵌入自定义的 BaseModel ,包含 ID, CreatedAt, UpdatedAt, DeletedAt，支持软删除

	// 标题，必填，最大长度255个字符
	// - 类型: varchar(255)，限制长度以提高查询效率
	Title string `gorm:"type:varchar(255);not null"`

	// 正文内容
	// - 类型: text，稿件正文可能较长，不设上限
	Content string `gorm:"type:text"`

	// 预览图 URL，列表页展示用
	PreviewImageURL string `gorm:"type:varchar(255)"`

	// 重要位配图 URL，仅在首页精选位展示时使用
	// - 为空表示该稿件没有专门的精选配图，精选候选列表会把有图的排在前面
	ImportantImageURL string `gorm:"type:varchar(255)"`

	// 状态，枚举类型：0=草稿 1=一审 2=二审 3=退回修改 4=已排期 5=已发布 6=已归档
	// - GORM 标签: type:int 指定整数类型，default:0 设置默认值为草稿
	// - 归档即软删除：行保留，仅状态变更
	Status enums.PostStatus `gorm:"type:int;default:0;index"`

	// 媒介类型，参考 enums.PostType
	Type enums.PostType `gorm:"type:int;default:0;index"`

	// 内容来源分类，参考 enums.PostOrigin
	Origin enums.PostOrigin `gorm:"type:int;default:0"`

	// 方向（主题分类），多对多
	Directions []*Direction `gorm:"many2many:post_directions"`

	// 自由标签，多对多
	Tags []*Tag `gorm:"many2many:post_tags"`

	// 作者ID，关联 authors 表
	AuthorID uint64 `gorm:"not null;index"`

	// 作者展示名，冗余字段
	// - 设计意图: 全局筛选支持按作者名子串过滤，冗余到本表避免 JOIN
	// - 注意: 作者迁移（setAuthor）时必须同步更新
	AuthorName string `gorm:"type:varchar(100);not null;default:''"`

	// 重要位标记，true 表示该稿件在首页精选区展示
	Important bool `gorm:"default:false;index"`

	// 精选区排序，1 基且连续；仅在 Important 为 true 时有意义
	ImportanceOrder uint `gorm:"default:0"`

	// 发布时间，首次进入已发布状态时写入；离开发布状态不清空
	PublishedAt *time.Time `gorm:"index"`

	// 真实浏览量，由统计服务定期全量覆盖，本服务不做增量累加
	Views int64 `gorm:"default:0"`

	// 人工增补浏览量，展示时与真实浏览量相加，永不混入 Views 列
	FakeViews int64 `gorm:"default:0"`
}

// Direction 内容方向（主题分类），固定字典表
type Direction struct {
	ID   uint64 `gorm:"primarykey"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// Tag 自由标签
type Tag struct {
	ID   uint64 `gorm:"primarykey"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}
