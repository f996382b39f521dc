package enums

// PostType 内容媒介类型
// - 类型: int，使用整数表示枚举值，便于扩展和查询
type PostType int

const (
	TypeArticle PostType = iota // 图文文章
	TypeVideo                   // 视频
	TypeAudio                   // 音频 / 播客
	TypeTranslation             // 外文翻译稿
)

func (t PostType) String() string {
	switch t {
	case TypeArticle:
		return "ARTICLE"
	case TypeVideo:
		return "VIDEO"
	case TypeAudio:
		return "AUDIO"
	case TypeTranslation:
		return "TRANSLATION"
	default:
		return "UNKNOWN"
	}
}

// PostOrigin 内容来源分类
type PostOrigin int

const (
	OriginInHouse  PostOrigin = iota // 平台自产内容
	OriginExpert                     // 签约专家供稿
	OriginReprint                    // 授权转载
	OriginPartner                    // 合作机构供稿
)

func (o PostOrigin) String() string {
	switch o {
	case OriginInHouse:
		return "IN_HOUSE"
	case OriginExpert:
		return "EXPERT"
	case OriginReprint:
		return "REPRINT"
	case OriginPartner:
		return "PARTNER"
	default:
		return "UNKNOWN"
	}
}
