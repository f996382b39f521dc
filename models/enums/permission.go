package enums

// Permission 权限点，封闭枚举
// - 每个变更操作都有 "任意" 与 "仅本人" 一对权限
// - 角色到权限集合的映射是固定目录，见 service 层，不支持运行期配置
type Permission int

const (
	PermSavePublication    Permission = iota // 可替任意作者创建内容
	PermSaveOwnPublication                   // 仅能以本人名义创建内容
	PermUpdatePost                           // 可修改任意稿件
	PermUpdateOwnPost                        // 仅能修改本人稿件
	PermDeletePost                           // 可归档任意稿件
	PermDeleteOwnPost                        // 仅能归档本人稿件
	PermSetImportance                        // 可维护重要稿件排序
)

// PermissionSet 角色持有的权限集合。
type PermissionSet map[Permission]struct{}

// NewPermissionSet 由权限点列表构造集合。
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has 判断集合是否包含指定权限点。
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}
