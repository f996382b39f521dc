package myErrors

import "errors"

// ErrCacheMiss 表示在缓存层未找到对应的键值
var ErrCacheMiss = errors.New("cache: key not found (miss)")

// ErrForbidden 表示当前主体缺少操作所需的权限（且不满足 "仅本人" 的归属条件）
// - 出现该错误时不会产生任何副作用，调用方不应重试
var ErrForbidden = errors.New("auth: permission denied")
