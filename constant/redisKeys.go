package constant

// Redis Key 相关常量 (导出)
const (
	// FeaturedPostsKey 是精选区稿件列表的缓存 Key。
	// 重排提交后与定时任务都会整体重建，值为按 importance_order 升序排列的稿件 JSON 数组。
	// Redis 类型: String
	// 示例值: "[{\"id\":12,\"title\":\"...\",\"importance_order\":1}, ...]"
	FeaturedPostsKey = "featured_posts"
)

// 定时任务 cron 表达式（robfig/cron 标准 5 段格式）
const (
	// ViewReconcileCronSpec 浏览量对账任务的执行计划：每小时第 10 分钟执行。
	// 统计服务按小时聚合，更高频率没有意义。
	ViewReconcileCronSpec = "10 * * * *"

	// FeaturedCacheCronSpec 精选区缓存兜底重建计划：每 30 分钟执行。
	// 正常路径是重排提交后立即重建，定时重建只为对齐人工改库等旁路变更。
	FeaturedCacheCronSpec = "*/30 * * * *"
)
