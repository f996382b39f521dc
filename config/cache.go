package config

// ViewSyncConfig 包含浏览量对账任务相关的配置
type ViewSyncConfig struct {
	// BatchSize 是将统计服务返回的浏览量回写 MySQL 时，每个数据库操作批次处理的稿件数量。
	// 例如统计服务返回 200,000 条浏览量且 BatchSize 设置为 500，
	// 则回写会被分割为 400 个小批次，每个小批次通过一次 UPDATE（CASE WHEN 语句）完成。
	// 这个参数主要影响单次数据库 UPDATE 语句的复杂度和处理的数据行数。
	BatchSize int `mapstructure:"batchSize" json:"batchSize" yaml:"batchSize"`

	// ConcurrencyLevel 是回写任务并发处理数据批次的 worker (goroutine) 数量。
	// 接上例，400 个批次配 ConcurrencyLevel=4 时，4 个 worker 并行地从任务队列
	// 取不同批次执行各自的 UPDATE。
	// 这个参数主要影响同时向数据库发起更新请求的并发连接数。
	ConcurrencyLevel int `mapstructure:"concurrencyLevel" json:"concurrencyLevel" yaml:"concurrencyLevel"`
}

// RedisConfig Redis 连接配置，精选区缓存使用
type RedisConfig struct {
	Address  string `mapstructure:"address" json:"address" yaml:"address"`
	Password string `mapstructure:"password" json:"password" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db"`

	// FeaturedCacheTTLSeconds 精选列表缓存的过期秒数，0 表示不过期（依赖任务刷新）
	FeaturedCacheTTLSeconds int `mapstructure:"featuredCacheTtlSeconds" json:"featuredCacheTtlSeconds" yaml:"featuredCacheTtlSeconds"`
}

// AnalyticsConfig 外部浏览量统计服务的访问配置
// - 只读集成，本服务把返回结果视为权威快照
type AnalyticsConfig struct {
	// BaseURL 统计服务根地址，例如 https://analytics.internal:8443
	BaseURL string `mapstructure:"baseUrl" json:"baseUrl" yaml:"baseUrl"`

	// TimeoutSeconds 单次请求超时秒数
	TimeoutSeconds int `mapstructure:"timeoutSeconds" json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// COSConfig 腾讯云对象存储配置，预览图与精选配图上传使用
type COSConfig struct {
	SecretID   string `mapstructure:"secretId" json:"secretId" yaml:"secretId"`
	SecretKey  string `mapstructure:"secretKey" json:"secretKey" yaml:"secretKey"`
	BucketName string `mapstructure:"bucketName" json:"bucketName" yaml:"bucketName"`
	AppID      string `mapstructure:"appId" json:"appId" yaml:"appId"`
	Region     string `mapstructure:"region" json:"region" yaml:"region"`

	// BaseURL 对象公开访问的基础地址（CDN 或自定义域名），为空时使用桶默认域名
	BaseURL string `mapstructure:"baseUrl" json:"baseUrl" yaml:"baseUrl"`
}
