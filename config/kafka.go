package config

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" json:"brokers" yaml:"brokers"`
	Topics  Topics   `mapstructure:"topics" json:"topics" yaml:"topics"`
}

type Topics struct {
	AuditLog string `mapstructure:"auditLog" yaml:"auditLog"` // 审计日志事件主题，每次成功变更恰好一条
}
