package config

// TaskConfig 定时任务配置
type TaskConfig struct {
	// WeeklyResetSchedule 周积分清零的 cron 表达式，默认每周一 0 点
	WeeklyResetSchedule string `mapstructure:"weeklyResetSchedule" json:"weeklyResetSchedule" yaml:"weeklyResetSchedule"`
	// MonthlyResetSchedule 月积分清零的 cron 表达式，默认每月 1 号 0 点
	MonthlyResetSchedule string `mapstructure:"monthlyResetSchedule" json:"monthlyResetSchedule" yaml:"monthlyResetSchedule"`
	// ReconcileSchedule 积分对账任务的 cron 表达式，默认每天 3 点
	ReconcileSchedule string `mapstructure:"reconcileSchedule" json:"reconcileSchedule" yaml:"reconcileSchedule"`

	// ReconcileBatchSize 对账时每批处理的用户数量。
	// 例如有 20,000 个用户需要校验，BatchSize 为 500，则分成 40 批，每批一次查询完成汇总。
	ReconcileBatchSize int `mapstructure:"reconcileBatchSize" json:"reconcileBatchSize" yaml:"reconcileBatchSize"`

	// ConcurrencyLevel 对账时并发处理批次的 worker 数量
	ConcurrencyLevel int `mapstructure:"concurrencyLevel" json:"concurrencyLevel" yaml:"concurrencyLevel"`
}
