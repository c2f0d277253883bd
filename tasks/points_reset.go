package tasks

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
)

// PointsResetter 周期积分清零，由 service.RankingService 实现
type PointsResetter interface {
	ResetWeeklyPoints(ctx context.Context) (int64, error)
	ResetMonthlyPoints(ctx context.Context) (int64, error)
}

// PointsResetTask 按计划把周积分和月积分清零，总积分不受影响。
type PointsResetTask struct {
	resetter PointsResetter
	cron     *cron.Cron
	logger   *core.ZapLogger
}

// NewPointsResetTask 注册周、月两个作业并启动调度器。cron 表达式无效时返回错误。
func NewPointsResetTask(resetter PointsResetter, cfg config.TaskConfig, loc *time.Location, logger *core.ZapLogger) (*PointsResetTask, error) {
	if loc == nil {
		loc = time.UTC
	}
	task := &PointsResetTask{
		resetter: resetter,
		cron:     cron.New(cron.WithLocation(loc)),
		logger:   logger,
	}

	weekly := orDefault(cfg.WeeklyResetSchedule, constant.WeeklyResetCronSpec)
	monthly := orDefault(cfg.MonthlyResetSchedule, constant.MonthlyResetCronSpec)
	if _, err := task.cron.AddFunc(weekly, func() { task.run("周积分清零", resetter.ResetWeeklyPoints) }); err != nil {
		logger.Error("添加周积分清零 cron 作业失败", zap.Error(err), zap.String("schedule", weekly))
		return nil, err
	}
	if _, err := task.cron.AddFunc(monthly, func() { task.run("月积分清零", resetter.ResetMonthlyPoints) }); err != nil {
		logger.Error("添加月积分清零 cron 作业失败", zap.Error(err), zap.String("schedule", monthly))
		return nil, err
	}

	task.cron.Start()
	logger.Info("积分清零定时任务已启动",
		zap.String("weekly", weekly),
		zap.String("monthly", monthly),
		zap.String("location", loc.String()))
	return task, nil
}

func (t *PointsResetTask) run(name string, fn func(ctx context.Context) (int64, error)) {
	t.logger.Info(name + "任务开始执行...")
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := fn(ctx)
	if err != nil {
		t.logger.Error(name+"任务失败", zap.Error(err))
		return
	}
	t.logger.Info(name+"任务执行完毕", zap.Int64("users", n), zap.Duration("duration", time.Since(startTime)))
}

// Stop 停止调度，返回的 context 在正在执行的作业结束后关闭
func (t *PointsResetTask) Stop() context.Context {
	t.logger.Info("正在停止积分清零定时任务...")
	return t.cron.Stop()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
