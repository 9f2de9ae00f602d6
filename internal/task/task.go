package task

import (
	"context"
	"time"
)

// TimerFunc 到期回调
type TimerFunc func(ctx context.Context, room string) error

// Task 时间轮上的定时任务，一般是某个房间的抢牌窗口计时
type Task struct {
	ID       string        // 任务唯一ID
	Room     string        // 所属房间
	Delay    time.Duration // 延迟
	Deadline time.Time     // 预期到期时间
	Fn       TimerFunc

	rounds int // 还需转过的整圈数
	slot   int // 所在槽位
}

// NewTask 创建定时任务
func NewTask(id, room string, delay time.Duration, fn TimerFunc) *Task {
	return &Task{
		ID:       id,
		Room:     room,
		Delay:    delay,
		Deadline: time.Now().Add(delay),
		Fn:       fn,
	}
}

// Lateness 实际执行相对预期到期时间的延迟
func (t *Task) Lateness(now time.Time) time.Duration {
	if now.Before(t.Deadline) {
		return 0
	}
	return now.Sub(t.Deadline)
}

// Execute 执行任务
func (t *Task) Execute(ctx context.Context) error {
	if t.Fn == nil {
		return nil
	}
	return t.Fn(ctx, t.Room)
}
