package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSchedulerStopped 调度器未运行
	ErrSchedulerStopped = errors.New("task: scheduler not running")
	// ErrSchedulerRunning 调度器已在运行
	ErrSchedulerRunning = errors.New("task: scheduler already running")
	// ErrInvalidTask 任务为空或缺少ID
	ErrInvalidTask = errors.New("task: invalid task")
)

// Stats 调度器运行状态
type Stats struct {
	Running     bool `json:"running"`
	CurrentSlot int  `json:"currentSlot"`
	Pending     int  `json:"pending"`
	Workers     int  `json:"workers"`
}

// Scheduler 延迟任务调度器
// 时间轮按 tick 推进，到期任务交给执行池
type Scheduler struct {
	wheel *TimeWheel
	pool  *WorkerPool

	mu      sync.RWMutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	logger *slog.Logger
}

// NewScheduler 创建调度器
func NewScheduler(workerCount int, tick time.Duration) *Scheduler {
	return &Scheduler{
		wheel:  NewTimeWheel(tick),
		pool:   NewWorkerPool(workerCount),
		logger: slog.Default().With("component", "Scheduler"),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	s.pool.Start()
	go s.loop(s.stop, s.done)

	s.logger.Info("任务调度器已启动", "tick", s.wheel.Tick(), "slots", SlotCount)
	return nil
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.wheel.Tick())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if due := s.wheel.Advance(); len(due) > 0 {
				s.pool.SubmitBatch(due)
			}
		}
	}
}

// Stop 停止调度器，未到期的任务不再执行
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.pool.Stop()
	s.logger.Info("任务调度器已停止", "dropped", s.wheel.GetTotalTaskCount())
}

// add 把任务挂到时间轮上
func (s *Scheduler) add(task *Task) error {
	if task == nil || task.ID == "" {
		return ErrInvalidTask
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ErrSchedulerStopped
	}

	s.wheel.AddTask(task)
	s.logger.Debug("添加任务", "taskID", task.ID, "roomId", task.Room, "delay", task.Delay)
	return nil
}

// Schedule 延迟执行 fn，返回任务ID
func (s *Scheduler) Schedule(room string, delay time.Duration, fn func(ctx context.Context)) (string, error) {
	id := uuid.NewString()
	task := NewTask(id, room, delay, func(ctx context.Context, _ string) error {
		fn(ctx)
		return nil
	})
	if err := s.add(task); err != nil {
		return "", err
	}
	return id, nil
}

// Cancel 取消尚未触发的任务，任务已触发或不存在时返回 false
func (s *Scheduler) Cancel(taskID string) bool {
	if taskID == "" {
		return false
	}
	return s.wheel.RemoveTask(taskID)
}

// IsRunning 调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.running
}

// Stats 当前状态
func (s *Scheduler) Stats() Stats {
	return Stats{
		Running:     s.IsRunning(),
		CurrentSlot: s.wheel.GetCurrentSlot(),
		Pending:     s.wheel.GetTotalTaskCount(),
		Workers:     s.pool.Size(),
	}
}
