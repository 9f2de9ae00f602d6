package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	queueSize = 64
	// lateWarn 超过该延迟的任务记一次告警
	lateWarn = time.Second
)

// WorkerPool 到期任务执行池
// 同一房间的任务总是落在同一个协程上，按到期顺序执行
type WorkerPool struct {
	queues []chan *Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewWorkerPool 创建执行池
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	wp := &WorkerPool{
		queues: make([]chan *Task, workerCount),
		ctx:    ctx,
		cancel: cancel,
		logger: slog.Default().With("component", "WorkerPool"),
	}
	for i := range wp.queues {
		wp.queues[i] = make(chan *Task, queueSize)
	}
	return wp
}

// Size 协程数量
func (wp *WorkerPool) Size() int {
	return len(wp.queues)
}

// Start 启动执行池
func (wp *WorkerPool) Start() {
	for i, queue := range wp.queues {
		wp.wg.Add(1)
		go wp.run(i, queue)
	}
	wp.logger.Info("工作协程池已启动", "workerCount", len(wp.queues))
}

func (wp *WorkerPool) run(id int, queue <-chan *Task) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task := <-queue:
			wp.execute(id, task)
		}
	}
}

// execute 执行单个任务，panic 不会带走工作协程
func (wp *WorkerPool) execute(workerID int, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("任务执行 panic",
				"workerID", workerID,
				"taskID", task.ID,
				"roomId", task.Room,
				"panic", r)
		}
	}()

	if late := task.Lateness(time.Now()); late > lateWarn {
		wp.logger.Warn("任务执行滞后", "taskID", task.ID, "roomId", task.Room, "late", late)
	}

	if err := task.Execute(wp.ctx); err != nil {
		wp.logger.Error("任务执行失败",
			"workerID", workerID,
			"taskID", task.ID,
			"roomId", task.Room,
			"error", err)
	}
}

// queueOf 房间对应的队列下标
func (wp *WorkerPool) queueOf(room string) int {
	return int(xxhash.Sum64String(room) % uint64(len(wp.queues)))
}

// Submit 提交任务，队列已满时阻塞等待
func (wp *WorkerPool) Submit(task *Task) {
	queue := wp.queues[wp.queueOf(task.Room)]
	select {
	case queue <- task:
		return
	default:
	}

	wp.logger.Warn("任务队列已满,任务可能延迟执行", "taskID", task.ID, "roomId", task.Room)
	select {
	case queue <- task:
	case <-wp.ctx.Done():
		wp.logger.Warn("工作池已关闭,任务提交失败", "taskID", task.ID)
	}
}

// SubmitBatch 批量提交任务
func (wp *WorkerPool) SubmitBatch(tasks []*Task) {
	for _, task := range tasks {
		wp.Submit(task)
	}
}

// Stop 停止执行池，队列中未执行的任务被丢弃
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
	wp.logger.Info("工作协程池已停止")
}
