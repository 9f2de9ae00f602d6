package task

import (
	"sync"
	"time"
)

const (
	// SlotCount 时间轮槽位数量
	SlotCount = 60
	// DefaultTick 默认每格时长
	DefaultTick = 100 * time.Millisecond
)

// TimeWheel 时间轮
// 超过一圈的延迟通过 rounds 记录，任务所在槽位记录在 index 中以便取消
type TimeWheel struct {
	slots       [SlotCount]*Slot // 槽位
	tick        time.Duration    // 每格时长
	currentSlot int              // 当前槽位索引
	index       map[string]int   // taskID -> 槽位
	mu          sync.Mutex       // 保护 currentSlot 与 index
}

// NewTimeWheel 创建时间轮
func NewTimeWheel(tick time.Duration) *TimeWheel {
	if tick <= 0 {
		tick = DefaultTick
	}
	tw := &TimeWheel{
		tick:  tick,
		index: make(map[string]int),
	}

	for i := 0; i < SlotCount; i++ {
		tw.slots[i] = NewSlot()
	}

	return tw
}

// Tick 每格时长
func (tw *TimeWheel) Tick() time.Duration {
	return tw.tick
}

// ticksFor 延迟对应的格数，至少一格，向上取整
func (tw *TimeWheel) ticksFor(delay time.Duration) int {
	n := int((delay + tw.tick - 1) / tw.tick)
	if n < 1 {
		n = 1
	}
	return n
}

// AddTask 添加任务到时间轮
func (tw *TimeWheel) AddTask(task *Task) {
	ticks := tw.ticksFor(task.Delay)

	tw.mu.Lock()
	defer tw.mu.Unlock()

	if old, ok := tw.index[task.ID]; ok {
		tw.slots[old].RemoveTask(task.ID)
	}
	task.slot = (tw.currentSlot + ticks) % SlotCount
	task.rounds = (ticks - 1) / SlotCount
	tw.index[task.ID] = task.slot
	tw.slots[task.slot].AddTask(task)
}

// RemoveTask 从时间轮删除任务
func (tw *TimeWheel) RemoveTask(taskID string) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	slot, ok := tw.index[taskID]
	if !ok {
		return false
	}
	delete(tw.index, taskID)
	return tw.slots[slot].RemoveTask(taskID)
}

// Advance 推进一格，返回到期的任务
func (tw *TimeWheel) Advance() []*Task {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.currentSlot = (tw.currentSlot + 1) % SlotCount
	due := tw.slots[tw.currentSlot].TakeDue()
	for _, task := range due {
		delete(tw.index, task.ID)
	}
	return due
}

// GetCurrentSlot 获取当前槽位索引
func (tw *TimeWheel) GetCurrentSlot() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return tw.currentSlot
}

// GetSlotTaskCount 获取指定槽位的任务数量
func (tw *TimeWheel) GetSlotTaskCount(slot int) int {
	if slot < 0 || slot >= SlotCount {
		return 0
	}
	return tw.slots[slot].Count()
}

// GetTotalTaskCount 获取所有槽位的任务总数
func (tw *TimeWheel) GetTotalTaskCount() int {
	total := 0
	for i := 0; i < SlotCount; i++ {
		total += tw.slots[i].Count()
	}
	return total
}
