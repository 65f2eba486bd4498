package scheduler

import (
	"sync"
	"time"

	"github.com/campuslink/campuslink-backend/pkg/logger"
)

// Task is a registered periodic job.
type Task struct {
	Name      string
	Interval  time.Duration
	Handler   func(now time.Time) error
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	LastError error
}

// Scheduler runs dispatch and retention sweeps in-process.
type Scheduler struct {
	tasks []*Task
	tick  time.Duration
	mu    sync.RWMutex
	stop  chan struct{}
	wg    sync.WaitGroup
}

// New creates a scheduler that checks due tasks every tick interval.
func New(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	return &Scheduler{
		tasks: make([]*Task, 0),
		tick:  tick,
		stop:  make(chan struct{}),
	}
}

// Register adds a periodic task. The first run happens one interval from now.
func (s *Scheduler) Register(name string, interval time.Duration, handler func(now time.Time) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Handler:  handler,
		NextRun:  time.Now().Add(interval),
	})

	logger.GetLogger().Info().
		Str("task", name).
		Dur("interval", interval).
		Msg("scheduled task registered")
}

// Start launches the scheduler loop in a background goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.runDue(now)
			}
		}
	}()
	logger.GetLogger().Info().Msg("sweep scheduler started")
}

// Stop halts the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
	logger.GetLogger().Info().Msg("sweep scheduler stopped")
}

func (s *Scheduler) runDue(now time.Time) {
	// Due tasks are selected and rescheduled under the lock; handlers
	// run outside it so a slow sweep cannot block Register.
	s.mu.Lock()
	due := make([]*Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if now.Before(task.NextRun) {
			continue
		}
		task.NextRun = now.Add(task.Interval)
		due = append(due, task)
	}
	s.mu.Unlock()

	for _, task := range due {
		err := task.Handler(now)
		if err != nil {
			logger.GetLogger().Error().
				Err(err).
				Str("task", task.Name).
				Msg("scheduled task failed")
		}

		s.mu.Lock()
		task.LastRun = now
		task.LastError = err
		task.RunCount++
		s.mu.Unlock()
	}
}
