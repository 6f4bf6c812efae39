package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Family is one independently scheduled job family. Each family runs on its
// own fixed interval with its own worker pool; there is no shared state
// between families.
type Family struct {
	Name     string
	Interval time.Duration
	// Provider produces the batch of jobs for one tick.
	Provider func(ctx context.Context) ([]Job, error)
}

// Config holds worker pool sizing shared by all families.
type Config struct {
	WorkerCount  int
	JobDelay     time.Duration
	QueueSize    int
	RunOnStartup bool
}

type runningFamily struct {
	Family
	pool *WorkerPool
}

// Scheduler runs registered job families on their intervals.
type Scheduler struct {
	cfg      Config
	families map[string]*runningFamily

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler. Families are added with Register before Start.
func New(cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:      cfg,
		families: make(map[string]*runningFamily),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register adds a job family. Must be called before Start.
func (s *Scheduler) Register(f Family) {
	s.families[f.Name] = &runningFamily{
		Family: f,
		pool:   NewWorkerPool(f.Name, s.cfg.WorkerCount, s.cfg.JobDelay, s.cfg.QueueSize),
	}
}

// Start launches one ticker goroutine and one worker pool per family.
func (s *Scheduler) Start() {
	for _, f := range s.families {
		f.pool.Start()
		s.wg.Add(1)
		go s.familyLoop(f)
		log.Printf("Scheduler: %s family running every %v", f.Name, f.Interval)
	}
}

func (s *Scheduler) familyLoop(f *runningFamily) {
	defer s.wg.Done()

	if s.cfg.RunOnStartup {
		s.runFamily(f)
	}

	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runFamily(f)
		}
	}
}

func (s *Scheduler) runFamily(f *runningFamily) {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	jobs, err := f.Provider(ctx)
	if err != nil {
		log.Printf("Scheduler: %s family failed to build jobs: %v", f.Name, err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	f.pool.SubmitBatch(jobs)
}

// TriggerFamily runs one family's batch immediately, outside its schedule.
// Used by the admin surface.
func (s *Scheduler) TriggerFamily(name string) error {
	f, ok := s.families[name]
	if !ok {
		return fmt.Errorf("unknown job family %q", name)
	}
	log.Printf("Scheduler: manual trigger of %s family", name)
	go s.runFamily(f)
	return nil
}

// Shutdown stops the ticker loops, then drains each family's pool.
func (s *Scheduler) Shutdown(timeout time.Duration) {
	log.Println("Scheduler: initiating graceful shutdown")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Println("Scheduler: timeout waiting for family loops to stop")
	}

	var pools sync.WaitGroup
	for _, f := range s.families {
		pools.Add(1)
		go func(f *runningFamily) {
			defer pools.Done()
			f.pool.ShutdownWithTimeout(timeout)
		}(f)
	}
	pools.Wait()

	log.Println("Scheduler: shutdown complete")
}
