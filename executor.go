package melodium

/*
   Copyright 2018 Bruno Moura <brunotm@gmail.com>

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	jump "github.com/dgryski/go-jump"

	"github.com/brunotm/melodium/log"
)

// Executor is the injectable scheduling dependency the World drives tasks
// through: production code uses PoolExecutor, tests can substitute a
// single-threaded variant for determinism.
type Executor interface {
	// Spawn schedules t to run to completion or until Stop is called.
	// PoolExecutor's Spawn returns without waiting for t; InlineExecutor's
	// runs t to completion before returning.
	Spawn(t Task)
	// Run blocks until ctx is canceled or Stop is called, driving spawned
	// tasks to completion.
	Run(ctx context.Context) error
	// Stop cancels every task's context; with immediate=false, Run still
	// waits for already-running tasks to return on their own.
	Stop(immediate bool)
}

// PoolExecutor runs each spawned task on its own goroutine; Go's own
// runtime scheduler provides the work-stealing across OS threads, so this
// type's job is bookkeeping: tracking outstanding tasks for a clean Stop,
// and recording per-shard failure counts via a consistent-hash bucket
// assignment so a hot shard is visible without a counter shared by every
// task.
type PoolExecutor struct {
	logger log.Logger

	shards      int
	shardErrors []int64
	nextTaskID  uint64

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// NewPoolExecutor constructs a PoolExecutor with the given number of error
// shards (0 selects runtime.GOMAXPROCS(0)).
func NewPoolExecutor(shards int) *PoolExecutor {
	if shards <= 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	return &PoolExecutor{
		logger:      log.New("component", "executor"),
		shards:      shards,
		shardErrors: make([]int64, shards),
	}
}

func (p *PoolExecutor) taskContext() context.Context {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Spawn launches t on its own goroutine, recording its error (if any)
// under a shard chosen by consistent hashing of a monotonic task id so
// repeated runs distribute error counters the same way across a fixed
// shard count regardless of how many tasks actually land in each.
func (p *PoolExecutor) Spawn(t Task) {
	taskID := atomic.AddUint64(&p.nextTaskID, 1)
	shard := int(jump.Hash(taskID, int32(p.shards)))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := t(p.taskContext()); err != nil {
			atomic.AddInt64(&p.shardErrors[shard], 1)
			p.logger.Warnw("task returned error", "shard", shard, "error", err)
		}
	}()
}

// Run installs ctx as the context handed to every task that starts running
// after this call (a task whose goroutine started earlier keeps
// context.Background), and blocks until ctx is canceled or Stop is called,
// then waits for outstanding tasks to return.
func (p *PoolExecutor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.ctx = ctx
	p.cancel = cancel
	p.mu.Unlock()

	<-ctx.Done()
	p.wg.Wait()
	return nil
}

// Stop cancels the executor's context, unblocking Run. Tasks observe
// cancellation cooperatively, by channel close propagating from a
// Stop(immediate=true) on the World; PoolExecutor itself does not
// distinguish immediate from drained stop beyond that.
func (p *PoolExecutor) Stop(immediate bool) {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if !immediate {
		p.wg.Wait()
	}
}

// ShardErrors returns a snapshot of the per-shard failure counters, for
// introspection.
func (p *PoolExecutor) ShardErrors() []int64 {
	out := make([]int64, p.shards)
	for i := range out {
		out[i] = atomic.LoadInt64(&p.shardErrors[i])
	}
	return out
}

// InlineExecutor runs every spawned task synchronously on the calling
// goroutine of Spawn; useful in tests that need deterministic ordering.
type InlineExecutor struct {
	ctx context.Context
}

// NewInlineExecutor constructs an InlineExecutor.
func NewInlineExecutor() *InlineExecutor { return &InlineExecutor{ctx: context.Background()} }

// Spawn runs t to completion immediately, on the caller's goroutine.
func (e *InlineExecutor) Spawn(t Task) {
	_ = t(e.ctx)
}

// Run installs ctx and blocks until it is canceled.
func (e *InlineExecutor) Run(ctx context.Context) error {
	e.ctx = ctx
	<-ctx.Done()
	return nil
}

// Stop is a no-op: InlineExecutor has no outstanding asynchronous tasks to
// cancel once Spawn has returned.
func (e *InlineExecutor) Stop(bool) {}
