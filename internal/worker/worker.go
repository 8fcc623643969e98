// Package worker runs the consumer side of the generation pipeline: a pool
// of goroutines that claim jobs from the queue, invoke the AI generator, and
// drive each generation record through its lifecycle.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aminulbx/genboard/internal/ai"
	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/queue"
	"github.com/aminulbx/genboard/internal/repository"
)

// Config holds tuning knobs for the pool.
type Config struct {
	// Size is the number of concurrent workers. Each job is still claimed
	// by exactly one of them — the queue guarantees that.
	Size int
	// GenerateTimeout bounds a single AI invocation. Expiry counts as a
	// collaborator failure and the generation ends up failed.
	GenerateTimeout time.Duration
}

// terminalWriteTimeout bounds the record writes that follow an AI call.
// These run detached from the pool context, so they need their own deadline.
const terminalWriteTimeout = 10 * time.Second

func DefaultConfig() Config {
	return Config{
		Size:            2,
		GenerateTimeout: 2 * time.Minute,
	}
}

// Pool consumes the job queue. Generations are written only by the worker
// that claimed the corresponding job, so there are no write-write races on a
// record; the repository's guarded transitions make terminal states stick
// even if something retries late.
type Pool struct {
	queue       queue.Queue
	generations repository.GenerationRepository
	components  repository.ComponentRepository
	generator   ai.Generator
	logger      *slog.Logger
	config      Config
	now         func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
}

// NewPool wires a pool. It does nothing until Start.
func NewPool(
	q queue.Queue,
	generations repository.GenerationRepository,
	components repository.ComponentRepository,
	generator ai.Generator,
	cfg Config,
	logger *slog.Logger,
) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 2 * time.Minute
	}
	return &Pool{
		queue:       q,
		generations: generations,
		components:  components,
		generator:   generator,
		logger:      logger,
		config:      cfg,
		now:         time.Now,
	}
}

// Size reports how many workers the pool runs.
func (p *Pool) Size() int {
	return p.config.Size
}

// Start launches the workers in the background.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel

		p.logger.Info("starting generation worker pool", slog.Int("size", p.config.Size))
		for i := 0; i < p.config.Size; i++ {
			p.wg.Add(1)
			go p.run(ctx, i)
		}
	})
}

// Stop cancels the workers and waits for in-flight jobs to finish their
// terminal transition.
func (p *Pool) Stop() {
	if p.cancel == nil {
		return
	}
	p.logger.Info("stopping generation worker pool")
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	logger := p.logger.With(slog.Int("worker", id))

	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, queue.ErrClosed) {
				return
			}
			logger.Error("dequeue failed", slog.String("error", err.Error()))
			continue
		}
		p.process(ctx, logger, job)
	}
}

// process drives one job to exactly one terminal transition.
func (p *Pool) process(ctx context.Context, logger *slog.Logger, job queue.Job) {
	logger = logger.With(slog.String("generationId", job.GenerationID))

	gen, err := p.generations.GetByID(ctx, job.GenerationID)
	if err != nil {
		// The project may have been deleted between enqueue and claim.
		logger.Warn("skipping job for missing generation", slog.String("error", err.Error()))
		return
	}

	if err := p.generations.MarkRunning(ctx, job.GenerationID); err != nil {
		// Already past pending — someone parked it (queue failure path) or
		// a duplicate delivery raced us. Either way the claim is void.
		logger.Warn("could not claim generation", slog.String("error", err.Error()))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, p.config.GenerateTimeout)
	result, err := p.generator.Generate(callCtx, job.Prompt)
	cancel()

	// Stop cancels the pool context, which aborts the AI call above — but a
	// claimed job still owes its record exactly one terminal transition. The
	// writes below run detached from pool cancellation so shutdown cannot
	// strand a generation in running.
	writeCtx, cancelWrite := context.WithTimeout(context.WithoutCancel(ctx), terminalWriteTimeout)
	defer cancelWrite()

	if err != nil {
		p.fail(writeCtx, logger, job.GenerationID, fmt.Sprintf("generation failed: %v", err))
		return
	}

	component := &model.Component{
		ProjectID:    gen.ProjectID,
		GenerationID: gen.ID,
		Name:         componentName(job.Prompt),
		Data:         encodeComponentData(result),
	}
	if err := p.components.Create(writeCtx, component); err != nil {
		p.fail(writeCtx, logger, job.GenerationID, fmt.Sprintf("storing component: %v", err))
		return
	}

	if err := p.generations.MarkCompleted(writeCtx, job.GenerationID, result.TokensUsed, p.now()); err != nil {
		logger.Error("could not mark generation completed", slog.String("error", err.Error()))
		return
	}

	logger.Info("generation completed",
		slog.String("componentId", component.ID),
		slog.Int("tokensUsed", result.TokensUsed),
	)
}

func (p *Pool) fail(ctx context.Context, logger *slog.Logger, generationID, reason string) {
	logger.Warn("generation failed", slog.String("reason", reason))
	if err := p.generations.MarkFailed(ctx, generationID, reason, p.now()); err != nil {
		logger.Error("could not mark generation failed", slog.String("error", err.Error()))
	}
}

// componentName derives a display name from the prompt's first few words.
func componentName(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) > 5 {
		words = words[:5]
	}
	name := strings.Join(words, " ")
	if name == "" {
		name = "Generated component"
	}
	return name
}

func encodeComponentData(result *ai.Result) string {
	data, err := json.Marshal(model.ComponentData{
		Code:        result.Code,
		Description: result.Description,
	})
	if err != nil {
		return "{}"
	}
	return string(data)
}
