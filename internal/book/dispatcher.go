package book

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrDispatcherClosed is returned for commands submitted after shutdown.
var ErrDispatcherClosed = errors.New("book dispatcher closed")

// CommandKind identifies a repository call carried by a Command.
type CommandKind int

const (
	CreateBook CommandKind = iota + 1
	ListBooks
	RemoveByTitle
	RemoveByISBN
)

func (k CommandKind) String() string {
	switch k {
	case CreateBook:
		return "create_book"
	case ListBooks:
		return "list_books"
	case RemoveByTitle:
		return "remove_by_title"
	case RemoveByISBN:
		return "remove_by_isbn"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is one unit of work for the dispatcher.
// Book is used by CreateBook, Key by the two remove commands.
type Command struct {
	Kind CommandKind
	Book Book
	Key  string
}

// Result is the outcome of a Command. Books is only set for ListBooks.
type Result struct {
	Books []Book
	Err   error
}

type envelope struct {
	ctx   context.Context
	cmd   Command
	reply chan Result
}

// Dispatcher owns a Repository and executes commands received over a queue,
// so callers never run store calls on their own goroutine.
// It also implements Repository by submitting and awaiting a command.
type Dispatcher struct {
	repo    Repository
	logger  *zap.Logger
	workers int
	queue   chan envelope

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

var _ Repository = (*Dispatcher)(nil)

func NewDispatcher(repo Repository, logger *zap.Logger, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Dispatcher{
		repo:    repo,
		logger:  logger,
		workers: workers,
		queue:   make(chan envelope, buffer),
		done:    make(chan struct{}),
	}
}

// Run consumes commands until ctx is done. Commands still queued at that
// point are answered with ErrDispatcherClosed.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		worker := i
		g.Go(func() error {
			d.work(gctx, worker)
			return nil
		})
	}
	err := g.Wait()
	d.shutdown()
	return err
}

func (d *Dispatcher) work(ctx context.Context, worker int) {
	log := d.logger.With(zap.Int("worker", worker))
	for {
		select {
		case <-ctx.Done():
			log.Debug("dispatcher: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return
		case env := <-d.queue:
			env.reply <- d.execute(log, env)
		}
	}
}

func (d *Dispatcher) execute(log *zap.Logger, env envelope) Result {
	if err := env.ctx.Err(); err != nil {
		log.Debug("dispatcher: command abandoned before execution", zap.Stringer("command", env.cmd.Kind))
		return Result{Err: err}
	}

	var res Result
	switch env.cmd.Kind {
	case CreateBook:
		res.Err = d.repo.Create(env.ctx, env.cmd.Book)
	case ListBooks:
		res.Books, res.Err = d.repo.List(env.ctx)
	case RemoveByTitle:
		res.Err = d.repo.RemoveByTitle(env.ctx, env.cmd.Key)
	case RemoveByISBN:
		res.Err = d.repo.RemoveByISBN(env.ctx, env.cmd.Key)
	default:
		res.Err = fmt.Errorf("dispatcher: unknown command %s", env.cmd.Kind)
	}

	switch {
	case res.Err == nil:
	case errors.Is(res.Err, ErrDuplicateISBN), errors.Is(res.Err, context.Canceled):
		log.Debug("dispatcher: command rejected", zap.Stringer("command", env.cmd.Kind), zap.Error(res.Err))
	default:
		log.Error("dispatcher: command failed", zap.Stringer("command", env.cmd.Kind), zap.Error(res.Err))
	}
	return res
}

// Submit enqueues cmd and returns the channel its Result will be delivered
// on. The channel is buffered, so abandoning it never stalls a worker.
// ctx governs both queueing and execution.
func (d *Dispatcher) Submit(ctx context.Context, cmd Command) (<-chan Result, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrDispatcherClosed
	}

	env := envelope{ctx: ctx, cmd: cmd, reply: make(chan Result, 1)}
	select {
	case d.queue <- env:
		return env.reply, nil
	case <-d.done:
		return nil, ErrDispatcherClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) shutdown() {
	d.closeOnce.Do(func() {
		close(d.done)
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		for {
			select {
			case env := <-d.queue:
				env.reply <- Result{Err: ErrDispatcherClosed}
			default:
				return
			}
		}
	})
}

func (d *Dispatcher) do(ctx context.Context, cmd Command) Result {
	reply, err := d.Submit(ctx, cmd)
	if err != nil {
		return Result{Err: err}
	}
	select {
	case res := <-reply:
		return res
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

func (d *Dispatcher) Create(ctx context.Context, b Book) error {
	return d.do(ctx, Command{Kind: CreateBook, Book: b}).Err
}

func (d *Dispatcher) List(ctx context.Context) ([]Book, error) {
	res := d.do(ctx, Command{Kind: ListBooks})
	return res.Books, res.Err
}

func (d *Dispatcher) RemoveByTitle(ctx context.Context, title string) error {
	return d.do(ctx, Command{Kind: RemoveByTitle, Key: title}).Err
}

func (d *Dispatcher) RemoveByISBN(ctx context.Context, isbn string) error {
	return d.do(ctx, Command{Kind: RemoveByISBN, Key: isbn}).Err
}
