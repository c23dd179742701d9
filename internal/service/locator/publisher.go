package locator

import (
	"context"
	"log/slog"
	"time"

	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"golang.org/x/exp/maps"
)

const releaseTimeout = 5 * time.Second

type iLocatorRepo interface {
	InstanceId() string
	Claim(ctx context.Context, roomId string) error
	Release(ctx context.Context, roomId string) error
	Refresh(ctx context.Context, roomIds []string) error
	Lookup(ctx context.Context, roomId string) (string, error)
}

type opKind int

const (
	opClaim opKind = iota
	opRelease
)

type op struct {
	kind   opKind
	roomId string
}

// Publisher mirrors room creation and deletion into the locator. It is fed
// from the event loop and never blocks it: when the queue is full the update
// is dropped and the next refresh or ttl expiry repairs the locator.
type Publisher struct {
	repo          iLocatorRepo
	queue         chan op
	refreshPeriod time.Duration
	logger        *slog.Logger
}

func NewPublisher(repo iLocatorRepo, queueSize int, refreshPeriod time.Duration, logger *slog.Logger) *Publisher {
	return &Publisher{
		repo:          repo,
		queue:         make(chan op, queueSize),
		refreshPeriod: refreshPeriod,
		logger:        logger,
	}
}

func (p *Publisher) RoomCreated(roomId string) {
	p.enqueue(op{kind: opClaim, roomId: roomId})
}

func (p *Publisher) RoomDeleted(roomId string) {
	p.enqueue(op{kind: opRelease, roomId: roomId})
}

func (p *Publisher) enqueue(o op) {
	select {
	case p.queue <- o:
	default:
		p.logger.Warn("locator queue is full, update dropped", "room_id", o.roomId)
	}
}

func (p *Publisher) InstanceId() string {
	return p.repo.InstanceId()
}

func (p *Publisher) Lookup(ctx context.Context, roomId string) (string, error) {
	return p.repo.Lookup(ctx, roomId)
}

// Run applies queued updates until ctx is done, then releases every room
// this instance still owns.
func (p *Publisher) Run(ctx context.Context) error {
	ctx = ctxlogger.AppendCtx(ctx, slog.String("instance_id", p.repo.InstanceId()))
	owned := make(map[string]struct{})

	ticker := time.NewTicker(p.refreshPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.releaseAll(context.WithoutCancel(ctx), maps.Keys(owned))
			return nil
		case o := <-p.queue:
			p.apply(ctx, owned, o)
		case <-ticker.C:
			if err := p.repo.Refresh(ctx, maps.Keys(owned)); err != nil {
				p.logger.ErrorContext(ctx, "failed to refresh locator", "error", err)
			}
		}
	}
}

func (p *Publisher) apply(ctx context.Context, owned map[string]struct{}, o op) {
	switch o.kind {
	case opClaim:
		owned[o.roomId] = struct{}{}
		if err := p.repo.Claim(ctx, o.roomId); err != nil {
			p.logger.ErrorContext(ctx, "failed to claim room", "room_id", o.roomId, "error", err)
		}
	case opRelease:
		delete(owned, o.roomId)
		if err := p.repo.Release(ctx, o.roomId); err != nil {
			p.logger.ErrorContext(ctx, "failed to release room", "room_id", o.roomId, "error", err)
		}
	}
}

func (p *Publisher) releaseAll(ctx context.Context, roomIds []string) {
	ctx, cancel := context.WithTimeout(ctx, releaseTimeout)
	defer cancel()

	for _, roomId := range roomIds {
		if err := p.repo.Release(ctx, roomId); err != nil {
			p.logger.ErrorContext(ctx, "failed to release room", "room_id", roomId, "error", err)
		}
	}
	p.logger.InfoContext(ctx, "locator released", "rooms", len(roomIds))
}
