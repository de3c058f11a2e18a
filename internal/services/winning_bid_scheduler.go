package services

import (
	"context"
	"sync"
	"time"

	"bidding-system/internal/domain"
	"bidding-system/pkg/logger"

	"github.com/robfig/cron/v3"
)

const (
	defaultWinningBidsSpec  = "@every 1m"
	defaultCampaignInterval = 10 * time.Second
	markTimeout             = 30 * time.Second
)

type WinningBidMarker interface {
	MarkWinningBids(ctx context.Context) (int64, error)
}

// WinningBidScheduler periodically flags the highest bid of every product as
// winning. With a leader election configured only the leader runs the job;
// without one every tick runs it.
type WinningBidScheduler struct {
	cron       *cron.Cron
	spec       string
	bids       WinningBidMarker
	leader     domain.LeaderElection
	instanceID string
	log        logger.Logger

	campaignInterval time.Duration
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

func NewWinningBidScheduler(spec string, bids WinningBidMarker, leader domain.LeaderElection,
	instanceID string, log logger.Logger) *WinningBidScheduler {
	if spec == "" {
		spec = defaultWinningBidsSpec
	}
	return &WinningBidScheduler{
		cron:             cron.New(cron.WithSeconds()),
		spec:             spec,
		bids:             bids,
		leader:           leader,
		instanceID:       instanceID,
		log:              log.With("instance_id", instanceID),
		campaignInterval: defaultCampaignInterval,
	}
}

func (s *WinningBidScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting winning bid scheduler", "spec", s.spec)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.markWinningBids(ctx)
	}); err != nil {
		cancel()
		return err
	}

	if s.leader != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.campaign(ctx)
		}()
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule, waits for a running job and gives up leadership.
func (s *WinningBidScheduler) Stop() error {
	s.log.Info("Stopping winning bid scheduler")

	<-s.cron.Stop().Done()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	if s.leader == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.leader.ReleaseLeadership(ctx, s.instanceID)
}

// campaign keeps trying to take leadership until ctx is done.
func (s *WinningBidScheduler) campaign(ctx context.Context) {
	ticker := time.NewTicker(s.campaignInterval)
	defer ticker.Stop()

	for {
		became, err := s.leader.BecomeLeader(ctx, s.instanceID)
		if err != nil && ctx.Err() == nil {
			s.log.Error("Failed to attempt leadership", "error", err)
		}
		if became {
			s.log.Info("Became winning bid leader")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *WinningBidScheduler) markWinningBids(ctx context.Context) {
	if s.leader != nil {
		isLeader, err := s.leader.IsLeader(ctx, s.instanceID)
		if err != nil {
			s.log.Error("Failed to check leadership", "error", err)
			return
		}
		if !isLeader {
			s.log.Debug("Not the leader, skipping winning bid marking")
			return
		}
	}

	ctx, cancel := context.WithTimeout(ctx, markTimeout)
	defer cancel()

	updated, err := s.bids.MarkWinningBids(ctx)
	if err != nil {
		s.log.Error("Failed to mark winning bids", "error", err)
		return
	}
	s.log.Info("Marked winning bids", "rows", updated)
}
