package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	agentrepo "agentgraph-backend/internal/agent/repository"
	feeddomain "agentgraph-backend/internal/feed/domain"
	feedrepo "agentgraph-backend/internal/feed/repository"
	identityusecase "agentgraph-backend/internal/identity/usecase"
	"agentgraph-backend/internal/monitor/domain"
	"agentgraph-backend/internal/monitor/repository"
	"agentgraph-backend/internal/shared/events"
	"agentgraph-backend/pkg/ai"
	"agentgraph-backend/pkg/search"
)

const runTimeout = 2 * time.Minute

// Options tune the scheduler loop.
type Options struct {
	// Leader gates the loop: only the elected instance polls. There is no
	// distributed lock; deployments set this on exactly one instance.
	Leader        bool
	Tick          time.Duration
	BatchSize     int
	JitterMinutes int
	ItemCap       int
}

// MonitorScheduler runs due monitors: fetch, filter by recency, dedup,
// publish one aggregated update, reschedule with jitter. Monitors run
// sequentially within a tick so no monitor ever runs twice concurrently.
type MonitorScheduler struct {
	monitorRepo repository.MonitorRepository
	seenRepo    repository.SeenItemRepository
	agentRepo   agentrepo.AgentRepository
	postRepo    feedrepo.PostRepository
	resolver    identityusecase.Resolver
	searchSvc   search.Service
	composer    ai.ComposerService
	dispatcher  *events.Dispatcher
	opts        Options
	stopChan    chan struct{}
}

func NewMonitorScheduler(
	monitorRepo repository.MonitorRepository,
	seenRepo repository.SeenItemRepository,
	agentRepo agentrepo.AgentRepository,
	postRepo feedrepo.PostRepository,
	resolver identityusecase.Resolver,
	searchSvc search.Service,
	composer ai.ComposerService,
	dispatcher *events.Dispatcher,
	opts Options,
) *MonitorScheduler {
	if opts.Tick <= 0 {
		opts.Tick = time.Minute
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.JitterMinutes <= 0 {
		opts.JitterMinutes = 10
	}
	if opts.ItemCap <= 0 {
		opts.ItemCap = 5
	}
	return &MonitorScheduler{
		monitorRepo: monitorRepo,
		seenRepo:    seenRepo,
		agentRepo:   agentRepo,
		postRepo:    postRepo,
		resolver:    resolver,
		searchSvc:   searchSvc,
		composer:    composer,
		dispatcher:  dispatcher,
		opts:        opts,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *MonitorScheduler) Start() {
	if !s.opts.Leader {
		log.Println("[MonitorScheduler] Not the leader, scheduler disabled")
		return
	}

	log.Printf("[MonitorScheduler] Starting monitor scheduler (tick: %s, batch: %d)", s.opts.Tick, s.opts.BatchSize)

	go func() {
		// Run immediately on start
		s.RunTick(time.Now())

		ticker := time.NewTicker(s.opts.Tick)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunTick(time.Now())
			case <-s.stopChan:
				log.Println("[MonitorScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *MonitorScheduler) Stop() {
	close(s.stopChan)
}

// RunTick processes one batch of due monitors. Exported so tests can drive
// the scheduler synchronously without wall-clock timers.
func (s *MonitorScheduler) RunTick(now time.Time) {
	monitors, err := s.monitorRepo.FindDue(now, s.opts.BatchSize)
	if err != nil {
		log.Printf("[MonitorScheduler] Error finding due monitors: %v", err)
		return
	}
	if len(monitors) == 0 {
		return
	}

	log.Printf("[MonitorScheduler] Found %d due monitors", len(monitors))

	for _, monitor := range monitors {
		if err := s.runMonitor(now, monitor); err != nil {
			// A failing source backs off at normal cadence instead of
			// spinning: the schedule advance below happens either way.
			log.Printf("[MonitorScheduler] Monitor %s run failed: %v", monitor.ID, err)
		}

		next := now.Add(time.Duration(monitor.CadenceMinutes)*time.Minute + s.jitter())
		if err := s.monitorRepo.MarkRun(monitor.ID, now, next); err != nil {
			log.Printf("[MonitorScheduler] Error advancing schedule for monitor %s: %v", monitor.ID, err)
		}
	}
}

// jitter returns a uniform offset in [0, JitterMinutes) minutes,
// desynchronizing monitors that share a cadence.
func (s *MonitorScheduler) jitter() time.Duration {
	return time.Duration(rand.Int63n(int64(s.opts.JitterMinutes) * int64(time.Minute)))
}

type freshItem struct {
	search.Item
	key       string
	timestamp time.Time
}

func (s *MonitorScheduler) runMonitor(now time.Time, monitor *domain.Monitor) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	// Items timestamped before the last completed run are not fresh. A
	// never-run monitor measures against its creation time.
	threshold := monitor.CreatedAt
	if monitor.LastRunAt != nil {
		threshold = *monitor.LastRunAt
	}

	result, err := s.searchSvc.Run(ctx, monitor.Engine, monitor.Query, s.engineParams(monitor))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fresh, err := s.filterFresh(monitor, result.Items, threshold, now)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fresh))
	for _, item := range fresh {
		keys = append(keys, item.key)
	}

	// First-run rule: baseline the seen set without posting, so creating a
	// monitor never dumps pre-existing items as "new".
	if monitor.LastRunAt == nil {
		log.Printf("[MonitorScheduler] Monitor %s baseline: %d items marked seen", monitor.ID, len(fresh))
		return s.seenRepo.MarkSeen(monitor.ID, keys)
	}

	body := s.composeBody(ctx, monitor, fresh)

	actor, err := s.resolver.ResolveAgentActor(monitor.AgentID)
	if err != nil {
		return fmt.Errorf("failed to resolve agent actor: %w", err)
	}

	visibility := feeddomain.VisibilityPublic
	if monitor.Scope == domain.ScopePrivate {
		visibility = feeddomain.VisibilityPrivate
	}
	post := &feeddomain.Post{
		AuthorActorID: actor.ID,
		Body:          body,
		Visibility:    visibility,
		ReplyToPostID: monitor.SourcePostID,
	}
	if err := s.postRepo.Create(post); err != nil {
		return fmt.Errorf("failed to publish update post: %w", err)
	}

	if err := s.seenRepo.MarkSeen(monitor.ID, keys); err != nil {
		return fmt.Errorf("failed to mark items seen: %w", err)
	}

	s.dispatcher.PublishMonitorProducedPost(events.MonitorProducedPost{
		MonitorID:    monitor.ID,
		AgentID:      monitor.AgentID,
		SourcePostID: monitor.SourcePostID,
		FeedPostID:   post.ID,
		Title:        fmt.Sprintf("New findings for %q", monitor.Query),
		Body:         body,
	})

	log.Printf("[MonitorScheduler] Monitor %s surfaced %d items in post %s", monitor.ID, len(fresh), post.ID)
	return nil
}

// engineParams merges the monitor's stored params with engine tuning.
// Google engines support a recency window; it biases results toward items
// the recency filter will keep anyway.
func (s *MonitorScheduler) engineParams(monitor *domain.Monitor) map[string]string {
	params := map[string]string{}
	if monitor.Params != "" {
		if err := json.Unmarshal([]byte(monitor.Params), &params); err != nil {
			log.Printf("[MonitorScheduler] Monitor %s has unparseable params, ignoring: %v", monitor.ID, err)
		}
	}
	switch monitor.Engine {
	case "google", "google_news":
		if _, ok := params["tbs"]; !ok {
			params["tbs"] = "qdr:w"
		}
	}
	return params
}

// filterFresh keeps items that are fresh by time (undated items qualify),
// drops fingerprints already in the seen set, and caps to the freshest few.
func (s *MonitorScheduler) filterFresh(monitor *domain.Monitor, items []search.Item, threshold, now time.Time) ([]freshItem, error) {
	var fresh []freshItem
	for _, item := range items {
		if item.Title == "" && item.Link == "" {
			continue
		}
		timestamp, ok := parseItemTime(item.Date, now)
		if ok && !timestamp.After(threshold) {
			continue
		}
		if !ok {
			// No parseable date does not disqualify an item; it sorts as
			// current.
			timestamp = now
		}

		key := fingerprint(monitor.Engine, item.Link, item.Title, item.Date)
		seen, err := s.seenRepo.Has(monitor.ID, key)
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}
		fresh = append(fresh, freshItem{Item: item, key: key, timestamp: timestamp})
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].timestamp.After(fresh[j].timestamp)
	})
	if len(fresh) > s.opts.ItemCap {
		fresh = fresh[:s.opts.ItemCap]
	}
	return fresh, nil
}

// composeBody builds the update post: a persona-flavored preface followed by
// the item list. LLM failure degrades to a templated preface.
func (s *MonitorScheduler) composeBody(ctx context.Context, monitor *domain.Monitor, fresh []freshItem) string {
	titles := make([]string, 0, len(fresh))
	for _, item := range fresh {
		titles = append(titles, item.Title)
	}

	persona := ""
	agentName := "Your agent"
	if agent, err := s.agentRepo.FindByID(monitor.AgentID); err == nil && agent != nil {
		persona = agent.Persona
		agentName = agent.Name
	}

	preface := ""
	if s.composer != nil {
		composed, err := s.composer.ComposeUpdate(ctx, persona, titles)
		if err != nil {
			log.Printf("[MonitorScheduler] Compose failed for monitor %s, using template: %v", monitor.ID, err)
		} else {
			preface = composed
		}
	}
	if preface == "" {
		preface = fmt.Sprintf("%s found %d new updates on %q:", agentName, len(fresh), monitor.Query)
	}

	var b strings.Builder
	b.WriteString(preface)
	b.WriteString("\n")
	for _, item := range fresh {
		b.WriteString("\n- ")
		b.WriteString(item.Title)
		if item.Link != "" {
			b.WriteString(" (")
			b.WriteString(item.Link)
			b.WriteString(")")
		}
		if item.Date != "" {
			b.WriteString(" [")
			b.WriteString(item.Date)
			b.WriteString("]")
		}
	}
	return b.String()
}
