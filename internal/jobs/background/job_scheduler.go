package background

import (
	"context"
	"log"
	"sync"
	"time"

	"torqbay/internal/caching"
	"torqbay/internal/repositories"
	"torqbay/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// Stale online orders are cancelled after this long without payment.
const pendingPaymentTTL = 30 * time.Minute

// JobScheduler manages background jobs
type JobScheduler struct {
	scheduler    gocron.Scheduler
	orderService services.OrderServiceInterface
	ruleRepo     repositories.InstallationRuleRepository
	cacheSvc     caching.CacheService
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(orderService services.OrderServiceInterface,
	ruleRepo repositories.InstallationRuleRepository, cacheSvc caching.CacheService) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		orderService: orderService,
		ruleRepo:     ruleRepo,
		cacheSvc:     cacheSvc,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Stale payment expiry - every 5 minutes
	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.expireStaleOrders),
		gocron.WithName("stale-payment-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create expiry job: %v", err)
	} else {
		js.addJob("stale-payment-expiry", expiryJob)
	}

	// Installation rule cache warmup - every 10 minutes
	warmupJob, err := js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.warmRuleCache),
		gocron.WithName("rule-cache-warmup"),
	)
	if err != nil {
		log.Printf("Failed to create cache warmup job: %v", err)
	} else {
		js.addJob("rule-cache-warmup", warmupJob)
	}

	js.mu.RLock()
	count := len(js.jobs)
	js.mu.RUnlock()
	log.Printf("Registered %d background jobs", count)
}

func (js *JobScheduler) addJob(name string, job gocron.Job) {
	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
}

// expireStaleOrders cancels online orders whose payment never arrived and
// returns their stock to the catalog.
func (js *JobScheduler) expireStaleOrders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := js.orderService.ExpireStalePendingPayments(ctx, pendingPaymentTTL)
	if err != nil {
		log.Printf("ERROR: stale payment expiry failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Expired %d stale pending-payment orders", count)
	}
}

// warmRuleCache pushes all active installation rules into redis so checkout
// rarely pays the database round trip.
func (js *JobScheduler) warmRuleCache() {
	if js.cacheSvc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	rules, err := js.ruleRepo.List(ctx, 500, 0)
	if err != nil {
		log.Printf("ERROR: rule cache warmup failed: %v", err)
		return
	}
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if err := js.cacheSvc.SetRule(ctx, rule, 15*time.Minute); err != nil {
			log.Printf("WARN: failed to warm rule cache: %v", err)
			return
		}
	}
}
