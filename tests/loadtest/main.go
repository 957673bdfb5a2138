package main

import (
	"backlog/internal/api"
	"backlog/internal/models"
	"backlog/internal/providers"
	"backlog/internal/structures"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const (
	defaultBaseURL = "http://127.0.0.1:8080"
	numWorkers     = 20
	testDuration   = 10 * time.Second
	password       = "loadtest-secret"
)

var (
	platforms = []string{"PC", "PS5", "Switch", "Xbox"}
	genres    = []string{"RPG", "Platformer", "Roguelike", "Puzzle", "Shooter"}
)

type result struct {
	operation string
	latency   time.Duration
	err       bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// worker owns one signed-in client and the ids of the games it created.
type worker struct {
	client api.ClientInterface
	ids    []uint
}

type quietLogger struct{}

func (quietLogger) Errorf(providers.TypeEnum, string, ...interface{}) {}
func (quietLogger) Warnf(providers.TypeEnum, string, ...interface{})  {}
func (quietLogger) Debugf(providers.TypeEnum, string, ...interface{}) {}
func (quietLogger) Infof(providers.TypeEnum, string, ...interface{})  {}
func (quietLogger) Fatalf(providers.TypeEnum, string, ...interface{}) {}
func (quietLogger) Close()                                            {}

func main() {
	baseURL := defaultBaseURL
	if env := os.Getenv("BACKLOG_API_URL"); env != "" {
		baseURL = strings.TrimRight(env, "/")
	}

	fmt.Println("=== Backlog API Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", baseURL, numWorkers, testDuration)

	fmt.Print("Signing in workers... ")
	workers := make([]*worker, 0, numWorkers)
	for i := 0; i < numWorkers; i++ {
		w, err := newWorker(baseURL, i)
		if err != nil {
			fmt.Printf("FAILED: %s\n", err)
			return
		}
		workers = append(workers, w)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding games (POST /games/) ---")
	runPhase(workers, testDuration, func(ctx context.Context, w *worker, rng *rand.Rand) result {
		return w.create(ctx, rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (20% write, 80% read) ---")
	runPhase(workers, testDuration, func(ctx context.Context, w *worker, rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return w.create(ctx, rng)
		case r < 0.20:
			return w.update(ctx, rng)
		case r < 0.45:
			return w.list(ctx)
		case r < 0.60:
			return w.search(ctx, rng)
		case r < 0.75:
			return w.filter(ctx, rng)
		default:
			return w.stats(ctx)
		}
	})

	fmt.Println("\n--- Phase 3: Cleanup (DELETE /games/{id}) ---")
	runPhase(workers, testDuration, func(ctx context.Context, w *worker, rng *rand.Rand) result {
		return w.delete(ctx)
	})
}

func newWorker(baseURL string, n int) (*worker, error) {
	conf := &structures.Config{Api: structures.ApiConfig{BaseURL: baseURL, Origin: baseURL}}
	reloader := providers.NewReloadProvider()
	client, err := api.NewClient(conf, providers.NewMemoryStorage(1), reloader, providers.NewMetricsProvider(conf), quietLogger{})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	username := fmt.Sprintf("load_%d_%d", time.Now().UnixNano(), n)
	_, err = client.Register(ctx, &models.RegisterRequest{Username: username, Email: username + "@example.com", Password: password})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	// Sign in explicitly so the token is stored whatever register answered.
	_, err = client.Login(ctx, &models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}
	return &worker{client: client}, nil
}

func runPhase(workers []*worker, duration time.Duration, workFn func(ctx context.Context, w *worker, rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	totalOps := atomic.NewInt64(0)

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	for i, w := range workers {
		wg.Add(1)
		go func(w *worker, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				r := workFn(ctx, w, rng)
				if errors.Is(ctx.Err(), context.DeadlineExceeded) && r.err {
					return
				}
				totalOps.Inc()
				results <- r
			}
		}(w, rand.Int63()+int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.operation]
			if !ok {
				s = &stats{}
				allResults[r.operation] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration, totalOps.Load())
}

func (w *worker) create(ctx context.Context, rng *rand.Rand) result {
	in := &models.GameInput{
		Title:    fmt.Sprintf("Game %d", rng.Intn(100000)),
		Platform: platforms[rng.Intn(len(platforms))],
		Genre:    genres[rng.Intn(len(genres))],
		Status:   models.GameStatuses[rng.Intn(len(models.GameStatuses))],
	}
	start := time.Now()
	resp, err := w.client.CreateGame(ctx, in)
	lat := time.Since(start)
	if err == nil {
		w.ids = append(w.ids, resp.Data.ID)
	}
	return result{"POST /games/", lat, err != nil}
}

func (w *worker) update(ctx context.Context, rng *rand.Rand) result {
	if len(w.ids) == 0 {
		return w.create(ctx, rng)
	}
	id := w.ids[rng.Intn(len(w.ids))]
	in := &models.GameInput{
		Title:       fmt.Sprintf("Game %d", id),
		Platform:    platforms[rng.Intn(len(platforms))],
		Genre:       genres[rng.Intn(len(genres))],
		Status:      models.StatusPlaying,
		Progress:    rng.Intn(101),
		HoursPlayed: float64(rng.Intn(200)),
	}
	start := time.Now()
	_, err := w.client.UpdateGame(ctx, id, in)
	return result{"PUT /games/{id}", time.Since(start), err != nil}
}

func (w *worker) delete(ctx context.Context) result {
	if len(w.ids) == 0 {
		// Nothing left; idle on a cheap read until the phase ends.
		return w.stats(ctx)
	}
	id := w.ids[len(w.ids)-1]
	w.ids = w.ids[:len(w.ids)-1]
	start := time.Now()
	_, err := w.client.DeleteGame(ctx, id)
	return result{"DELETE /games/{id}", time.Since(start), err != nil}
}

func (w *worker) list(ctx context.Context) result {
	start := time.Now()
	_, err := w.client.ListGames(ctx)
	return result{"GET /games/", time.Since(start), err != nil}
}

func (w *worker) search(ctx context.Context, rng *rand.Rand) result {
	start := time.Now()
	_, err := w.client.SearchGames(ctx, fmt.Sprintf("Game %d", rng.Intn(10)))
	return result{"GET /games/search", time.Since(start), err != nil}
}

func (w *worker) filter(ctx context.Context, rng *rand.Rand) result {
	start := time.Now()
	var err error
	if rng.Intn(2) == 0 {
		_, err = w.client.FilterGamesByStatus(ctx, models.GameStatuses[rng.Intn(len(models.GameStatuses))])
		return result{"GET /games/status", time.Since(start), err != nil}
	}
	_, err = w.client.FilterGamesByGenre(ctx, genres[rng.Intn(len(genres))])
	return result{"GET /games/genre", time.Since(start), err != nil}
}

func (w *worker) stats(ctx context.Context) result {
	start := time.Now()
	_, err := w.client.GetStats(ctx)
	return result{"GET /stats", time.Since(start), err != nil}
}

func printResults(allResults map[string]*stats, duration time.Duration, totalOps int64) {
	var totalErrors int64

	operations := make([]string, 0, len(allResults))
	for op := range allResults {
		operations = append(operations, op)
	}
	sort.Strings(operations)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Operation", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, op := range operations {
		s := allResults[op]
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			op, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		totalOps = 1
	}
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
