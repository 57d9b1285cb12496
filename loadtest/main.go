package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"roombook/client"
	"roombook/pkg/constraints"
	"roombook/pkg/logger"
)

// Configuration
var (
	baseURL     = flag.String("url", client.DefaultBaseURL, "Backend base URL")
	username    = flag.String("user", "loadtest", "Account to log in with")
	password    = flag.String("password", "loadtest", "Password of the account")
	totalVUs    = flag.Int("c", 200, "Total Virtual Users (Concurrency)")
	rampUp      = flag.Duration("ramp", 20*time.Second, "Ramp up duration")
	duration    = flag.Duration("d", 2*time.Minute, "Total test duration")
	expireEvery = flag.Duration("expire", 10*time.Second, "Invalidate the shared access token this often, 0 to never")
)

// Metrics
var (
	activeVUs    int64
	requests     int64
	requestErrs  int64
	terminations int64
	refreshes    int64
	latencySum   int64 // milliseconds
	latencyCount int64
)

func main() {
	flag.Parse()
	logger.InitLogger("cli")
	defer logger.Sync()

	fmt.Printf("Starting load test\n")
	fmt.Printf("   Target: %s\n", *baseURL)
	fmt.Printf("   VUs: %d\n", *totalVUs)
	fmt.Printf("   Ramp: %v\n", *rampUp)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelRun := context.WithTimeout(ctx, *duration)
	defer cancelRun()

	// All VUs share one client and one token pair, so an expired access token
	// makes every VU hit 401 at once and the refresh is shared.
	store := client.NewMemoryStore()
	c, err := client.New(*baseURL,
		client.WithCredentialStore(store),
		client.WithRedirectDelay(0),
		client.WithNotifier(client.NotifierFunc(func(string) { atomic.AddInt64(&terminations, 1) })),
		client.WithNavigator(client.NavigatorFunc(func(string) {})),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := c.Login(ctx, *username, *password); err != nil {
		fmt.Fprintf(os.Stderr, "login as %s failed: %v\n", *username, err)
		os.Exit(1)
	}

	go report(ctx)
	if *expireEvery > 0 {
		go expireTokens(ctx, store)
	}

	var wg sync.WaitGroup
	interval := *rampUp / time.Duration(*totalVUs)
	for i := 0; i < *totalVUs && ctx.Err() == nil; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runVU(ctx, c, id)
		}(i)
		time.Sleep(interval)
	}

	fmt.Println("All VUs launched. Waiting...")
	wg.Wait()
	fmt.Printf("Done. requests=%d errors=%d refreshes=%d terminations=%d\n",
		atomic.LoadInt64(&requests), atomic.LoadInt64(&requestErrs),
		atomic.LoadInt64(&refreshes), atomic.LoadInt64(&terminations))
}

func report(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reqs := atomic.SwapInt64(&requests, 0)
			latSum := atomic.SwapInt64(&latencySum, 0)
			latCnt := atomic.SwapInt64(&latencyCount, 0)

			avgLat := float64(0)
			if latCnt > 0 {
				avgLat = float64(latSum) / float64(latCnt)
			}
			fmt.Printf("[%s] Active: %d | Req/s: %d | Errors: %d | Refreshes: %d | Avg Latency: %.2f ms\n",
				time.Now().Format("15:04:05"), atomic.LoadInt64(&activeVUs), reqs,
				atomic.LoadInt64(&requestErrs), atomic.LoadInt64(&refreshes), avgLat)
		}
	}
}

// expireTokens overwrites the access token with one the backend rejects.
func expireTokens(ctx context.Context, store client.CredentialStore) {
	ticker := time.NewTicker(*expireEvery)
	defer ticker.Stop()
	last, _ := store.Get(ctx, constraints.AccessTokenKey)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cur, _ := store.Get(ctx, constraints.AccessTokenKey); cur != last && cur != "expired" {
				atomic.AddInt64(&refreshes, 1)
				last = cur
			}
			_ = store.Set(ctx, constraints.AccessTokenKey, "expired")
		}
	}
}

func runVU(ctx context.Context, c *client.Client, id int) {
	atomic.AddInt64(&activeVUs, 1)
	defer atomic.AddInt64(&activeVUs, -1)

	for ctx.Err() == nil {
		start := time.Now()
		var err error
		if id%2 == 0 {
			_, err = c.SearchMeetingRooms(ctx, "", 0, "", 1, 10)
		} else {
			_, err = c.BookingList(ctx, client.SearchBooking{}, 1, 10)
		}
		atomic.AddInt64(&requests, 1)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if atomic.AddInt64(&requestErrs, 1) == 1 {
				fmt.Printf("VU %d error: %v\n", id, err)
			}
			if client.IsSessionTerminated(err) {
				return
			}
			continue
		}
		atomic.AddInt64(&latencySum, time.Since(start).Milliseconds())
		atomic.AddInt64(&latencyCount, 1)
	}
}
