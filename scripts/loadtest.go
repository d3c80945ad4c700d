package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

var categories = []string{"books", "games", "home", "garden", "toys"}

type LoadTestConfig struct {
	BaseURL       string
	TotalRequests int
	Concurrency   int
	Duration      time.Duration
}

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    int64
	MinLatency      int64
	MaxLatency      int64
	Errors          sync.Map
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "Service base URL")
	requests := flag.Int("requests", 1000, "Total number of requests")
	concurrency := flag.Int("concurrency", 10, "Number of parallel requests")
	duration := flag.Duration("duration", 0, "Test duration (0 = use -requests)")
	operation := flag.String("operation", "create-product", "Operation type: create-product, create-order, list, mixed")
	flag.Parse()

	config := LoadTestConfig{
		BaseURL:       *baseURL,
		TotalRequests: *requests,
		Concurrency:   *concurrency,
		Duration:      *duration,
	}

	fmt.Printf("🚀 Starting load test\n")
	fmt.Printf("URL: %s\n", config.BaseURL)
	fmt.Printf("Operation: %s\n", *operation)
	if config.Duration > 0 {
		fmt.Printf("Duration: %v\n", config.Duration)
	} else {
		fmt.Printf("Requests: %d\n", config.TotalRequests)
	}
	fmt.Printf("Concurrency: %d\n\n", config.Concurrency)

	stats := &Stats{
		MinLatency: int64(^uint64(0) >> 1), // max int64
	}
	client := &http.Client{Timeout: 10 * time.Second}

	var step func(i int64)
	switch *operation {
	case "create-product":
		step = func(i int64) { createProduct(client, config.BaseURL, i, stats) }
	case "create-order":
		step = func(i int64) { createOrder(client, config.BaseURL, i, stats) }
	case "list":
		seedProducts(client, config.BaseURL, 100)
		step = func(i int64) { listProducts(client, config.BaseURL, i, stats) }
	case "mixed":
		seedProducts(client, config.BaseURL, 50)
		step = func(i int64) {
			switch i % 10 {
			case 0, 1, 2, 3, 4, 5:
				listProducts(client, config.BaseURL, i, stats)
			case 6, 7, 8:
				createProduct(client, config.BaseURL, i, stats)
			default:
				createOrder(client, config.BaseURL, i, stats)
			}
		}
	default:
		fmt.Printf("Unknown operation: %s\n", *operation)
		return
	}

	startTime := time.Now()
	runLoad(config, step)
	elapsed := time.Since(startTime)

	printResults(stats, elapsed)
}

// runLoad calls step with an increasing request number, at most
// config.Concurrency at a time, until the request count or duration is reached.
func runLoad(config LoadTestConfig, step func(i int64)) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, config.Concurrency)

	requestCount := int64(0)
	endTime := time.Now().Add(config.Duration)

	for (config.Duration <= 0 || !time.Now().After(endTime)) &&
		(config.Duration != 0 || requestCount < int64(config.TotalRequests)) {
		wg.Add(1)
		semaphore <- struct{}{}
		idx := atomic.AddInt64(&requestCount, 1)

		go func(index int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			step(index)
		}(idx)
	}

	wg.Wait()
}

func productPayload(i int64) map[string]interface{} {
	return map[string]interface{}{
		"name":        fmt.Sprintf("Product-%d-%d", i, time.Now().UnixNano()),
		"description": "load test product",
		"price":       float64(i%500) + 0.99,
		"category":    categories[i%int64(len(categories))],
	}
}

func seedProducts(client *http.Client, baseURL string, n int) {
	created := 0
	for i := 0; i < n; i++ {
		if _, ok := doRequest(client, http.MethodPost, baseURL+"/api/products", productPayload(int64(i))); ok {
			created++
		}
	}

	if created == 0 {
		fmt.Println("❌ Failed to seed products")
		return
	}
	fmt.Printf("✅ Seeded %d products\n\n", created)
}

func createProduct(client *http.Client, baseURL string, i int64, stats *Stats) {
	makeRequest(client, http.MethodPost, baseURL+"/api/products", productPayload(i), stats)
}

func createOrder(client *http.Client, baseURL string, i int64, stats *Stats) {
	payload := map[string]interface{}{
		"customer_name":  fmt.Sprintf("Customer %d", i),
		"customer_email": fmt.Sprintf("customer%d@example.com", i),
		"items": []map[string]interface{}{
			{"product_id": fmt.Sprintf("product-%d", i%100), "quantity": i%5 + 1},
		},
	}

	makeRequest(client, http.MethodPost, baseURL+"/api/orders", payload, stats)
}

func listProducts(client *http.Client, baseURL string, i int64, stats *Stats) {
	url := fmt.Sprintf("%s/api/products?limit=%d", baseURL, i%50+1)
	if i%2 == 0 {
		url += "&category=" + categories[i%int64(len(categories))]
	}
	makeRequest(client, http.MethodGet, url, nil, stats)
}

func makeRequest(client *http.Client, method, url string, payload interface{}, stats *Stats) {
	start := time.Now()
	atomic.AddInt64(&stats.TotalRequests, 1)

	body, err := send(client, method, url, payload)
	if err != nil {
		recordError(stats, err)
		return
	}

	recordLatency(stats, time.Since(start).Milliseconds())
	atomic.AddInt64(&stats.SuccessRequests, 1)
	_ = body
}

func doRequest(client *http.Client, method, url string, payload interface{}) (string, bool) {
	body, err := send(client, method, url, payload)
	return body, err == nil
}

// send returns the response body for 2xx responses and an error otherwise.
func send(client *http.Client, method, url string, payload interface{}) (string, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return "", err
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return "", err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

func recordLatency(stats *Stats, latency int64) {
	atomic.AddInt64(&stats.TotalLatency, latency)

	for {
		old := atomic.LoadInt64(&stats.MinLatency)
		if latency >= old || atomic.CompareAndSwapInt64(&stats.MinLatency, old, latency) {
			break
		}
	}

	for {
		old := atomic.LoadInt64(&stats.MaxLatency)
		if latency <= old || atomic.CompareAndSwapInt64(&stats.MaxLatency, old, latency) {
			break
		}
	}
}

func recordError(stats *Stats, err error) {
	atomic.AddInt64(&stats.FailedRequests, 1)
	val, _ := stats.Errors.LoadOrStore(err.Error(), new(int64))
	atomic.AddInt64(val.(*int64), 1)
}

func printResults(stats *Stats, elapsed time.Duration) {
	total := atomic.LoadInt64(&stats.TotalRequests)
	success := atomic.LoadInt64(&stats.SuccessRequests)
	failed := atomic.LoadInt64(&stats.FailedRequests)
	totalLatency := atomic.LoadInt64(&stats.TotalLatency)
	minLatency := atomic.LoadInt64(&stats.MinLatency)
	maxLatency := atomic.LoadInt64(&stats.MaxLatency)

	if total == 0 {
		fmt.Println("No requests were sent")
		return
	}

	fmt.Printf("\n📊 Load Test Results\n")
	fmt.Printf("═══════════════════════════════════════════════════\n")
	fmt.Printf("Total time:           %v\n", elapsed)
	fmt.Printf("Total requests:       %d\n", total)
	fmt.Printf("Successful:           %d (%.2f%%)\n", success, float64(success)/float64(total)*100)
	fmt.Printf("Failed:               %d (%.2f%%)\n", failed, float64(failed)/float64(total)*100)
	fmt.Printf("Throughput:           %.2f req/sec\n", float64(total)/elapsed.Seconds())

	if success > 0 {
		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Average:            %d ms\n", totalLatency/success)
		fmt.Printf("  Minimum:            %d ms\n", minLatency)
		fmt.Printf("  Maximum:            %d ms\n", maxLatency)
	}

	if failed > 0 {
		fmt.Printf("\n❌ Errors:\n")
		stats.Errors.Range(func(key, value interface{}) bool {
			count := atomic.LoadInt64(value.(*int64))
			fmt.Printf("  [%d] %s\n", count, key.(string))
			return true
		})
	}
	fmt.Printf("═══════════════════════════════════════════════════\n")
}
