package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type leadRequest struct {
	FirstName            string   `json:"firstName"`
	LastName             string   `json:"lastName"`
	Email                string   `json:"email"`
	LinkedinURL          string   `json:"linkedin"`
	CountryOfCitizenship string   `json:"countryOfCitizenship"`
	InterestedVisas      []string `json:"interestedVisas"`
	OpenInput            string   `json:"openInput"`
}

type listResponse struct {
	Success    bool `json:"success"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the lead service")
	token := flag.String("token", "", "Admin JWT used to verify the run (see leadctl token)")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	total := flag.Int("n", 200, "Total number of leads to submit")
	rps := flag.Int("rps", 50, "Requests per second limit")
	spreadIPs := flag.Bool("spread-ips", false, "Send one X-Forwarded-For address per worker (server must list this host in TRUSTED_PROXIES)")
	flag.Parse()

	runID := uuid.NewString()[:8]
	log.Printf("Starting load test on %s (run %s)", *baseURL, runID)
	log.Printf("Concurrency: %d, Leads: %d, RPS: %d", *concurrency, *total, *rps)

	var wg sync.WaitGroup
	var successCount, limitedCount, errorCount atomic.Int64
	var next atomic.Int64

	ctx := context.Background()
	limiter := rate.NewLimiter(rate.Limit(*rps), *concurrency)
	client := &http.Client{Timeout: 5 * time.Second}
	start := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				n := next.Add(1)
				if n > int64(*total) {
					return
				}
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				body, _ := json.Marshal(leadRequest{
					FirstName:            "Load",
					LastName:             fmt.Sprintf("Tester %d", n),
					Email:                fmt.Sprintf("load+%s-%d@example.com", runID, n),
					LinkedinURL:          "https://linkedin.com/in/load-tester",
					CountryOfCitizenship: "india",
					InterestedVisas:      []string{"O-1"},
					OpenInput:            fmt.Sprintf("worker %d", workerID),
				})

				req, err := http.NewRequestWithContext(ctx, http.MethodPost, *baseURL+"/api/leads", bytes.NewReader(body))
				if err != nil {
					continue // Should not happen
				}
				req.Header.Set("Content-Type", "application/json")
				if *spreadIPs {
					req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.%d.%d", workerID/250, workerID%250+1))
				}

				resp, err := client.Do(req)
				if err != nil {
					errorCount.Add(1)
					continue
				}
				resp.Body.Close()

				switch resp.StatusCode {
				case http.StatusCreated:
					successCount.Add(1)
				case http.StatusTooManyRequests:
					limitedCount.Add(1)
				default:
					errorCount.Add(1)
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	sent := successCount.Load() + limitedCount.Load() + errorCount.Load()
	log.Println("Load test finished.")
	log.Printf("Total Requests: %d in %s (%.2f rps)", sent, elapsed.Round(time.Millisecond), float64(sent)/elapsed.Seconds())
	log.Printf("Created (201): %d", successCount.Load())
	log.Printf("Rate limited (429): %d", limitedCount.Load())
	log.Printf("Errors: %d", errorCount.Load())

	if *token == "" {
		log.Println("No -token given, skipping verification.")
		return
	}

	stored, err := countRunLeads(client, *baseURL, *token, runID)
	if err != nil {
		log.Fatalf("Verification failed: %v", err)
	}
	if stored != int(successCount.Load()) {
		log.Fatalf("Lost writes: %d created but %d stored", successCount.Load(), stored)
	}
	log.Printf("Verified: all %d created leads are stored.", stored)
}

// countRunLeads counts the stored leads whose email carries runID.
func countRunLeads(client *http.Client, baseURL, token, runID string) (int, error) {
	q := url.Values{"search": {"load+" + runID}, "limit": {"1"}}
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/leads?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("list returned %s", resp.Status)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body.Pagination.Total, nil
}
