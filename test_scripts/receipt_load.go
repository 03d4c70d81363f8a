package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// generateRandomName generates a random 6-letter name
func generateRandomName() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	name := make([]byte, 6)
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))]
	}
	// Capitalize first letter
	name[0] = name[0] - 32
	return string(name)
}

// post sends a JSON body and decodes the created document
func post(ctx context.Context, client *http.Client, url string, body interface{}) (map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var doc map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}

// runReceipt creates one customer, two products and a receipt joining them
func runReceipt(ctx context.Context, client *http.Client, baseURL string) error {
	name := generateRandomName()
	customer, err := post(ctx, client, baseURL+"/customer", map[string]string{
		"firstname": name,
		"lastname":  generateRandomName(),
	})
	if err != nil {
		return fmt.Errorf("customer: %w", err)
	}

	productIDs := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		product, err := post(ctx, client, baseURL+"/product", map[string]interface{}{
			"name":  name + "-item-" + strconv.Itoa(i),
			"price": float64(rand.Intn(10000)) / 100,
		})
		if err != nil {
			return fmt.Errorf("product: %w", err)
		}
		productIDs = append(productIDs, product["id"].(string))
	}

	_, err = post(ctx, client, baseURL+"/receipt", map[string]interface{}{
		"customerid": customer["id"],
		"productids": productIDs,
	})
	if err != nil {
		return fmt.Errorf("receipt: %w", err)
	}
	return nil
}

func main() {
	// Check command line arguments
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run test_scripts/receipt_load.go <number_of_receipts> [server_url] [concurrency]")
		fmt.Println("Example: go run test_scripts/receipt_load.go 1000")
		fmt.Println("Example: go run test_scripts/receipt_load.go 1000 http://localhost:3000 16")
		os.Exit(1)
	}

	numReceipts, err := strconv.Atoi(os.Args[1])
	if err != nil || numReceipts <= 0 {
		fmt.Printf("Error: Invalid number of receipts '%s'. Please provide a positive integer.\n", os.Args[1])
		os.Exit(1)
	}

	serverURL := "http://localhost:3000"
	if len(os.Args) >= 3 {
		serverURL = os.Args[2]
	}

	concurrency := 8
	if len(os.Args) >= 4 {
		if concurrency, err = strconv.Atoi(os.Args[3]); err != nil || concurrency <= 0 {
			fmt.Printf("Error: Invalid concurrency '%s'.\n", os.Args[3])
			os.Exit(1)
		}
	}

	fmt.Printf("Starting load test: %d receipts against %s with %d workers\n", numReceipts, serverURL, concurrency)

	client := &http.Client{Timeout: 30 * time.Second}
	startTime := time.Now()
	var successCount, errorCount atomic.Int64

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)
	for i := 0; i < numReceipts; i++ {
		i := i
		g.Go(func() error {
			if err := runReceipt(ctx, client, serverURL); err != nil {
				errorCount.Add(1)
				fmt.Printf("Error on receipt %d: %v\n", i+1, err)
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	// Final statistics
	totalTime := time.Since(startTime)
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOAD TEST COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Receipts attempted:  %d\n", numReceipts)
	fmt.Printf("Successful:          %d\n", successCount.Load())
	fmt.Printf("Failed:              %d\n", errorCount.Load())
	fmt.Printf("Total time:          %v\n", totalTime)
	fmt.Printf("Average rate:        %.2f receipts/sec\n", float64(numReceipts)/totalTime.Seconds())

	if errorCount.Load() > 0 {
		os.Exit(1)
	}
}
