package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Export a small snapshot
	fmt.Println("1. Exporting snapshot...")
	payload := map[string]any{
		"entities": []map[string]any{
			{"title": "Siddhartha", "id": "e1", "human_readable_id": 0, "type": "PERSON"},
			{"title": "Govinda", "id": "e2", "human_readable_id": 1, "type": "PERSON"},
		},
		"relationships": []map[string]any{
			{"source": "Siddhartha", "target": "Govinda", "weight": 2.0, "description": "lifelong friend"},
		},
	}

	if !sendRequest("POST", "/export", payload) {
		fmt.Println("FAILED: Export snapshot")
		os.Exit(1)
	}
	fmt.Println("PASSED: Export snapshot")

	// 2. Read datasets back
	fmt.Println("2. Loading datasets...")
	for _, kind := range []string{"entities", "relationships"} {
		if !sendRequest("GET", "/datasets/"+kind, nil) {
			fmt.Printf("FAILED: Load %s\n", kind)
			os.Exit(1)
		}
		fmt.Printf("PASSED: Load %s\n", kind)
	}
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
