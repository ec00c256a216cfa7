// Command smoke runs post-deploy checks against a running portal instance.
// It logs in with the provided admin credentials, then issues every request
// listed in the targets file and fails when a critical endpoint misbehaves.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type target struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	WantStatus int    `json:"wantStatus"`
	Auth       bool   `json:"auth"`
	Critical   bool   `json:"critical"`
}

type targetsFile struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target   target
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		baseURL     string
		targetsPath string
		email       string
		password    string
		timeout     time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&email, "email", os.Getenv("SMOKE_ADMIN_EMAIL"), "Admin email for authenticated targets")
	flag.StringVar(&password, "password", os.Getenv("SMOKE_ADMIN_PASSWORD"), "Admin password for authenticated targets")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}

	token := ""
	if needsAuth(targets) {
		token, err = login(client, baseURL, email, password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	var (
		results  []result
		failures int
	)
	for _, tgt := range targets {
		res := check(client, baseURL, token, tgt)
		if (res.Err != nil || res.Status != tgt.WantStatus) && tgt.Critical {
			failures++
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Critical failures: %d\n", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func needsAuth(targets []target) bool {
	for _, t := range targets {
		if t.Auth {
			return true
		}
	}
	return false
}

func login(client *http.Client, baseURL, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("admin credentials required for authenticated targets")
	}
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := client.Post(joinURL(baseURL, "/api/login"), "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected login status %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return body.Token, nil
}

func check(client *http.Client, baseURL, token string, tgt target) result {
	res := result{Target: tgt}

	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequest(method, joinURL(baseURL, tgt.Path), nil)
	if err != nil {
		res.Err = err
		return res
	}
	if tgt.Auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode
	return res
}

func joinURL(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}

func printReport(results []result) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if res.Status != res.Target.WantStatus {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  Status: %d (want %d) in %s | Critical: %t\n", res.Status, res.Target.WantStatus, res.Duration, res.Target.Critical)
	}
}
