package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	appPort = 8091
	benchDB = "bench.db"
)

// window sizes the dashboard offers, plus the unbounded case
var windows = []string{"", "1", "7", "30", "90", "365"}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 200, "Requests per second")
	days := flag.Int("days", 730, "Days of synthetic data to seed")
	cached := flag.Bool("cache", false, "Enable the in-process result cache")
	chaos := flag.Bool("chaos", false, "Simulate random client disconnections")
	flag.Parse()

	fmt.Println("Building application...")
	for _, target := range []string{"server", "seed"} {
		buildCmd := exec.Command("go", "build", "-o", "bin/"+target, "./cmd/"+target)
		buildCmd.Stdout = os.Stdout
		buildCmd.Stderr = os.Stderr
		if err := buildCmd.Run(); err != nil {
			log.Fatalf("Failed to build %s: %v", target, err)
		}
	}

	_ = os.Remove(benchDB)
	defer os.Remove(benchDB)

	fmt.Printf("Seeding %d days of usage...\n", *days)
	seedCmd := exec.Command("./bin/seed", "-dsn", benchDB, "-days", strconv.Itoa(*days), "-seed", "42")
	seedCmd.Stdout = os.Stdout
	seedCmd.Stderr = os.Stderr
	if err := seedCmd.Run(); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	configFile := "bench_config.yaml"
	if err := os.WriteFile(configFile, []byte(benchConfig(*cached)), 0644); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}
	defer os.Remove(configFile)

	fmt.Println("Starting application...")
	cmd := exec.Command("./bin/server")
	cmd.Env = append(os.Environ(), fmt.Sprintf("CONFIG_FILE=%s", configFile))

	logFile, _ := os.Create("bench_server.log")
	defer logFile.Close()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}()

	base := fmt.Sprintf("http://localhost:%d", appPort)
	waitForApp(base + "/ready")

	done := make(chan struct{})
	go monitorResources(cmd.Process.Pid, done)

	fmt.Printf("Running benchmark: %s duration, %d req/s, cache=%t\n", *duration, *rate, *cached)

	targeter := func(t *vegeta.Target) error {
		path := "/total"
		if rand.Intn(2) == 0 {
			path = "/items"
		}
		if w := windows[rand.Intn(len(windows))]; w != "" {
			path += "?days=" + w
		}
		t.Method = http.MethodGet
		t.URL = base + path
		t.Header = http.Header{"Accept": []string{"application/json"}}
		return nil
	}

	if *chaos {
		fmt.Println("CHAOS MODE ENABLED: Starting Chaos Monkey sidecar...")
		concurrency := *rate / 10
		if concurrency < 5 {
			concurrency = 5
		}
		if concurrency > 50 {
			concurrency = 50
		}
		go startChaosMonkey(base+"/items", concurrency, done)
	}

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Benchmark") {
		metrics.Add(res)
	}
	metrics.Close()

	close(done)

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Println("Status codes:    ", metrics.StatusCodes)
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")

		seen := make(map[string]bool)
		for _, msg := range metrics.Errors {
			if !seen[msg] && len(seen) < 5 {
				fmt.Println(msg)
				seen[msg] = true
			}
		}
	}
}

// startChaosMonkey abandons /items requests mid-flight so cancelled queries
// are exercised under load.
func startChaosMonkey(url string, concurrency int, done chan struct{}) {
	fmt.Printf("Starting Chaos Monkey with %d concurrent disrupters (random disconnects 1-50ms)\n", concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			client := &http.Client{}

			for {
				select {
				case <-done:
					return
				default:
					timeout := time.Duration(rand.Intn(50)+1) * time.Millisecond

					ctx, cancel := context.WithTimeout(context.Background(), timeout)
					req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

					resp, err := client.Do(req)
					if err == nil {
						resp.Body.Close()
					}
					cancel()

					time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()
}

func monitorResources(pid int, done chan struct{}) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	fmt.Println("\n--- Resource Usage (ps) ---")
	fmt.Printf("% -10s % -10s % -10s\n", "Time", "RSS(MB)", "CPU(%)")

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			out, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "rss=,%cpu=").Output()
			if err != nil {
				continue
			}
			fields := strings.Fields(string(out))
			if len(fields) < 2 {
				continue
			}
			rss, _ := strconv.ParseFloat(fields[0], 64)
			cpu, _ := strconv.ParseFloat(fields[1], 64)

			fmt.Printf("% -10s % -10.2f % -10.2f\n",
				time.Now().Format("15:04:05"),
				rss/1024,
				cpu,
			)
		}
	}
}

func waitForApp(url string) {
	for i := 0; i < 20; i++ {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatal("App timed out")
}

func benchConfig(cached bool) string {
	return fmt.Sprintf(`
server:
  port: "%d"
  env: production
storage:
  driver: sqlite
  dsn: "file:%s?_journal_mode=WAL&_busy_timeout=5000"
cache:
  enabled: %t
  ttl: 30s
log:
  level: "error"
  format: "json"
`, appPort, benchDB, cached)
}
