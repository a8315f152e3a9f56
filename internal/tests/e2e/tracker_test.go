//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/pomotrack/apiserver/config"
	"github.com/pomotrack/apiserver/internal/db"
	"github.com/pomotrack/apiserver/internal/server"
	"github.com/pomotrack/apiserver/types"
)

const (
	serverPort = 18080
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	cfg, err := testConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := waitForPostgres(ctx, db.PostgresURL(cfg.Database)); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/health"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown(context.Background())
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown(context.Background())
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestTrackerFlow(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	client := newClient(t)
	name := fmt.Sprintf("user_%d", time.Now().UnixNano())

	env := call(t, client, http.MethodPost, baseURL+"/signup", map[string]string{"name": name, "password": "secret1"}, http.StatusCreated)
	var user types.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Name != name || user.ID == "" {
		t.Fatalf("unexpected user: %+v", user)
	}

	call(t, client, http.MethodPost, baseURL+"/addTask", map[string]any{"name": "write", "num": 3}, http.StatusCreated)
	env = call(t, client, http.MethodPost, baseURL+"/addTask", map[string]any{"name": "review"}, http.StatusCreated)
	tasks := decodeTasks(t, env)
	if len(tasks) != 2 || tasks[0].Name != "write" || tasks[1].TargetCount != 1 {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	env = call(t, client, http.MethodPatch, baseURL+"/updateTask/"+tasks[0].ID, map[string]any{"finish": 2}, http.StatusOK)
	tasks = decodeTasks(t, env)
	if tasks[0].CompletedCount != 2 {
		t.Fatalf("expected finish 2, got %d", tasks[0].CompletedCount)
	}

	env = call(t, client, http.MethodDelete, baseURL+"/deleteTask/"+tasks[1].ID, nil, http.StatusOK)
	if tasks = decodeTasks(t, env); len(tasks) != 1 {
		t.Fatalf("expected 1 task after delete, got %d", len(tasks))
	}

	for i := 0; i < 2; i++ {
		call(t, client, http.MethodPost, baseURL+"/recordAdd", nil, http.StatusCreated)
	}
	env = call(t, client, http.MethodGet, baseURL+"/report", nil, http.StatusOK)
	var report []types.DailyCount
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report) != 7 || report[6].RecordCount != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	env = call(t, client, http.MethodDelete, baseURL+"/deleteAll", nil, http.StatusOK)
	if tasks = decodeTasks(t, env); len(tasks) != 0 {
		t.Fatalf("expected empty list, got %d", len(tasks))
	}

	call(t, client, http.MethodPost, baseURL+"/logout", nil, http.StatusOK)
	call(t, client, http.MethodGet, baseURL+"/getTasks", nil, http.StatusUnauthorized)

	call(t, client, http.MethodPost, baseURL+"/signup", map[string]string{"name": name, "password": "secret2"}, http.StatusConflict)
	call(t, client, http.MethodPost, baseURL+"/login", map[string]string{"name": name, "password": "secret1"}, http.StatusOK)
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func call(t *testing.T, client *http.Client, method, url string, body any, wantStatus int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d (%s)", method, url, wantStatus, resp.StatusCode, env.Error)
	}
	return env
}

func decodeTasks(t *testing.T, env envelope) []types.Task {
	t.Helper()
	var tasks []types.Task
	if err := json.Unmarshal(env.Data, &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	return tasks
}

func testConfig() (config.Config, error) {
	_ = os.Setenv("SESSION_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "pomotrack")
	_ = os.Setenv("DB_PASSWORD", "pomotrack")
	_ = os.Setenv("DB_NAME", "pomotrack")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("AUTO_MIGRATE", "true")
	return config.LoadConfig("")
}

func waitForPostgres(ctx context.Context, dsn string) error {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func startServer(ctx context.Context, cfg config.Config) (*server.Server, error) {
	srv, err := server.New(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
