package notifier

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/automute/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	t.Cleanup(func() { userConfigDirFunc = old })
	userConfigDirFunc = func() (string, error) { return dir, nil }
	return dir
}

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
}

func TestGetTrayAppConfigDir(t *testing.T) {
	base := stubConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)

	dir, err := GetTrayAppConfigDir()
	if err != nil || dir != trayDir {
		t.Fatalf("expected %s, got %s err=%v", trayDir, dir, err)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := filepath.Join(base, "custom")
	settings := `{"settings": {"lockfile_dir": "` + custom + `"}}`
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	dir, err = GetTrayAppConfigDir()
	if err != nil || dir != custom {
		t.Errorf("expected %s, got %s err=%v", custom, dir, err)
	}
}

func TestLocateTray(t *testing.T) {
	lockfile := filepath.Join(t.TempDir(), constants.NotifierLockfileName)

	if _, err := locateTray(lockfile); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("expected not running for missing lockfile, got %v", err)
	}

	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    string
	}{
		{name: "two parts", content: "8080|12345", wantErr: "malformed"},
		{name: "garbage", content: "invalid", wantErr: "malformed"},
		{name: "empty secret", content: "8080|12345|", wantErr: "secret"},
		{name: "empty port", content: "|12345|s3cret", wantErr: "port"},
		{name: "port out of range", content: "99999|12345|s3cret", wantErr: "range"},
		{name: "bad pid", content: "8080|abc|s3cret", wantErr: "process ID"},
		{name: "process gone", content: "8080|12345|s3cret", wantErr: "not running"},
		{name: "wrong executable", content: "8080|12345|s3cret", executable: "other-app", wantErr: "is not"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProcess(t, tt.executable)
			if err := os.WriteFile(lockfile, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := locateTray(lockfile)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	stubProcess(t, "automute-tray")
	_ = os.WriteFile(lockfile, []byte("8080|12345|s3cret\n"), 0644)
	got, err := locateTray(lockfile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.port != 8080 || got.secret != "s3cret" {
		t.Errorf("unexpected tray %+v", got)
	}
}

func newTrayServer(t *testing.T, received *WebhookPayload) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("X-Automute-Secret") != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if received.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func serverPort(t *testing.T, server *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return port
}

func TestSend(t *testing.T) {
	var received WebhookPayload
	server := newTrayServer(t, &received)
	port := serverPort(t, server)
	n := New()

	if err := n.send(tray{port: port, secret: "test-secret"}, WebhookPayload{Text: "hello"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if received.Text != "hello" {
		t.Errorf("expected payload text hello, got %q", received.Text)
	}
	if err := n.send(tray{port: port, secret: "wrong"}, WebhookPayload{Text: "hello"}); err == nil {
		t.Error("expected error for wrong secret")
	}
	if err := n.send(tray{port: port, secret: "test-secret"}, WebhookPayload{Text: "fail"}); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestNotifyEndToEnd(t *testing.T) {
	var received WebhookPayload
	server := newTrayServer(t, &received)
	base := stubConfigDir(t)
	stubProcess(t, "automute-tray")

	trayDir := filepath.Join(base, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	lock := strconv.Itoa(serverPort(t, server)) + "|4242|test-secret"
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(lock), 0644); err != nil {
		t.Fatal(err)
	}

	if err := New().Notify("Quick timer could not start"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if received.Title != constants.AppName || received.DurationMs != constants.NotificationDurationMs {
		t.Errorf("unexpected payload %+v", received)
	}
}
