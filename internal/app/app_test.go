package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

const testConfig = `
app:
  tz: UTC
  server:
    max_goroutine: 32
    http:
      address: 127.0.0.1:0
instrument:
  enabled: false
  service_name: riskguard-test
hash:
  hmac:
    secret: app-test-hmac-secret
uid:
  node_id: 7
jwt:
  secret: app-test-jwt-secret-that-is-long-enough-for-hs512-signing-0123456789
  issuer: riskguard
  audiences: [riskguard]
  ttl_minutes: 15
modules:
  identity:
    otp:
      store: memory
    audit:
      sinks: [file]
      file_path: %AUDIT%
`

func startApp(t *testing.T) (*App, string, string) {
	t.Helper()

	dir := t.TempDir()
	auditPath := filepath.Join(dir, "audit.jsonl")
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(strings.ReplaceAll(testConfig, "%AUDIT%", auditPath)), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)

	a := New()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	a.Serve(l)

	return a, "http://" + l.Addr().String(), auditPath
}

func doJSON(t *testing.T, method, url string, payload any, token string) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			t.Fatalf("encode json: %v", err)
		}
		body = buf
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp.StatusCode, respBody
}

func decodeSuccess(t *testing.T, body []byte, out any) successEnvelope {
	t.Helper()

	var env successEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode success envelope: %v", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode success data: %v", err)
		}
	}

	return env
}

func auditActions(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer f.Close()

	var actions []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("audit line %q: %v", sc.Text(), err)
		}
		actions = append(actions, ev.Action)
	}
	return actions
}

func TestApp(t *testing.T) {
	// Arrange
	a, base, auditPath := startApp(t)

	type loginData struct {
		Status       string `json:"status"`
		MfaRequired  bool   `json:"mfa_required"`
		Token        string `json:"token"`
		RiskAnalysis struct {
			Score int    `json:"score"`
			Level string `json:"level"`
		} `json:"risk_analysis"`
	}

	t.Run("Health", func(t *testing.T) {
		// Act
		status, _ := doJSON(t, http.MethodGet, base+"/health", nil, "")

		// Assert
		if status != http.StatusOK {
			t.Fatalf("status = %d", status)
		}
	})

	t.Run("TrustedLoginOpensSession", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodPost, base+"/api/v1/identity/login", map[string]any{
			"username":          "alice",
			"password":          "secret",
			"known_device":      true,
			"known_location":    true,
			"login_time_normal": true,
		}, "")

		// Assert
		if status != http.StatusOK {
			t.Fatalf("login status = %d body=%s", status, body)
		}
		var data loginData
		decodeSuccess(t, body, &data)
		if data.MfaRequired || data.Token == "" || data.RiskAnalysis.Level != "LOW" {
			t.Fatalf("unexpected login data %+v", data)
		}

		status, body = doJSON(t, http.MethodGet, base+"/api/v1/identity/session", nil, data.Token)
		if status != http.StatusOK {
			t.Fatalf("session status = %d body=%s", status, body)
		}
	})

	t.Run("RiskyLoginChallenges", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodPost, base+"/api/v1/identity/login", map[string]any{
			"username":          "bob",
			"password":          "secret",
			"login_time_normal": true,
		}, "")

		// Assert
		if status != http.StatusOK {
			t.Fatalf("login status = %d body=%s", status, body)
		}
		var data loginData
		decodeSuccess(t, body, &data)
		if !data.MfaRequired || data.Token != "" || data.RiskAnalysis.Score != 50 || data.RiskAnalysis.Level != "MEDIUM" {
			t.Fatalf("unexpected login data %+v", data)
		}
	})

	t.Run("VerifyWithoutChallengeRejected", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodPost, base+"/api/v1/identity/verify-otp", map[string]any{
			"username": "carol",
			"otp_code": "123456",
		}, "")

		// Assert
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d body=%s", status, body)
		}
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			t.Fatalf("decode error envelope: %v", err)
		}
		if env.Message != "invalid or expired code" {
			t.Fatalf("message = %q", env.Message)
		}
	})

	t.Run("StopDrainsAudit", func(t *testing.T) {
		// Act
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.Stop(ctx)

		// Assert
		counts := map[string]int{}
		for _, action := range auditActions(t, auditPath) {
			counts[action]++
		}
		if counts["LOGIN_ATTEMPT"] != 2 || counts["MFA_CHALLENGE"] != 1 || counts["MFA_FAILED"] != 1 {
			t.Fatalf("audit counts = %v", counts)
		}
	})
}
