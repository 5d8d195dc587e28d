package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/riskguard/internal/pkg/config"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
	"github.com/shandysiswandi/riskguard/internal/pkg/jwt"
)

type stubVerifier struct {
	claims jwt.Claims
	err    error
}

func (s stubVerifier) Generate(jwt.Grant) (string, error) { return "", nil }

func (s stubVerifier) Verify(string) (jwt.Claims, error) { return s.claims, s.err }

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRouter_Status(t *testing.T) {
	ro := NewRouter(Config{})

	for _, path := range []string{"/", "/health"} {
		t.Run(path, func(t *testing.T) {
			// Arrange
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()

			// Act
			ro.ServeHTTP(rec, req)

			// Assert
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			body := decode(t, rec)
			if body["status"] != "System Operational" || body["service"] != "Risk-Based MFA Backend" {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

type greeting struct {
	Name string `json:"name"`
}

func (greeting) Message() string { return "hello" }
func (greeting) StatusCode() int { return http.StatusCreated }

func TestRouter_Endpoint(t *testing.T) {
	t.Run("SuccessEnvelope", func(t *testing.T) {
		// Arrange
		ro := NewRouter(Config{UUID: fixedID("cid-1")})
		ro.POST("/greet", func(r *Request) (any, error) {
			var in greeting
			if err := r.DecodeBody(&in); err != nil {
				return nil, err
			}
			return in, nil
		})
		req := httptest.NewRequest(http.MethodPost, "/greet", strings.NewReader(`{"name":"alice"}`))
		rec := httptest.NewRecorder()

		// Act
		ro.ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if got := rec.Header().Get(HeaderCorrelationID); got != "cid-1" {
			t.Fatalf("expected correlation id header, got %q", got)
		}
		body := decode(t, rec)
		data, _ := body["data"].(map[string]any)
		if body["message"] != "hello" || data["name"] != "alice" {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("UnknownFieldIsBadRequest", func(t *testing.T) {
		ro := NewRouter(Config{})
		ro.POST("/greet", func(r *Request) (any, error) {
			var in greeting
			return nil, r.DecodeBody(&in)
		})
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/greet", strings.NewReader(`{"nope":1}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("BusinessError", func(t *testing.T) {
		ro := NewRouter(Config{})
		ro.POST("/deny", func(*Request) (any, error) {
			return nil, goerror.NewBusiness("invalid or expired code", goerror.CodeUnauthorized)
		})
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deny", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if body := decode(t, rec); body["message"] != "invalid or expired code" {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("PlainErrorIsInternal", func(t *testing.T) {
		ro := NewRouter(Config{})
		ro.GET("/boom", func(*Request) (any, error) { return nil, errors.New("db down") })
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if body := decode(t, rec); body["message"] != "Internal server error" {
			t.Fatalf("unexpected body %v", body)
		}
	})

	t.Run("ServerErrorLogsCause", func(t *testing.T) {
		// Arrange
		var logs bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
		t.Cleanup(func() { slog.SetDefault(prev) })

		ro := NewRouter(Config{})
		ro.GET("/store", func(*Request) (any, error) { return nil, goerror.NewServer(errors.New("otp store down")) })
		ro.POST("/deny", func(*Request) (any, error) {
			return nil, goerror.NewBusiness("invalid or expired code", goerror.CodeUnauthorized)
		})
		rec := httptest.NewRecorder()

		// Act
		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/store", nil))
		ro.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/deny", nil))

		// Assert
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if body := decode(t, rec); body["message"] != "Internal server error" {
			t.Fatalf("expected the cause to stay out of the response, got %v", body)
		}
		if n := strings.Count(logs.String(), `"msg":"handler failed"`); n != 1 {
			t.Fatalf("expected one handler failure log, got %d in %s", n, logs.String())
		}
		if !strings.Contains(logs.String(), "otp store down") {
			t.Fatalf("expected the cause in the log, got %s", logs.String())
		}
	})

	t.Run("PanicRecovered", func(t *testing.T) {
		ro := NewRouter(Config{})
		ro.GET("/panic", func(*Request) (any, error) { panic("kaboom") })
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		ro := NewRouter(Config{})
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestRouter_Authenticated(t *testing.T) {
	handler := func(r *Request) (any, error) {
		return map[string]string{"sub": jwt.GetAuth(r.Context()).Subject}, nil
	}

	t.Run("MissingToken", func(t *testing.T) {
		ro := NewRouter(Config{JWT: stubVerifier{}})
		ro.GET("/me", handler, ro.Authenticated())
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("InvalidToken", func(t *testing.T) {
		ro := NewRouter(Config{JWT: stubVerifier{err: jwt.ErrTokenExpired}})
		ro.GET("/me", handler, ro.Authenticated())
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()

		ro.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("ValidToken", func(t *testing.T) {
		// Arrange
		claims := jwt.Claims{}
		claims.Subject = "alice"
		ro := NewRouter(Config{JWT: stubVerifier{claims: claims}})
		ro.GET("/me", handler, ro.Authenticated())
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "bearer abc")
		rec := httptest.NewRecorder()

		// Act
		ro.ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data, _ := decode(t, rec)["data"].(map[string]any)
		if data["sub"] != "alice" {
			t.Fatalf("unexpected data %v", data)
		}
	})
}

func TestRouter_Maintenance(t *testing.T) {
	// Arrange
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  maintenance:\n    endpoints: [\"POST /down\"]\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ro := NewRouter(Config{Config: cfg})
	ro.POST("/down", func(*Request) (any, error) { return map[string]string{}, nil })
	ro.GET("/down", func(*Request) (any, error) { return map[string]string{}, nil })

	// Act
	post := httptest.NewRecorder()
	ro.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/down", nil))
	get := httptest.NewRecorder()
	ro.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/down", nil))

	// Assert
	if post.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for POST, got %d", post.Code)
	}
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", get.Code)
	}
}

func TestMasker(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("instrument:\n  log_mask_fields: [password, OTP_Code]\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	m := newMasker(cfg)

	got, _ := m.body("application/json", []byte(`{"username":"a","password":"p","nested":{"otp_code":"123456"}}`), false).(map[string]any)
	if got["password"] != masked || got["username"] != "a" {
		t.Fatalf("unexpected masked body %v", got)
	}
	if nested, _ := got["nested"].(map[string]any); nested["otp_code"] != masked {
		t.Fatalf("expected nested otp_code masked, got %v", nested)
	}

	form, _ := m.body("application/x-www-form-urlencoded", []byte("password=x&user=y"), false).(map[string]any)
	if form["password"] != masked || form["user"] != "y" {
		t.Fatalf("unexpected masked form %v", form)
	}

	h := http.Header{}
	h.Set("Password", "x")
	if m.headers(h).Get("Password") != masked {
		t.Fatal("expected header masked")
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mw("a"), nil, mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,h" {
		t.Fatalf("unexpected order %v", order)
	}
}
