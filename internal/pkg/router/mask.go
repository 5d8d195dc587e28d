package router

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/shandysiswandi/riskguard/internal/pkg/config"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
)

const masked = "***"

// masker redacts configured keys from headers and bodies before they reach the log.
type masker struct {
	keys map[string]struct{}
}

func newMasker(cfg config.Config) masker {
	var fields []string
	if cfg != nil {
		fields = cfg.GetArray("instrument.log_mask_fields")
	}

	fields = append(fields, instrument.DefaultMaskFields...)
	keys := lo.SliceToMap(
		lo.Compact(lo.Map(fields, func(f string, _ int) string { return strings.ToLower(strings.TrimSpace(f)) })),
		func(f string) (string, struct{}) { return f, struct{}{} },
	)

	return masker{keys: keys}
}

func (m masker) hit(key string) bool {
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

func (m masker) headers(h http.Header) http.Header {
	if len(m.keys) == 0 {
		return h
	}

	out := h.Clone()
	for key := range out {
		if m.hit(key) {
			out.Set(key, masked)
		}
	}
	return out
}

func (m masker) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.hit(k) {
				out[k] = masked
				continue
			}
			out[k] = m.value(inner)
		}
		return out
	case []any:
		return lo.Map(val, func(inner any, _ int) any { return m.value(inner) })
	default:
		return v
	}
}

// body renders a captured payload for logging: JSON and form bodies are
// masked, other UTF-8 text is logged as-is, binary is omitted.
func (m masker) body(contentType string, raw []byte, truncated bool) any {
	if len(raw) == 0 {
		return nil
	}

	var out any
	var doc any
	switch {
	case json.Unmarshal(raw, &doc) == nil:
		out = m.value(doc)
	case strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded"):
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			out = string(raw)
			break
		}
		form := make(map[string]any, len(values))
		for k, v := range values {
			switch {
			case m.hit(k):
				form[k] = masked
			case len(v) == 1:
				form[k] = v[0]
			default:
				form[k] = v
			}
		}
		out = form
	case utf8.Valid(raw):
		out = string(raw)
	default:
		return "<binary body omitted>"
	}

	if truncated {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}
