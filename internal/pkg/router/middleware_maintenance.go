package router

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/riskguard/internal/pkg/config"
)

// maintenanceRoutes reads app.maintenance.endpoints as "METHOD /path" or "/path" entries.
func maintenanceRoutes(cfg config.Config) map[string]struct{} {
	if cfg == nil {
		return map[string]struct{}{}
	}

	entries := lo.FilterMap(cfg.GetArray("app.maintenance.endpoints"), func(item string, _ int) (string, bool) {
		item = strings.Join(strings.Fields(item), " ")
		return item, item != ""
	})

	return lo.SliceToMap(entries, func(item string) (string, struct{}) {
		return item, struct{}{}
	})
}

func middlewareMaintenance(cfg config.Config) Middleware {
	routes := maintenanceRoutes(cfg)

	return func(next http.Handler) http.Handler {
		if len(routes) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			_, byPath := routes[route]
			_, byMethod := routes[r.Method+" "+route]
			if byPath || byMethod {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
