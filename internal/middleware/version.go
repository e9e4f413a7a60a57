package middleware

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"restopos/internal/common"

	"github.com/labstack/echo/v4"
)

const (
	VersionActive     = "active"
	VersionDeprecated = "deprecated"
	VersionSunset     = "sunset"
)

// APIVersion describes one URL version prefix.
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"`
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {Version: "v1", Status: VersionActive, Message: "Current stable API version"},
		},
		defaultVersion: "v1",
	}
}

// VersionHeader stamps responses with the API version and any deprecation notice.
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if ver, ok := vm.supportedVersions[version]; ok {
				if ver.Status == VersionDeprecated && ver.SunsetDate != nil {
					h.Set("X-API-Deprecated", "true")
					h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
					h.Set("Warning", `299 restopos "This API version is deprecated and will be removed on `+ver.SunsetDate.Format("2006-01-02")+`"`)
				}
				if ver.Message != "" {
					h.Set("X-API-Message", ver.Message)
				}
			}
			return next(c)
		}
	}
}

// VersionRoute creates the route group for version.
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(vm.VersionHeader(version))
	return group
}

// APIVersionResolver rejects requests for unknown or retired versions.
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := extractVersionFromPath(c.Request().URL.Path)
			if version == "" {
				c.Set("api_version", vm.defaultVersion)
				return next(c)
			}
			ver, ok := vm.supportedVersions[version]
			if !ok || ver.Status == VersionSunset {
				return c.JSON(http.StatusNotFound, common.CreateErrorResponse(string(common.KindNotFound), "Unsupported API version",
					map[string]string{"supported_versions": strings.Join(vm.GetSupportedVersions(), ", ")}))
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// extractVersionFromPath returns "vN" for paths starting with /vN/ or equal to /vN.
func extractVersionFromPath(path string) string {
	if !strings.HasPrefix(path, "/v") {
		return ""
	}
	segment, _, _ := strings.Cut(path[1:], "/")
	digits := segment[1:]
	if digits == "" || digits[0] == '0' {
		return ""
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return segment
}

// GetSupportedVersions lists the versions that still answer requests.
func (vm *VersionMiddleware) GetSupportedVersions() []string {
	versions := make([]string, 0, len(vm.supportedVersions))
	for version, info := range vm.supportedVersions {
		if info.Status != VersionSunset {
			versions = append(versions, version)
		}
	}
	sort.Strings(versions)
	return versions
}

func (vm *VersionMiddleware) AddVersion(version, status, message string, sunsetDate *time.Time) {
	vm.supportedVersions[version] = APIVersion{
		Version:    version,
		Status:     status,
		SunsetDate: sunsetDate,
		Message:    message,
	}
}
