package health

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"go.uber.org/zap"
)

const (
	// Version is reported on the status page and by /health.
	Version = "v1.0.0"
	// ClockLayout formats the current time on the status page.
	ClockLayout = "2006-01-02 15:04:05"

	TextHTML        = "text/html"
	TextCSS         = "text/css"
	ApplicationJSON = "application/json"
)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Bot Status</title>
  <style>
    body {
      font-family: "Segoe UI", Arial, sans-serif;
      background: #f4f6f8;
      color: #1f2933;
      display: flex;
      justify-content: center;
      padding-top: 60px;
    }
    .card {
      background: #ffffff;
      border-radius: 8px;
      box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
      padding: 24px 32px;
      min-width: 320px;
    }
    .status { color: #1f7a1f; font-weight: bold; font-size: 20px; }
    .row { margin-top: 12px; }
    .label { color: #616e7c; }
  </style>
</head>
<body>
  <div class="card">
    <div class="status">&#9679; ONLINE</div>
    <div class="row"><span class="label">Uptime:</span> {{.Uptime}}</div>
    <div class="row"><span class="label">Time:</span> {{.Now}}</div>
    <div class="row"><span class="label">Version:</span> {{.Version}}</div>
  </div>
</body>
</html>
`))

// statusData fills the status page template.
type statusData struct {
	Uptime  string
	Now     string
	Version string
}

// healthResponse is the JSON body of GET /health.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Version       string `json:"version"`
}

// Handler serves liveness information about the running bot.
type Handler struct {
	startTime time.Time
	zone      *time.Location
	now       func() time.Time
	minify    *minify.M
	logger    *zap.Logger
}

// NewHandler creates a handler reporting uptime since startTime. The status page
// clock is shown in a fixed zone offsetHours from UTC. A nil now uses time.Now.
func NewHandler(startTime time.Time, offsetHours int, now func() time.Time, logger *zap.Logger) *Handler {
	if now == nil {
		now = time.Now
	}

	m := minify.New()
	m.AddFunc(TextHTML, html.Minify)
	m.AddFunc(TextCSS, css.Minify)

	return &Handler{
		startTime: startTime,
		zone:      time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*60*60),
		now:       now,
		minify:    m,
		logger:    logger.Named("health"),
	}
}

// Serve handles GET / with a minified HTML status page.
func (h *Handler) Serve(w http.ResponseWriter, _ *http.Request) {
	now := h.now()

	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, statusData{
		Uptime:  FormatUptime(now.Sub(h.startTime)),
		Now:     now.In(h.zone).Format(ClockLayout),
		Version: Version,
	}); err != nil {
		h.logger.Error("Failed to render status page", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	page, err := h.minify.Bytes(TextHTML, buf.Bytes())
	if err != nil {
		h.logger.Warn("Failed to minify status page", zap.Error(err))
		page = buf.Bytes()
	}

	w.Header().Set("Content-Type", TextHTML+"; charset=utf-8")
	_, _ = w.Write(page)
}

// ServeJSON handles GET /health.
//
//	{"status":"ok","uptime_seconds":42,"version":"v1.0.0"}
func (h *Handler) ServeJSON(w http.ResponseWriter, _ *http.Request) {
	body, err := sonic.Marshal(healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(h.now().Sub(h.startTime) / time.Second),
		Version:       Version,
	})
	if err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ApplicationJSON)
	_, _ = w.Write(body)
}

// FormatUptime renders d as "Nd Nh Nm Ns". Negative durations read as zero.
func FormatUptime(d time.Duration) string {
	total := max(int64(d/time.Second), 0)

	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}
