package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/wind-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"mps": func(cmps int) string {
		return fmt.Sprintf("%.2f", float64(cmps)/100)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Wind Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.reading { color: green; font-weight: bold; }
.stalled { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Wind Sensor</h1>

<h2>Wind</h2>
<table>
<tr><th>Speed</th><td class="{{if .Output.Stalled}}stalled{{else}}reading{{end}}">{{if .Output.Stalled}}stalled{{else}}{{mps .Output.SpeedCmps}} m/s{{end}}</td></tr>
<tr><th>Direction</th><td>{{.Output.DirectionDeg}}&deg;</td></tr>
<tr><th>Rotation rate</th><td>{{.Output.RotationRate}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} / {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Decode cycles</th><td>{{.Counts.Cycles}}</td></tr>
<tr><th>Stalls</th><td>{{.Counts.Stalls}}</td></tr>
<tr><th>Speed rejected</th><td>{{.Counts.SpeedRejected}}</td></tr>
<tr><th>Direction rejected</th><td>{{.Counts.DirRejected}}</td></tr>
<tr><th>Ordering faults</th><td>{{.Counts.OrderingFaults}}</td></tr>
<tr><th>Speed pulses</th><td>{{.SpeedEdges}}</td></tr>
<tr><th>Direction pulses</th><td>{{.DirEdges}}</td></tr>
</table>

<h2>Settings</h2>
<table>
<tr><th>Filter gain</th><td>{{.Settings.FilterGain}}</td></tr>
<tr><th>Direction offset</th><td>{{.Settings.DirectionOffsetDeg}}&deg;</td></tr>
<tr><th>Debug</th><td>{{if .Settings.DebugEnabled}}on{{else}}off{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Decode period</th><td>{{.Config.PeriodMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
<tr><th>NMEA</th><td>{{if .Config.NMEADevice}}{{.Config.NMEADevice}}{{else}}disabled{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
