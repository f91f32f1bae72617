package web

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"gpsnav/internal/gps"
	"gpsnav/internal/nmea"
)

// NavSource is the navigation state provider, normally *gps.Service.
type NavSource interface {
	Snapshot() gps.Snapshot
	Export() nmea.Snapshot
	Subscribe(buffer int) (int, <-chan gps.Snapshot)
	Unsubscribe(id int)
}

// Deps are the handler's collaborators. Logs and Metrics are optional.
type Deps struct {
	Status  *Status
	Nav     NavSource
	Logs    *LogBuffer
	Metrics http.Handler
}

type snapshotResponse struct {
	Version int    `json:"version"`
	Size    int    `json:"size"`
	Hex     string `json:"hex"`
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func Handler(d Deps) http.Handler {
	if d.Status == nil {
		d.Status = NewStatus()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", getOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Status.Snapshot(time.Now().UTC(), d.Nav.Snapshot()))
	}))

	mux.HandleFunc("/api/nav", getOnly(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Nav.Snapshot())
	}))

	// Raw navigation state in the fixed binary layout, for seeding another
	// parser. ?format=bin returns the bytes as-is.
	mux.HandleFunc("/api/snapshot", getOnly(func(w http.ResponseWriter, r *http.Request) {
		snap := d.Nav.Export()
		b, err := snap.MarshalBinary()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if strings.EqualFold(r.URL.Query().Get("format"), "bin") {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Cache-Control", "no-store")
			_, _ = w.Write(b)
			return
		}
		writeJSON(w, snapshotResponse{Version: int(b[0]), Size: len(b), Hex: hex.EncodeToString(b)})
	}))

	if d.Logs != nil {
		mux.Handle("/api/logs", d.Logs.Handler())
	}
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics)
	}
	mux.Handle("/ws", navStreamHandler(d.Nav))

	mux.HandleFunc("/", getOnly(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		nav := d.Nav.Snapshot()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>gpsnav</title></head><body>")
		_, _ = fmt.Fprintf(w, "<h1>gpsnav</h1>")
		_, _ = fmt.Fprintf(w, "<p>JSON: <a href=\"/api/status\">/api/status</a> <a href=\"/api/nav\">/api/nav</a> <a href=\"/api/snapshot\">/api/snapshot</a>; live: /ws</p>")
		_, _ = fmt.Fprintf(w, "<pre>source=%s\nconn=%s\nfix=%t quality=%s sats=%d hdop=%.1f\nlat=%.6f lon=%.6f alt_msl_m=%.1f\nutc=%s %s\nsentences=%d last_error=%s</pre>",
			html.EscapeString(nav.Source), html.EscapeString(nav.ConnState),
			nav.Fix, nav.FixQuality, nav.Satellites, nav.HDOP,
			nav.LatDeg, nav.LonDeg, nav.AltMSLM,
			nav.UTCDate, nav.UTCTime,
			nav.Sentences, html.EscapeString(nav.LastError),
		)
		_, _ = fmt.Fprintf(w, "</body></html>")
	}))

	return mux
}

func Serve(ctx context.Context, listenAddr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
