// Package benchtest writes wrk and dstat artifacts for tests.
package benchtest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Run describes the numbers written for one case.
type Run struct {
	RequestsPerSec float64
	TransferMB     float64
	LatencyMs      float64
	// Usr etc. are the per-row values of the dstat samples; every sample row
	// repeats them, so they are also the means.
	Usr, Sys, Idl, Writ, Int, Csw float64
}

// Runs holds plausible numbers for the four default cases, keyed by label.
var Runs = map[string]Run{
	"Blocking 1KB":     {RequestsPerSec: 12000, TransferMB: 14.5, LatencyMs: 8.2, Usr: 30, Sys: 20, Idl: 50, Writ: 4096, Int: 9000, Csw: 20000},
	"Non-blocking 1KB": {RequestsPerSec: 41000, TransferMB: 49.5, LatencyMs: 2.4, Usr: 45, Sys: 25, Idl: 30, Writ: 2048, Int: 15000, Csw: 9000},
	"Blocking 8KB":     {RequestsPerSec: 9000, TransferMB: 72.1, LatencyMs: 11.0, Usr: 28, Sys: 26, Idl: 46, Writ: 8192, Int: 8000, Csw: 22000},
	"Non-blocking 8KB": {RequestsPerSec: 30000, TransferMB: 240.3, LatencyMs: 3.3, Usr: 50, Sys: 30, Idl: 20, Writ: 1024, Int: 16000, Csw: 11000},
}

// Files maps a label to its wrk and dstat file names.
var Files = map[string][2]string{
	"Blocking 1KB":     {"block1kb.txt", "block1kbop.csv"},
	"Non-blocking 1KB": {"nonblock1kb.txt", "nonblock1kbop.csv"},
	"Blocking 8KB":     {"block8kb.txt", "block8kbop.csv"},
	"Non-blocking 8KB": {"nonblock8kb.txt", "nonblock8kbop.csv"},
}

func WrkReport(r Run) string {
	return fmt.Sprintf(`Running 30s test @ http://127.0.0.1:8080/
  4 threads and 100 connections
  Thread Stats   Avg      Stdev     Max   +/- Stdev
    Latency     %.2fms    1.00ms  40.00ms   90.00%%
    Req/Sec     3.00k     0.50k    4.00k    70.00%%
  360000 requests in 30.00s, 400.00MB read
Requests/sec:  %.2f
Transfer/sec:     %.2fMB
`, r.LatencyMs, r.RequestsPerSec, r.TransferMB)
}

func DstatCSV(r Run) string {
	row := fmt.Sprintf("%g,%g,%g,0,0,0,0,%g,%g,%g\n", r.Usr, r.Sys, r.Idl, r.Writ, r.Int, r.Csw)
	return "\"total cpu usage\",,,,,,\"dsk/total\",,\"system\",\n" +
		"\"usr\",\"sys\",\"idl\",\"wai\",\"hiq\",\"siq\",\"read\",\"writ\",\"int\",\"csw\"\n" +
		row + row + row
}

// WriteCase writes both artifacts of label into dir.
func WriteCase(t testing.TB, dir, label string) {
	t.Helper()
	WriteWrk(t, dir, label)
	WriteDstat(t, dir, label)
}

func WriteWrk(t testing.TB, dir, label string) {
	t.Helper()
	write(t, filepath.Join(dir, Files[label][0]), WrkReport(Runs[label]))
}

func WriteDstat(t testing.TB, dir, label string) {
	t.Helper()
	write(t, filepath.Join(dir, Files[label][1]), DstatCSV(Runs[label]))
}

// WriteAll writes the artifacts of every default case and returns dir.
func WriteAll(t testing.TB, dir string) string {
	t.Helper()
	for label := range Runs {
		WriteCase(t, dir, label)
	}
	return dir
}

func write(t testing.TB, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
