// Package wrk parses the plain-text report printed by the wrk HTTP
// benchmarking tool.
package wrk

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Summary columns, in table order.
const (
	ColRequestsPerSec = "Requests/sec"
	ColTransfer       = "Transfer(MB/s)"
	ColAvgLatency     = "Avg Latency(ms)"
)

var Columns = []string{ColRequestsPerSec, ColTransfer, ColAvgLatency}

// Stats is one row of wrk's "Thread Stats" block.
type Stats struct {
	Avg            float64
	Stdev          float64
	Max            float64
	PlusMinusStdev float64 // percent of samples within one stdev
}

type SocketErrors struct {
	Connect int64
	Read    int64
	Write   int64
	Timeout int64
}

func (s SocketErrors) Total() int64 {
	return s.Connect + s.Read + s.Write + s.Timeout
}

// Result holds everything recognised in a report. Float fields the report
// does not carry are NaN.
type Result struct {
	URL         string
	Duration    time.Duration
	Threads     int
	Connections int

	Latency      Stats // milliseconds
	ReqPerThread Stats // requests/sec of a single thread

	// Percentiles maps a percentile (50, 75, 90, 99) to a latency in
	// milliseconds. Only present when wrk ran with --latency.
	Percentiles map[float64]float64

	Requests     int64
	Elapsed      time.Duration
	ReadMB       float64
	SocketErrors SocketErrors
	Non2xx3xx    int64

	RequestsPerSec float64
	TransferMBps   float64
}

func nanStats() Stats {
	return Stats{Avg: math.NaN(), Stdev: math.NaN(), Max: math.NaN(), PlusMinusStdev: math.NaN()}
}

func newResult() Result {
	return Result{
		Latency:        nanStats(),
		ReqPerThread:   nanStats(),
		Percentiles:    map[float64]float64{},
		ReadMB:         math.NaN(),
		RequestsPerSec: math.NaN(),
		TransferMBps:   math.NaN(),
	}
}

// Values returns the summary columns in the order of Columns.
func (r Result) Values() []float64 {
	return []float64{r.RequestsPerSec, r.TransferMBps, r.Latency.Avg}
}

var (
	reRunning     = regexp.MustCompile(`^Running\s+(\S+)\s+test\s+@\s+(\S+)`)
	reThreads     = regexp.MustCompile(`^(\d+)\s+threads\s+and\s+(\d+)\s+connections`)
	reStats       = regexp.MustCompile(`^(Latency|Req/Sec)\s+(\S+)\s+(\S+)\s+(\S+)\s+([\d.]+)%`)
	reAvgLatency  = regexp.MustCompile(`^Latency\s+([\d.]+)(ns|us|ms|s|m|h)`)
	rePercentile  = regexp.MustCompile(`^([\d.]+)%\s+([\d.]+)(ns|us|ms|s|m|h)$`)
	reTotals      = regexp.MustCompile(`^(\d+)\s+requests\s+in\s+([\d.]+)(ns|us|ms|s|m|h),\s+([\d.]+)([KMGT]?B)\s+read`)
	reSocket      = regexp.MustCompile(`^Socket errors:\s+connect\s+(\d+),\s+read\s+(\d+),\s+write\s+(\d+),\s+timeout\s+(\d+)`)
	reNon2xx      = regexp.MustCompile(`^Non-2xx or 3xx responses:\s+(\d+)`)
	reRequestsSec = regexp.MustCompile(`^Requests/sec:\s+([\d.]+)`)
	reTransferSec = regexp.MustCompile(`^Transfer/sec:\s+([\d.]+)([KMGT]?B)`)
)

// ParseFile parses the wrk report stored at path.
func ParseFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	res, err := Parse(f)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return res, nil
}

// Parse reads a wrk report. Lines it does not recognise are ignored, so only
// read errors are returned.
func Parse(r io.Reader) (Result, error) {
	res := newResult()
	sawLatency := false

	scanner := bufio.NewScanner(r)
	// lua scripts can print arbitrarily long lines into the report
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt32)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := reStats.FindStringSubmatch(line); m != nil {
			if st, ok := parseStats(m[1], m[2:]); ok {
				if m[1] == "Latency" {
					if !sawLatency {
						res.Latency = st
						sawLatency = true
					}
				} else {
					res.ReqPerThread = st
				}
				continue
			}
		}
		if !sawLatency {
			if m := reAvgLatency.FindStringSubmatch(line); m != nil {
				if ms, ok := millis(m[1], m[2]); ok {
					res.Latency.Avg = ms
					sawLatency = true
				}
				continue
			}
		}

		if m := reRunning.FindStringSubmatch(line); m != nil {
			if d, err := time.ParseDuration(m[1]); err == nil {
				res.Duration = d
			}
			res.URL = m[2]
			continue
		}
		if m := reThreads.FindStringSubmatch(line); m != nil {
			res.Threads, _ = strconv.Atoi(m[1])
			res.Connections, _ = strconv.Atoi(m[2])
			continue
		}
		if m := rePercentile.FindStringSubmatch(line); m != nil {
			p, err := strconv.ParseFloat(m[1], 64)
			if ms, ok := millis(m[2], m[3]); ok && err == nil {
				res.Percentiles[p] = ms
			}
			continue
		}
		if m := reTotals.FindStringSubmatch(line); m != nil {
			res.Requests, _ = strconv.ParseInt(m[1], 10, 64)
			if ms, ok := millis(m[2], m[3]); ok {
				res.Elapsed = time.Duration(math.Round(ms * float64(time.Millisecond)))
			}
			if mb, ok := megabytes(m[4], m[5]); ok {
				res.ReadMB = mb
			}
			continue
		}
		if m := reSocket.FindStringSubmatch(line); m != nil {
			res.SocketErrors.Connect, _ = strconv.ParseInt(m[1], 10, 64)
			res.SocketErrors.Read, _ = strconv.ParseInt(m[2], 10, 64)
			res.SocketErrors.Write, _ = strconv.ParseInt(m[3], 10, 64)
			res.SocketErrors.Timeout, _ = strconv.ParseInt(m[4], 10, 64)
			continue
		}
		if m := reNon2xx.FindStringSubmatch(line); m != nil {
			res.Non2xx3xx, _ = strconv.ParseInt(m[1], 10, 64)
			continue
		}
		if m := reRequestsSec.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				res.RequestsPerSec = v
			}
			continue
		}
		if m := reTransferSec.FindStringSubmatch(line); m != nil {
			if mb, ok := megabytes(m[1], m[2]); ok {
				res.TransferMBps = mb
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// parseStats reads the Avg, Stdev, Max and +/- Stdev fields of a thread
// stats row. Latency cells carry time units, Req/Sec cells metric suffixes.
func parseStats(kind string, fields []string) (Stats, bool) {
	conv := metric
	if kind == "Latency" {
		conv = latencyCell
	}
	avg, ok1 := conv(fields[0])
	stdev, ok2 := conv(fields[1])
	peak, ok3 := conv(fields[2])
	pct, err := strconv.ParseFloat(fields[3], 64)
	if !ok1 || !ok2 || !ok3 || err != nil {
		return Stats{}, false
	}
	return Stats{Avg: avg, Stdev: stdev, Max: peak, PlusMinusStdev: pct}, true
}

var reTimeCell = regexp.MustCompile(`^([\d.]+)(ns|us|ms|s|m|h)$`)

func latencyCell(s string) (float64, bool) {
	m := reTimeCell.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return millis(m[1], m[2])
}

var timeScale = map[string]float64{
	"ns": 1e-6,
	"us": 1e-3,
	"ms": 1,
	"s":  1e3,
	"m":  60e3,
	"h":  3600e3,
}

// millis converts a wrk time value to milliseconds.
func millis(value, unit string) (float64, bool) {
	scale, ok := timeScale[unit]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return v * scale, true
}

var sizeScale = map[string]float64{
	"B":  1.0 / (1 << 20),
	"KB": 1.0 / (1 << 10),
	"MB": 1,
	"GB": 1 << 10,
	"TB": 1 << 20,
}

// megabytes converts a wrk binary size (1KB = 1024B) to MB.
func megabytes(value, unit string) (float64, bool) {
	scale, ok := sizeScale[unit]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return v * scale, true
}

// metric expands wrk's decimal suffixes: 10.83k -> 10830.
func metric(s string) (float64, bool) {
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1e3, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "M"):
		mult, s = 1e6, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		mult, s = 1e9, strings.TrimSuffix(s, "G")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}
