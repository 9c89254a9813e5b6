// Package workload reads, writes and generates request traces and drives
// them through a cache.
//
// The text format is whitespace separated integers:
//
//	<capacity> <n> <key_1> ... <key_n>
package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

type constError string

func (e constError) Error() string { return string(e) }

// ErrMalformed is returned by Read for input that does not follow the trace format.
const ErrMalformed = constError("workload: malformed trace")

// maxPrealloc caps the request buffer Read reserves from the header count.
const maxPrealloc = 1 << 16

// Trace is a cache size together with the request sequence to replay.
type Trace[K comparable] struct {
	Capacity int
	Requests []K
}

// Unique returns the number of distinct keys in the trace.
func (t Trace[K]) Unique() int {
	seen := make(map[K]struct{}, len(t.Requests))
	for _, k := range t.Requests {
		seen[k] = struct{}{}
	}
	return len(seen)
}

// Read parses a trace. Tokens after the n-th key are ignored.
func Read(r io.Reader) (Trace[int], error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func(what string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("%w: missing %s", ErrMalformed, what)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
		}
		return v, nil
	}

	capacity, err := next("cache size")
	if err != nil {
		return Trace[int]{}, err
	}
	n, err := next("request count")
	if err != nil {
		return Trace[int]{}, err
	}
	if capacity < 0 || n < 0 {
		return Trace[int]{}, fmt.Errorf("%w: negative size %d or count %d", ErrMalformed, capacity, n)
	}
	// n comes from the input; append grows past this bound as keys arrive.
	t := Trace[int]{Capacity: capacity, Requests: make([]int, 0, min(n, maxPrealloc))}
	for i := range n {
		k, err := next(fmt.Sprintf("request %d of %d", i+1, n))
		if err != nil {
			return Trace[int]{}, err
		}
		t.Requests = append(t.Requests, k)
	}
	return t, nil
}

// Write emits t in the format accepted by Read, on a single line.
func Write(w io.Writer, t Trace[int]) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strconv.Itoa(t.Capacity))
	bw.WriteByte(' ')
	bw.WriteString(strconv.Itoa(len(t.Requests)))
	for _, k := range t.Requests {
		bw.WriteByte(' ')
		bw.WriteString(strconv.Itoa(k))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}
