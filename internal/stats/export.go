package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// ThreadScope renders a thread id the way every textual surface does, as
// Thread_0x<tid>.
func ThreadScope(tid uint32) string {
	return fmt.Sprintf("Thread_0x%08x", tid)
}

// WriteCSV exports global and per-thread statistics as one flat table with a
// scope column.
func WriteCSV(w io.Writer, global Global, threads PerThread) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Scope", "Function", "Calls", "Total_ns", "Avg_ns", "Min_ns", "Max_ns", "Memory_delta"}); err != nil {
		return err
	}
	writeScope := func(scope string, g Global) error {
		for _, e := range Sorted(g, SortByTotal) {
			record := []string{
				scope,
				e.Function,
				strconv.FormatUint(e.Calls, 10),
				strconv.FormatUint(e.TotalNS, 10),
				strconv.FormatInt(int64(e.AvgNS), 10),
				strconv.FormatUint(e.MinNS, 10),
				strconv.FormatUint(e.MaxNS, 10),
				strconv.FormatUint(e.MemoryDelta, 10),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeScope("Global", global); err != nil {
		return err
	}
	for _, tid := range sortedThreadIDs(threads) {
		if err := writeScope(ThreadScope(tid), threads[tid]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON exports statistics keyed by scope, with thread ids rendered in
// hex for stability across tools.
func WriteJSON(w io.Writer, global Global, threads PerThread) error {
	byThread := make(map[string]Global, len(threads))
	for tid, g := range threads {
		byThread[fmt.Sprintf("0x%08x", tid)] = g
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Global  Global            `json:"global"`
		Threads map[string]Global `json:"threads"`
	}{Global: global, Threads: byThread})
}

func sortedThreadIDs(threads PerThread) []uint32 {
	ids := make([]uint32, 0, len(threads))
	for tid := range threads {
		ids = append(ids, tid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
