package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
)

// Below this many bytes per worker the file is parsed by a single worker.
const minChunkBytes = 4096

// --- 1. FAST ZERO-ALLOC HELPERS ---

func unsafeToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// unquote strips surrounding CSV quotes and collapses doubled quotes.
// Unquoted fields are returned as is, without allocating.
func unquote(b []byte) []byte {
	b = bytes.TrimRight(b, "\r")
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return b
	}
	b = b[1 : len(b)-1]
	if bytes.IndexByte(b, '"') == -1 {
		return b
	}
	return bytes.ReplaceAll(b, []byte(`""`), []byte(`"`))
}

// alignChunk moves start and end forward to the byte after the next
// newline so that every worker owns whole lines.
func alignChunk(content []byte, start, end int) (int, int) {
	if start > 0 {
		if i := bytes.IndexByte(content[start:], '\n'); i != -1 {
			start += i + 1
		} else {
			start = len(content)
		}
	}
	if end < len(content) {
		if i := bytes.IndexByte(content[end:], '\n'); i != -1 {
			end += i + 1
		} else {
			end = len(content)
		}
	}
	return start, end
}

// --- 2. BUSINESS DIRECTORY LOADER ---

// LoadBusinesses reads the business directory extract, a CSV with the
// header id,entidad,nombre_act. The activity name is the last field, so it
// may contain commas; quoted fields are unquoted.
func LoadBusinesses(ctx context.Context, path string) (*BusinessStore, error) {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read businesses: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Skip header row
	if idx := bytes.IndexByte(content, '\n'); idx != -1 {
		content = content[idx+1:]
	} else {
		content = nil
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}

	numWorkers := runtime.NumCPU()
	if len(content) < numWorkers*minChunkBytes {
		numWorkers = 1
	}
	chunkSize := len(content) / numWorkers
	bounds := func(i int) (int, int) {
		s, e := i*chunkSize, (i+1)*chunkSize
		if i == numWorkers-1 {
			e = len(content)
		}
		return alignChunk(content, s, e)
	}

	// A. Count Rows (Parallel) to size worker buffers
	rowCounts := make([]int, numWorkers)
	var countWg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		countWg.Add(1)
		go func(idx int) {
			defer countWg.Done()
			s, e := bounds(idx)
			if s < e {
				rowCounts[idx] = bytes.Count(content[s:e], []byte{'\n'})
			}
		}(i)
	}
	countWg.Wait()

	// B. Parallel Parsing into worker-local dictionaries
	type localDicts struct {
		rMap  map[string]int32
		rList []string
		aMap  map[string]int32
		aList []string
		idsR  []int32
		idsA  []int32
	}
	workerDicts := make([]*localDicts, numWorkers)
	sep := []byte{','}

	intern := func(m map[string]int32, list *[]string, field []byte) int32 {
		if id, ok := m[unsafeToString(field)]; ok {
			return id
		}
		id := int32(len(*list))
		str := string(field)
		*list = append(*list, str)
		m[str] = id
		return id
	}

	var parseWg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		parseWg.Add(1)
		go func(idx int) {
			defer parseWg.Done()

			ld := &localDicts{
				rMap: make(map[string]int32), aMap: make(map[string]int32),
				idsR: make([]int32, 0, rowCounts[idx]), idsA: make([]int32, 0, rowCounts[idx]),
			}
			workerDicts[idx] = ld

			s, e := bounds(idx)
			chunk := content[s:e]
			pos := 0
			for pos < len(chunk) {
				nextPos := pos + bytes.IndexByte(chunk[pos:], '\n')
				line := bytes.TrimRight(chunk[pos:nextPos], "\r")
				pos = nextPos + 1
				if len(line) == 0 {
					continue
				}

				// 0: id (SKIP)
				_, rest, found := bytes.Cut(line, sep)
				if !found {
					continue
				}
				// 1: entidad (KEEP)
				region, rest, found := bytes.Cut(rest, sep)
				if !found {
					continue
				}
				region = unquote(region)
				// 2: nombre_act (KEEP, rest of line)
				activity := unquote(rest)
				if len(region) == 0 || len(activity) == 0 {
					continue
				}

				ld.idsR = append(ld.idsR, intern(ld.rMap, &ld.rList, region))
				ld.idsA = append(ld.idsA, intern(ld.aMap, &ld.aList, activity))
			}
		}(i)
	}
	parseWg.Wait()

	// C. Allocate Store ONCE from the parsed row counts
	offsets := make([]int, numWorkers)
	totalRows := 0
	for i, ld := range workerDicts {
		offsets[i] = totalRows
		totalRows += len(ld.idsR)
	}
	store := &BusinessStore{
		RegionIDs:   make([]int32, totalRows),
		ActivityIDs: make([]int32, totalRows),
	}

	// D. Merge Dictionaries (Parallel)
	var dictWg sync.WaitGroup
	dictWg.Add(2)

	mergeDict := func(getList func(*localDicts) []string, getIDs func(*localDicts) []int32, globalDict *[]string, globalIDs []int32) {
		defer dictWg.Done()
		gMap := make(map[string]int32)
		*globalDict = make([]string, 0, 64)
		remaps := make([][]int32, numWorkers)

		for w := 0; w < numWorkers; w++ {
			localList := getList(workerDicts[w])
			remaps[w] = make([]int32, len(localList))
			for lid, s := range localList {
				if gid, exists := gMap[s]; exists {
					remaps[w][lid] = gid
				} else {
					gid = int32(len(*globalDict))
					*globalDict = append(*globalDict, s)
					gMap[s] = gid
					remaps[w][lid] = gid
				}
			}
		}
		for w := 0; w < numWorkers; w++ {
			localIDs := getIDs(workerDicts[w])
			dest := globalIDs[offsets[w] : offsets[w]+len(localIDs)]
			remap := remaps[w]
			for k, id := range localIDs {
				dest[k] = remap[id]
			}
		}
	}

	go mergeDict(func(d *localDicts) []string { return d.rList }, func(d *localDicts) []int32 { return d.idsR }, &store.RegionDict, store.RegionIDs)
	go mergeDict(func(d *localDicts) []string { return d.aList }, func(d *localDicts) []int32 { return d.idsA }, &store.ActivityDict, store.ActivityIDs)

	dictWg.Wait()

	logrus.WithFields(logrus.Fields{
		"rows":       totalRows,
		"regions":    len(store.RegionDict),
		"activities": len(store.ActivityDict),
		"took":       time.Since(start),
	}).Info("business directory loaded")
	return store, nil
}
