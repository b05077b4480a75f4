package engine

import (
	"runtime"
	"sort"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"territorio/internal/models"
)

const (
	topActivities     = 5
	maxActivityLabel  = 45
	activityLabelKeep = 42
)

var educationLabels = []string{"Sin Escolaridad", "Primaria", "Secundaria", "Media Superior", "Superior"}

var kpiPrinter = message.NewPrinter(language.English)

// workerRanges splits n rows into one contiguous range per worker.
func workerRanges(n int) [][2]int {
	numWorkers := runtime.NumCPU()
	if n < numWorkers {
		numWorkers = 1
	}
	chunkSize := n / numWorkers
	ranges := make([][2]int, numWorkers)
	for i := range ranges {
		start := i * chunkSize
		end := start + chunkSize
		if i == numWorkers-1 {
			end = n
		}
		ranges[i] = [2]int{start, end}
	}
	return ranges
}

// sumCensus totals every census column per region.
// Result layout: [region * numCols + col].
func sumCensus(cs *CensusStore) []int64 {
	numRegs := len(cs.RegionDict)
	numCols := len(cs.Counts)
	size := numRegs * numCols

	results := make(chan []int64, runtime.NumCPU())
	var wg sync.WaitGroup

	for _, r := range workerRanges(cs.Rows()) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			partial := make([]int64, size)
			ids := cs.RegionIDs
			for col, values := range cs.Counts {
				for j := s; j < e; j++ {
					partial[int(ids[j])*numCols+col] += values[j]
				}
			}
			results <- partial
		}(r[0], r[1])
	}
	go func() { wg.Wait(); close(results) }()

	final := make([]int64, size)
	for p := range results {
		for i, v := range p {
			final[i] += v
		}
	}
	return final
}

// countBusinesses counts establishments per (region, activity).
// Result layout: [region * numActs + activity].
func countBusinesses(bs *BusinessStore) []int64 {
	numRegs := len(bs.RegionDict)
	numActs := len(bs.ActivityDict)
	matrixSize := numRegs * numActs

	results := make(chan []int64, runtime.NumCPU())
	var wg sync.WaitGroup

	for _, r := range workerRanges(bs.Rows()) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			matrix := make([]int64, matrixSize)
			idsR := bs.RegionIDs
			idsA := bs.ActivityIDs
			for j := s; j < e; j++ {
				matrix[int(idsR[j])*numActs+int(idsA[j])]++
			}
			results <- matrix
		}(r[0], r[1])
	}
	go func() { wg.Wait(); close(results) }()

	final := make([]int64, matrixSize)
	for p := range results {
		for i, v := range p {
			if v > 0 {
				final[i] += v
			}
		}
	}
	return final
}

type activityCount struct {
	name  string
	count int64
}

// Aggregate builds one payload per census region. Businesses are matched
// to census regions by exact name; businesses whose region has no census
// rows are ignored.
func Aggregate(cs *CensusStore, bs *BusinessStore) *Dataset {
	totals := sumCensus(cs)
	numCols := len(cs.Counts)

	if bs == nil {
		bs = &BusinessStore{}
	}
	matrix := countBusinesses(bs)
	numActs := len(bs.ActivityDict)
	bizRegion := make(map[string]int, len(bs.RegionDict))
	for i, name := range bs.RegionDict {
		bizRegion[name] = i
	}

	data := &Dataset{payloads: make(map[string]*models.Payload, len(cs.RegionDict))}
	for rid, name := range cs.RegionDict {
		row := totals[rid*numCols : (rid+1)*numCols]

		var negocios int64
		var acts []activityCount
		if bid, ok := bizRegion[name]; ok {
			for aid, n := range matrix[bid*numActs : (bid+1)*numActs] {
				if n > 0 {
					negocios += n
					acts = append(acts, activityCount{name: bs.ActivityDict[aid], count: n})
				}
			}
		}

		data.payloads[name] = &models.Payload{
			KPIs: models.KPIs{
				PoblacionTotal:   formatKPI(row[colPoblacion]),
				ViviendasTotales: formatKPI(row[colViviendas]),
				NumeroNegocios:   formatKPI(negocios),
			},
			ActividadesEconomicas: topActivitySeries(acts),
			PerfilEducativo:       educationSeries(row),
			PiramidePoblacional:   pyramid(row),
		}
		data.regions = append(data.regions, name)
	}
	sort.Strings(data.regions)
	return data
}

// formatKPI renders a count with thousands separators, "0" when zero.
func formatKPI(n int64) models.KPIValue {
	if n == 0 {
		return models.Text("0")
	}
	return models.Text(kpiPrinter.Sprintf("%d", n))
}

func topActivitySeries(acts []activityCount) models.Series {
	sort.Slice(acts, func(i, j int) bool {
		if acts[i].count != acts[j].count {
			return acts[i].count > acts[j].count
		}
		return acts[i].name < acts[j].name
	})
	if len(acts) > topActivities {
		acts = acts[:topActivities]
	}

	s := models.Series{Labels: make([]string, 0, len(acts)), Values: make([]float64, 0, len(acts))}
	for _, a := range acts {
		s.Labels = append(s.Labels, shortenLabel(a.name))
		s.Values = append(s.Values, float64(a.count))
	}
	return s
}

// shortenLabel cuts names longer than 45 characters to 42 plus "...".
func shortenLabel(name string) string {
	r := []rune(name)
	if len(r) > maxActivityLabel {
		return string(r[:activityLabelKeep]) + "..."
	}
	return name
}

// educationSeries splits post-basic schooling evenly between upper
// secondary and higher education; the census only reports the sum.
func educationSeries(row []int64) models.Series {
	posBasica := float64(row[colPosBasica]) / 2
	return models.Series{
		Labels: append([]string(nil), educationLabels...),
		Values: []float64{
			float64(row[colSinEscolaridad]),
			float64(row[colPrimariaIn] + row[colPrimariaCo]),
			float64(row[colSecundariaIn] + row[colSecundariaCo]),
			posBasica,
			posBasica,
		},
	}
}

// pyramid emits male counts negated so they plot to the left.
func pyramid(row []int64) models.Pyramid {
	p := models.Pyramid{
		Labels:  append([]string(nil), AgeBands...),
		Hombres: make([]float64, len(AgeBands)),
		Mujeres: make([]float64, len(AgeBands)),
	}
	for b := range AgeBands {
		if m := row[colAgeBands+2*b]; m != 0 {
			p.Hombres[b] = -float64(m)
		}
		p.Mujeres[b] = float64(row[colAgeBands+2*b+1])
	}
	return p
}
